package mind

import (
	"context"
	"fmt"

	"github.com/talgya/microcosm/internal/platform/logger"
	"github.com/talgya/microcosm/internal/sense"
	"github.com/talgya/microcosm/internal/world"
)

// Think is the per-tick decision call. It runs concurrently with every
// other agent's Think, reads only the frozen observation and the
// agent's own private state, and returns exactly one action (possibly
// the no-op). It never mutates shared state.
//
// Pipeline: perceive, memorize, poll command then activity then traits
// in ascending priority, pick the most urgent proposal. A mid-move
// agent skips the whole pipeline. An agent in dialogue only honors
// proposals urgent enough to break the exchange.
//
// The context carries the coordinator's per-call deadline. A call that
// outlives it has already been abandoned; it stops at the next
// checkpoint between polls so it quits touching agent state as soon as
// possible.
func (a *Agent) Think(ctx context.Context, tick uint64, obs *sense.Observation, log *logger.Logger) Action {
	if a.Moving() {
		return Noop()
	}
	if ctx.Err() != nil {
		return Noop()
	}

	per := sense.Perceive(obs, a.worldMap, a.Acuity, a.rng)
	a.memorize(&per, tick)

	tctx := &TaskContext{
		Agent:      a,
		Pos:        a.Pos,
		Perception: &per,
		Map:        a.worldMap,
		Tick:       tick,
	}

	var proposals []Action
	add := func(act Action) {
		if act == nil || IsNoop(act) {
			return
		}
		proposals = append(proposals, act)
	}

	if a.command != nil && !a.command.State().Terminal() {
		act, err := a.advanceGuarded(a.command, tctx)
		if err != nil {
			logPoll(log, a.ID, "command", a.command.Name(), err)
		}
		add(act)
	}
	if ctx.Err() != nil {
		return Noop()
	}
	if a.activity != nil && !a.activity.State().Terminal() {
		act, err := a.advanceGuarded(a.activity, tctx)
		if err != nil {
			logPoll(log, a.ID, "activity", a.activity.Name(), err)
		}
		add(act)
	}
	if a.traits != nil {
		for _, t := range a.traits.All() {
			if ctx.Err() != nil {
				return Noop()
			}
			act, err := a.suggestGuarded(t, tctx)
			if err != nil {
				logPoll(log, a.ID, "trait", t.Name(), err)
				continue
			}
			add(act)
		}
	}

	chosen := selectProposal(proposals)
	if chosen == nil {
		return Noop()
	}
	if a.InDialogue() && chosen.Priority() > PriorityUrgent {
		return Noop()
	}
	return chosen
}

// memorize records what the agent saw this tick: sightings for every
// perceived object, and true container contents for buildings close
// enough to inspect.
func (a *Agent) memorize(per *sense.Perception, tick uint64) {
	for _, obj := range per.Objects {
		a.memory.RecordSighting(obj.ID, obj.Kind, obj.Label, obj.Pos, tick)
		if obj.Kind != sense.KindBuilding || obj.Distance > 1 {
			continue
		}
		if b, ok := obj.Ref.(*world.Building); ok && b.Valid() && b.Store != nil {
			a.memory.RecordStorage(b.ID, b.Pos, b.Store.Contents(), tick)
		}
	}
}

// advanceGuarded polls a task, converting a panic into an error so one
// broken task cannot take down the decision phase.
func (a *Agent) advanceGuarded(t Task, ctx *TaskContext) (act Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			act, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Advance(ctx), nil
}

// suggestGuarded polls a trait with the same containment.
func (a *Agent) suggestGuarded(t Trait, ctx *TaskContext) (act Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			act, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Suggest(ctx)
}

// selectProposal picks the strictly most urgent action; on equal
// priority the earlier-polled source wins, so the ordering
// command > activity > traits is stable.
func selectProposal(proposals []Action) Action {
	var best Action
	for _, p := range proposals {
		if best == nil || p.Priority() < best.Priority() {
			best = p
		}
	}
	return best
}

func logPoll(log *logger.Logger, id uint64, source, name string, err error) {
	if log == nil {
		return
	}
	log.Agent(id, "decide").Str("source", source).Str("name", name).Err(err).Msg("poll abstained")
}
