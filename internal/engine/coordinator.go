// Package engine drives the simulation: the coordinator runs the
// per-tick rebuild / decide / execute cycle, and the clock layers tick,
// hour, and day callbacks over a real-time interval.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/talgya/microcosm/internal/mind"
	"github.com/talgya/microcosm/internal/platform/logger"
	"github.com/talgya/microcosm/internal/platform/metrics"
	"github.com/talgya/microcosm/internal/sense"
	"github.com/talgya/microcosm/internal/world"
)

// Recorder receives notable occurrences for durable journaling. The
// coordinator calls it from the control goroutine only.
type Recorder interface {
	Record(tick uint64, category, description string)
}

// CoordinatorConfig sizes the decision phase.
type CoordinatorConfig struct {
	// Workers bounds concurrent decision calls. 0 means GOMAXPROCS-1,
	// floor 1.
	Workers int
	// DecisionTimeout is the per-call deadline. 0 means 200ms.
	DecisionTimeout time.Duration
}

type pendingDirective struct {
	agentID   uint64
	directive *mind.Directive
}

// Coordinator owns the tick cycle: rebuild the spatial index, run every
// agent's decision call concurrently against frozen observations, then
// execute the chosen actions one at a time in priority order. All world
// mutation happens in the serial execution phase, so no world state ever
// needs a lock.
type Coordinator struct {
	log     *logger.Logger
	met     *metrics.Metrics
	journal Recorder

	worldMap *world.Map
	index    *sense.Index

	workers int
	timeout time.Duration

	// agents holds registration order; tick processing never reorders it,
	// so equal-priority actions always execute in a stable order.
	agents []*mind.Agent
	byID   map[uint64]*mind.Agent

	inTick atomic.Bool

	// nextAmbient collects events emitted during execution for the next
	// tick's index. Control goroutine only.
	nextAmbient []sense.AmbientEvent

	// mu guards the registry and the directive queue against the API
	// goroutines; tick processing itself stays single-writer.
	mu         sync.Mutex
	directives []pendingDirective

	// timeoutStreak counts consecutive abandoned decision calls per agent.
	// Control goroutine only.
	timeoutStreak map[uint64]int

	// deciding marks agents whose decision goroutine is still running,
	// possibly abandoned by an earlier tick. Set on the control goroutine,
	// cleared by the decision goroutine itself when it exits.
	deciding map[uint64]*atomic.Bool

	status atomic.Pointer[Status]
}

// NewCoordinator creates a coordinator over the map and index.
func NewCoordinator(m *world.Map, ix *sense.Index, log *logger.Logger, met *metrics.Metrics, journal Recorder, cfg CoordinatorConfig) *Coordinator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0) - 1
		if workers < 1 {
			workers = 1
		}
	}
	timeout := cfg.DecisionTimeout
	if timeout <= 0 {
		timeout = 200 * time.Millisecond
	}
	c := &Coordinator{
		log:           log,
		met:           met,
		journal:       journal,
		worldMap:      m,
		index:         ix,
		workers:       workers,
		timeout:       timeout,
		byID:          make(map[uint64]*mind.Agent),
		timeoutStreak: make(map[uint64]int),
		deciding:      make(map[uint64]*atomic.Bool),
	}
	c.status.Store(&Status{})
	return c
}

// Register adds an agent. Call before Run starts, or from a tick/hour
// callback; registration order fixes the execution tie-break order. The
// registry lock keeps concurrent directive submissions safe.
func (c *Coordinator) Register(a *mind.Agent) {
	c.mu.Lock()
	c.agents = append(c.agents, a)
	c.byID[a.ID] = a
	c.deciding[a.ID] = new(atomic.Bool)
	c.mu.Unlock()
	c.met.AgentsRegistered.Set(float64(len(c.agents)))
}

// Agent returns a registered agent by ID.
func (c *Coordinator) Agent(id uint64) (*mind.Agent, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Agents returns the registered agents in registration order.
func (c *Coordinator) Agents() []*mind.Agent {
	return c.agents
}

// SubmitDirective queues an externally issued command for an agent. Safe
// from any goroutine; the directive takes the agent's command slot at
// the start of the next tick.
func (c *Coordinator) SubmitDirective(agentID uint64, d *mind.Directive) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byID[agentID]; !ok {
		return fmt.Errorf("directive: unknown agent %d", agentID)
	}
	c.directives = append(c.directives, pendingDirective{agentID: agentID, directive: d})
	return nil
}

// EmitAmbient queues an ambient event for the next tick's index.
// Control goroutine only; actions reach it through their ExecEnv.
func (c *Coordinator) EmitAmbient(ev sense.AmbientEvent) {
	c.nextAmbient = append(c.nextAmbient, ev)
}

// ProcessTick runs one full simulation step. It must be called from the
// single control goroutine; a call arriving while a tick is in flight is
// rejected rather than queued.
func (c *Coordinator) ProcessTick(tick uint64) error {
	if !c.inTick.CompareAndSwap(false, true) {
		c.met.ReentrantTicks.Inc()
		c.log.Warn().Uint64("tick", tick).Msg("tick rejected: previous tick still in flight")
		return fmt.Errorf("tick %d: previous tick still in flight", tick)
	}
	defer c.inTick.Store(false)

	start := time.Now()
	defer func() {
		c.met.TickDuration.Observe(time.Since(start).Seconds())
	}()

	c.applyDirectives(tick)
	c.rebuildIndex(tick)

	// Observation windows are built on the control goroutine; the cache
	// behind ObservationFor is not safe for concurrent construction.
	observations := make([]*sense.Observation, len(c.agents))
	for i, a := range c.agents {
		observations[i] = c.index.ObservationFor(a.Pos)
	}

	actions := c.decide(tick, observations)
	executed := c.execute(tick, actions)
	c.finishTick(tick)

	c.publishStatus(tick, executed)
	return nil
}

// applyDirectives drains the queue into agent command slots.
func (c *Coordinator) applyDirectives(tick uint64) {
	c.mu.Lock()
	queued := c.directives
	c.directives = nil
	c.mu.Unlock()

	for _, pd := range queued {
		a, ok := c.byID[pd.agentID]
		if !ok {
			continue
		}
		mind.NewStartTaskAction(a, mind.SlotCommand, pd.directive, mind.PriorityNormal).Execute(&mind.ExecEnv{
			Tick: tick,
			Map:  c.worldMap,
			Record: func(category, description string) {
				c.record(tick, category, description)
			},
		})
		c.log.Info().
			Uint64("tick", tick).
			Uint64("agent", a.ID).
			Str("task", pd.directive.Name()).
			Str("issuer", pd.directive.Issuer).
			Msg("directive applied")
	}
}

// rebuildIndex repopulates the spatial index for the tick: every agent,
// every standing building, and the ambient events emitted last tick.
func (c *Coordinator) rebuildIndex(tick uint64) {
	c.index.PrepareForTick(tick)
	for _, a := range c.agents {
		c.index.Add(sense.KindAgent, a)
	}
	for _, b := range c.worldMap.Buildings() {
		c.index.Add(sense.KindBuilding, b)
	}
	for _, ev := range c.nextAmbient {
		c.index.AddAmbient(ev)
	}
	c.nextAmbient = c.nextAmbient[:0]
}

// decide runs every agent's decision call on a bounded worker pool. Each
// call gets its own deadline; a call that overruns is abandoned (it
// observes the expired context and bails at its next checkpoint) and the
// agent idles this tick. While an abandoned call is still winding down,
// no new call is started for that agent, so a given agent never has two
// decision goroutines alive at once. Streak bookkeeping happens here on
// the control goroutine after the pool drains; workers only write their
// own slots.
func (c *Coordinator) decide(tick uint64, observations []*sense.Observation) []mind.Action {
	actions := make([]mind.Action, len(c.agents))
	overran := make([]bool, len(c.agents))
	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i, a := range c.agents {
		flag := c.deciding[a.ID]
		if flag.Load() {
			actions[i] = mind.Noop()
			overran[i] = true
			continue
		}
		flag.Store(true)
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, a *mind.Agent, obs *sense.Observation, flag *atomic.Bool) {
			defer wg.Done()
			defer func() { <-sem }()
			actions[i], overran[i] = c.decideOne(tick, a, obs, flag)
		}(i, a, observations[i], flag)
	}
	wg.Wait()

	for i, a := range c.agents {
		if !overran[i] {
			delete(c.timeoutStreak, a.ID)
			continue
		}
		c.met.DecisionTimeouts.Inc()
		c.timeoutStreak[a.ID]++
		ev := c.log.Warn()
		if c.timeoutStreak[a.ID] >= 3 {
			ev = c.log.Error()
		}
		ev.Uint64("tick", tick).
			Uint64("agent", a.ID).
			Str("name", a.Name).
			Int("q", a.Pos.Q).
			Int("r", a.Pos.R).
			Int("streak", c.timeoutStreak[a.ID]).
			Dur("timeout", c.timeout).
			Msg("decision call abandoned")
	}
	return actions
}

// decideOne runs a single agent's Think with panic containment and a
// deadline. The context carries the deadline into Think; a timed-out
// call keeps its goroutine until the next checkpoint inside Think, then
// clears the in-flight flag and finishes into the buffered channel,
// where its result is discarded.
func (c *Coordinator) decideOne(tick uint64, a *mind.Agent, obs *sense.Observation, flag *atomic.Bool) (mind.Action, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	done := make(chan mind.Action, 1)
	go func() {
		act := mind.Noop()
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.met.DecisionPanics.Inc()
					c.log.Error().
						Uint64("tick", tick).
						Uint64("agent", a.ID).
						Interface("panic", r).
						Msg("decision call panicked")
				}
			}()
			act = a.Think(ctx, tick, obs, c.log)
		}()
		// Clear before handing over the result, so a completed agent is
		// never mistaken for one still in flight.
		flag.Store(false)
		done <- act
	}()

	select {
	case act := <-done:
		return act, false
	case <-ctx.Done():
		return mind.Noop(), true
	}
}

// execute runs the chosen actions serially, most urgent first; equal
// priorities keep registration order. Returns the number executed
// without error.
func (c *Coordinator) execute(tick uint64, actions []mind.Action) int {
	order := make([]int, 0, len(actions))
	for i, act := range actions {
		if mind.IsNoop(act) {
			continue
		}
		order = append(order, i)
	}
	sort.SliceStable(order, func(x, y int) bool {
		return actions[order[x]].Priority() < actions[order[y]].Priority()
	})

	env := &mind.ExecEnv{
		Tick: tick,
		Map:  c.worldMap,
		Emit: c.EmitAmbient,
		Record: func(category, description string) {
			c.record(tick, category, description)
		},
	}

	executed := 0
	for _, i := range order {
		act := actions[i]
		if err := act.Execute(env); err != nil {
			c.met.ActionFailures.WithLabelValues(act.Kind()).Inc()
			c.log.Agent(c.agents[i].ID, "action").
				Uint64("tick", tick).
				Str("kind", act.Kind()).
				Err(err).
				Msg("action precondition failed")
			continue
		}
		c.met.ActionsExecuted.WithLabelValues(act.Kind()).Inc()
		executed++
	}
	return executed
}

// finishTick advances per-agent bookkeeping after execution: movement
// progression, need decay, and clearing finished tasks out of slots.
func (c *Coordinator) finishTick(tick uint64) {
	for _, a := range c.agents {
		a.AdvanceMovement()
		a.Needs.Decay()
		a.ClearTerminalTasks()
	}
}

// SweepMemories expires stale recollections across all agents. Meant for
// an hourly maintenance layer, not every tick.
func (c *Coordinator) SweepMemories(now uint64) {
	for _, a := range c.agents {
		a.Memory().Sweep(now)
	}
}

// InvalidateEntity erases an entity from every agent's memory, for
// destruction events that should not leave ghosts behind.
func (c *Coordinator) InvalidateEntity(id uint64) {
	for _, a := range c.agents {
		a.Memory().Invalidate(id)
	}
}

func (c *Coordinator) record(tick uint64, category, description string) {
	if c.journal != nil {
		c.journal.Record(tick, category, description)
	}
}
