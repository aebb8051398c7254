package mind

import (
	"github.com/talgya/microcosm/internal/sense"
	"github.com/talgya/microcosm/internal/world"
)

// EatTrait interrupts when the agent is hungry: eat from the carried
// stock, otherwise start a haul toward a container remembered or known
// to hold food.
type EatTrait struct {
	Threshold float32 // Food need level that counts as hungry
}

func (t *EatTrait) Name() string       { return "eat" }
func (t *EatTrait) Priority() Priority { return PriorityCritical }

func (t *EatTrait) Suggest(ctx *TaskContext) (Action, error) {
	a := ctx.Agent
	if a.Needs.Food >= t.Threshold {
		return nil, nil
	}

	for _, kind := range []world.ItemKind{world.ItemGrain, world.ItemFish} {
		if a.Carried.Count(kind) > 0 {
			return NewConsumeAction(a, kind, PriorityCritical), nil
		}
	}

	// No food in hand: already fetching?
	if act := a.Activity(); act != nil && act.Name() == "haul" && !act.State().Terminal() {
		return nil, nil
	}

	// Prefer personal recollection of a stocked container; fall back to
	// shared knowledge of food stores. Either may be stale; the haul
	// fails cleanly at the container if it is.
	if source, ok := t.findFood(ctx); ok {
		haul := NewHaulTask(source, nil, world.ItemGrain, 3, PriorityCritical)
		return NewStartTaskAction(a, SlotActivity, haul, PriorityCritical), nil
	}
	return nil, nil
}

func (t *EatTrait) findFood(ctx *TaskContext) (*world.Building, bool) {
	a := ctx.Agent
	for _, kind := range []world.ItemKind{world.ItemGrain, world.ItemFish} {
		for _, sm := range a.Memory().StoragesWithItem(kind, ctx.Tick) {
			if b := ctx.Map.Building(sm.BuildingID); b.Valid() && b.Store != nil {
				return b, true
			}
		}
	}
	if f, ok := a.Knowledge().NearestWithPrefix("granary", ctx.Pos); ok {
		if b := ctx.Map.Building(f.BuildingID); b.Valid() && b.Store != nil {
			return b, true
		}
	}
	return nil, false
}

// AlarmTrait reacts to loud noises: raise the alarm and step away from
// the source. Urgent enough to break a dialogue.
type AlarmTrait struct {
	MinIntensity float64
}

func (t *AlarmTrait) Name() string       { return "alarm" }
func (t *AlarmTrait) Priority() Priority { return PriorityUrgent }

func (t *AlarmTrait) Suggest(ctx *TaskContext) (Action, error) {
	for _, ev := range ctx.Perception.Events {
		if ev.Channel != sense.ChannelSound || ev.Intensity < t.MinIntensity {
			continue
		}
		if ev.SourceID == ctx.Agent.ID {
			continue
		}
		if step, ok := stepAway(ctx.Map, ctx.Pos, ev.Pos); ok {
			return NewMoveAction(ctx.Agent, step, PriorityUrgent), nil
		}
		return NewShoutAction(ctx.Agent, "alarm", PriorityUrgent), nil
	}
	return nil, nil
}

// stepAway picks the passable neighbor that most increases distance from
// the threat.
func stepAway(m *world.Map, from, threat world.Coord) (world.Coord, bool) {
	current := world.Distance(from, threat)
	var best world.Coord
	bestDist := current
	for _, n := range from.Neighbors() {
		if !m.Passable(n) {
			continue
		}
		if d := world.Distance(n, threat); d > bestDist || (d == bestDist && d > current && less(n, best)) {
			best = n
			bestDist = d
		}
	}
	return best, bestDist > current
}

// DepositTrait keeps hands free: when carrying a sizable food surplus
// and the settlement knows a granary, start a haul to store it.
type DepositTrait struct {
	Surplus int
}

func (t *DepositTrait) Name() string       { return "deposit" }
func (t *DepositTrait) Priority() Priority { return PriorityNormal }

func (t *DepositTrait) Suggest(ctx *TaskContext) (Action, error) {
	a := ctx.Agent
	carried := a.Carried.Count(world.ItemGrain)
	if carried < t.Surplus {
		return nil, nil
	}
	if a.Needs.Food < 0.5 {
		// Hungry agents keep their food.
		return nil, nil
	}
	if act := a.Activity(); act != nil && !act.State().Terminal() {
		return nil, nil
	}

	f, ok := a.Knowledge().NearestWithPrefix("granary", ctx.Pos)
	if !ok {
		return nil, nil
	}
	dest := ctx.Map.Building(f.BuildingID)
	if !dest.Valid() || dest.Store == nil {
		return nil, nil
	}
	haul := NewHaulTask(nil, dest, world.ItemGrain, carried, PriorityNormal)
	return NewStartTaskAction(a, SlotActivity, haul, PriorityNormal), nil
}

// WanderTrait drifts the agent around when nothing better to do.
type WanderTrait struct {
	Chance float64 // Probability of wandering on an otherwise idle tick
}

func (t *WanderTrait) Name() string       { return "wander" }
func (t *WanderTrait) Priority() Priority { return PriorityCasual }

func (t *WanderTrait) Suggest(ctx *TaskContext) (Action, error) {
	a := ctx.Agent
	if a.rng.Float() >= t.Chance {
		return nil, nil
	}
	neighbors := ctx.Pos.Neighbors()
	start := a.rng.Intn(len(neighbors))
	for i := 0; i < len(neighbors); i++ {
		n := neighbors[(start+i)%len(neighbors)]
		if ctx.Map.Passable(n) {
			return NewMoveAction(a, n, PriorityCasual), nil
		}
	}
	return nil, nil
}
