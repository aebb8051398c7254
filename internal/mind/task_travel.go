package mind

import "github.com/talgya/microcosm/internal/world"

// TravelTask is the one-shot navigation task: walk until within
// Tolerance hexes of Target. It completes silently: reaching the
// destination makes Advance flip to Completed and return nil in the
// same call. Outer tasks composing it must handle that transition
// immediately (see Task).
type TravelTask struct {
	TaskBase

	Target    world.Coord
	Tolerance int

	priority Priority
}

// NewTravelTask creates a navigation task. tolerance 0 means stand on
// the target hex; 1 means adjacent is enough.
func NewTravelTask(target world.Coord, tolerance int, p Priority) *TravelTask {
	return &TravelTask{
		TaskBase:  NewTaskBase("travel"),
		Target:    target,
		Tolerance: tolerance,
		priority:  p,
	}
}

// Advance proposes the next step toward the target, or completes.
func (t *TravelTask) Advance(ctx *TaskContext) Action {
	if t.State().Terminal() {
		return nil
	}
	if world.Distance(ctx.Pos, t.Target) <= t.Tolerance {
		t.complete()
		return nil
	}

	step, ok := nextStep(ctx.Map, ctx.Pos, t.Target)
	if !ok {
		// Boxed in: every neighbor is impassable or moves away.
		t.fail()
		return nil
	}
	return NewMoveAction(ctx.Agent, step, t.priority)
}

// nextStep picks the passable neighbor that strictly reduces distance to
// the target, lowest (Q,R) on ties. Greedy stepping is enough on open
// hex maps; a blocked greedy path fails the task rather than searching.
func nextStep(m *world.Map, from, target world.Coord) (world.Coord, bool) {
	current := world.Distance(from, target)
	var best world.Coord
	found := false
	for _, n := range from.Neighbors() {
		if !m.Passable(n) {
			continue
		}
		d := world.Distance(n, target)
		if d >= current {
			continue
		}
		if !found || less(n, best) {
			best = n
			found = true
		}
	}
	return best, found
}

func less(a, b world.Coord) bool {
	if a.Q != b.Q {
		return a.Q < b.Q
	}
	return a.R < b.R
}
