package mind

import "github.com/talgya/microcosm/internal/world"

// haulPhase sequences a HaulTask.
type haulPhase uint8

const (
	haulTravelSource haulPhase = iota
	haulLoad
	haulTravelDest
	haulUnload
)

// HaulTask is the multi-phase "travel, then act" task: walk to a source
// container, load items, optionally walk to a destination container and
// unload there. Source nil means "start from what is already carried";
// Dest nil means "keep the load".
//
// It delegates navigation to an inner TravelTask. When the inner task
// completes silently (terminal state, nil action, same call), HaulTask
// advances to its next phase within the same Advance call instead of
// returning nil, otherwise a lower-priority trait could seize the
// activity slot during the one-tick gap.
type HaulTask struct {
	TaskBase

	Source *world.Building
	Dest   *world.Building
	Item   world.ItemKind
	Qty    int

	priority Priority
	phase    haulPhase
	travel   *TravelTask
	loaded   int // units picked up so far
}

// NewHaulTask creates a haul. At least one of source/dest must be set.
func NewHaulTask(source, dest *world.Building, item world.ItemKind, qty int, p Priority) *HaulTask {
	t := &HaulTask{
		TaskBase: NewTaskBase("haul"),
		Source:   source,
		Dest:     dest,
		Item:     item,
		Qty:      qty,
		priority: p,
	}
	if source == nil {
		t.phase = haulTravelDest
	}
	return t
}

// Advance drives the phase machine. The loop exists so inner-task
// completion and empty phases resolve within a single call.
func (h *HaulTask) Advance(ctx *TaskContext) Action {
	if h.State().Terminal() {
		return nil
	}

	for {
		switch h.phase {
		case haulTravelSource:
			if !h.Source.Valid() {
				h.fail()
				return nil
			}
			act, done := h.travelTo(ctx, h.Source.Pos)
			if h.State().Terminal() {
				return nil
			}
			if done {
				h.phase = haulLoad
				continue
			}
			return act

		case haulLoad:
			if !h.Source.Valid() || h.Source.Store == nil {
				h.fail()
				return nil
			}
			carried := ctx.Agent.Carried.Count(h.Item)
			if h.loaded > 0 || carried >= h.Qty {
				// Already loaded, possibly partially. Move on.
				h.phase = haulTravelDest
				continue
			}
			if h.Source.Store.Count(h.Item) == 0 {
				// Nothing to take and nothing in hand: the haul cannot
				// proceed. Carrying on with zero load is a silent no-op
				// loop, so surface it as failure.
				if carried == 0 {
					h.fail()
					return nil
				}
				h.phase = haulTravelDest
				continue
			}
			h.loaded = h.Qty // optimistic; the transfer may move less
			return NewTransferAction(ctx.Agent, h.Source, h.Item, h.Qty, false, h.priority)

		case haulTravelDest:
			if h.Dest == nil {
				h.complete()
				return nil
			}
			if !h.Dest.Valid() {
				h.fail()
				return nil
			}
			act, done := h.travelTo(ctx, h.Dest.Pos)
			if h.State().Terminal() {
				return nil
			}
			if done {
				h.phase = haulUnload
				continue
			}
			return act

		case haulUnload:
			if !h.Dest.Valid() || h.Dest.Store == nil {
				h.fail()
				return nil
			}
			if ctx.Agent.Carried.Count(h.Item) == 0 {
				h.complete()
				return nil
			}
			// Unload everything carried of the kind, then complete on the
			// next call when the count reads zero.
			return NewTransferAction(ctx.Agent, h.Dest, h.Item, ctx.Agent.Carried.Count(h.Item), true, h.priority)

		default:
			h.fail()
			return nil
		}
	}
}

// travelTo lazily creates and drives the inner navigation task toward
// pos. done is true only when the inner task completed this call.
func (h *HaulTask) travelTo(ctx *TaskContext, pos world.Coord) (Action, bool) {
	if h.travel == nil || h.travel.Target != pos {
		h.travel = NewTravelTask(pos, 1, h.priority)
		h.travel.Bind(ctx.Agent)
	}
	act := h.travel.Advance(ctx)
	switch h.travel.State() {
	case TaskCompleted:
		h.travel = nil
		return nil, true
	case TaskFailed:
		// Inner navigation failure is this task's failure.
		h.fail()
		return nil, false
	default:
		return act, false
	}
}
