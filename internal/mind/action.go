package mind

import (
	"fmt"

	"github.com/talgya/microcosm/internal/sense"
	"github.com/talgya/microcosm/internal/world"
)

// Priority orders actions within a tick. Lower values are more urgent.
type Priority int

const (
	// PriorityCritical marks survival-level interrupts.
	PriorityCritical Priority = -2
	// PriorityUrgent is the dialogue-break threshold: while an agent is
	// in an exchange, only proposals at or below this value are honored.
	PriorityUrgent Priority = -1
	// PriorityNormal is the default for commands and activities.
	PriorityNormal Priority = 0
	// PriorityCasual marks idle-time behavior.
	PriorityCasual Priority = 5

	// priorityNoop sorts after everything; no-ops are never executed.
	priorityNoop Priority = 1 << 20
)

// ExecEnv is the execution-time environment handed to actions. Actions
// run one at a time on the control goroutine and must revalidate their
// preconditions here: an earlier action in the same tick may already
// have changed the world.
type ExecEnv struct {
	Tick uint64
	Map  *world.Map

	// Emit queues an ambient event for the next tick's index. May be nil.
	Emit func(sense.AmbientEvent)
	// Record journals a notable occurrence. May be nil.
	Record func(category, description string)
}

func (env *ExecEnv) emit(ev sense.AmbientEvent) {
	if env.Emit != nil {
		env.Emit(ev)
	}
}

func (env *ExecEnv) record(category, description string) {
	if env.Record != nil {
		env.Record(category, description)
	}
}

// Action is an atomic, priority-tagged world mutation. Executed exactly
// once, synchronously, on the control goroutine. An error means an
// execution-time precondition no longer held; the action is not retried
// within the tick.
type Action interface {
	Kind() string
	Priority() Priority
	Execute(env *ExecEnv) error
}

type noopAction struct{}

func (noopAction) Kind() string              { return "noop" }
func (noopAction) Priority() Priority        { return priorityNoop }
func (noopAction) Execute(env *ExecEnv) error { return nil }

// Noop returns the do-nothing action every decision defaults to.
func Noop() Action {
	return noopAction{}
}

// IsNoop reports whether an action is absent or the no-op.
func IsNoop(a Action) bool {
	if a == nil {
		return true
	}
	_, ok := a.(noopAction)
	return ok
}

// MoveAction steps an agent onto an adjacent hex and starts its movement
// progression for the tile's cost.
type MoveAction struct {
	Agent *Agent
	Dest  world.Coord

	priority Priority
}

// NewMoveAction creates a single-step move proposal.
func NewMoveAction(a *Agent, dest world.Coord, p Priority) *MoveAction {
	return &MoveAction{Agent: a, Dest: dest, priority: p}
}

func (m *MoveAction) Kind() string       { return "move" }
func (m *MoveAction) Priority() Priority { return m.priority }

func (m *MoveAction) Execute(env *ExecEnv) error {
	if !world.Adjacent(m.Agent.Pos, m.Dest) {
		return fmt.Errorf("move: %s no longer adjacent to (%d,%d)", m.Agent.Name, m.Dest.Q, m.Dest.R)
	}
	tile := env.Map.Get(m.Dest)
	if tile == nil || !tile.Passable() {
		return fmt.Errorf("move: (%d,%d) not passable", m.Dest.Q, m.Dest.R)
	}

	m.Agent.Pos = m.Dest
	m.Agent.beginMove(tile.MoveCost())

	env.emit(sense.AmbientEvent{
		Pos:       m.Dest,
		Radius:    1,
		Intensity: 0.3,
		Channel:   sense.ChannelSound,
		Label:     "footsteps",
		SourceID:  m.Agent.ID,
	})
	return nil
}

// TransferAction moves items between an agent's carried stock and a
// building's container. Direction is agent→building when Deposit is set.
type TransferAction struct {
	Agent    *Agent
	Building *world.Building
	Item     world.ItemKind
	Qty      int
	Deposit  bool

	priority Priority
}

// NewTransferAction creates a transfer proposal.
func NewTransferAction(a *Agent, b *world.Building, item world.ItemKind, qty int, deposit bool, p Priority) *TransferAction {
	return &TransferAction{Agent: a, Building: b, Item: item, Qty: qty, Deposit: deposit, priority: p}
}

func (t *TransferAction) Kind() string       { return "transfer" }
func (t *TransferAction) Priority() Priority { return t.priority }

func (t *TransferAction) Execute(env *ExecEnv) error {
	if !t.Building.Valid() || t.Building.Store == nil {
		return fmt.Errorf("transfer: building %d gone or has no storage", t.Building.ID)
	}
	if !world.Adjacent(t.Agent.Pos, t.Building.Pos) {
		return fmt.Errorf("transfer: %s not adjacent to %s", t.Agent.Name, t.Building.Name)
	}

	var moved int
	if t.Deposit {
		moved = t.Agent.Carried.TransferTo(t.Building.Store, t.Item, t.Qty)
	} else {
		moved = t.Building.Store.TransferTo(t.Agent.Carried, t.Item, t.Qty)
	}

	// The agent is adjacent, so it learns the container's true contents.
	t.Agent.memory.RecordStorage(t.Building.ID, t.Building.Pos, t.Building.Store.Contents(), env.Tick)

	if moved > 0 {
		dir := "took"
		if t.Deposit {
			dir = "stored"
		}
		env.record("transfer", fmt.Sprintf("%s %s %d %s at %s", t.Agent.Name, dir, moved, world.ItemName(t.Item), t.Building.Name))
	}
	return nil
}

// ConsumeAction eats one unit of an edible item from the agent's own
// carried stock.
type ConsumeAction struct {
	Agent *Agent
	Item  world.ItemKind

	priority Priority
}

// NewConsumeAction creates a consume proposal.
func NewConsumeAction(a *Agent, item world.ItemKind, p Priority) *ConsumeAction {
	return &ConsumeAction{Agent: a, Item: item, priority: p}
}

func (c *ConsumeAction) Kind() string       { return "consume" }
func (c *ConsumeAction) Priority() Priority { return c.priority }

func (c *ConsumeAction) Execute(env *ExecEnv) error {
	if !world.Edible(c.Item) {
		return fmt.Errorf("consume: %s is not edible", world.ItemName(c.Item))
	}
	if c.Agent.Carried.Remove(c.Item, 1) == 0 {
		return fmt.Errorf("consume: %s has no %s left", c.Agent.Name, world.ItemName(c.Item))
	}
	c.Agent.Needs.Food += 0.25
	c.Agent.Needs.Clamp()
	return nil
}

// ShoutAction emits a loud ambient sound from the agent's position.
type ShoutAction struct {
	Agent *Agent
	Label string

	priority Priority
}

// NewShoutAction creates a shout proposal.
func NewShoutAction(a *Agent, label string, p Priority) *ShoutAction {
	return &ShoutAction{Agent: a, Label: label, priority: p}
}

func (s *ShoutAction) Kind() string       { return "shout" }
func (s *ShoutAction) Priority() Priority { return s.priority }

func (s *ShoutAction) Execute(env *ExecEnv) error {
	env.emit(sense.AmbientEvent{
		Pos:       s.Agent.Pos,
		Radius:    4,
		Intensity: 0.9,
		Channel:   sense.ChannelSound,
		Label:     s.Label,
		SourceID:  s.Agent.ID,
	})
	env.record("shout", fmt.Sprintf("%s shouts: %s", s.Agent.Name, s.Label))
	return nil
}

// StartTaskAction atomically replaces an agent's active Command or
// Activity slot: the prior occupant is torn down, then the new task is
// bound to the agent, effective from the next tick's proposals onward.
// This is the only way a task ever replaces another.
type StartTaskAction struct {
	Agent   *Agent
	Slot    Slot
	NewTask Task

	priority Priority
}

// NewStartTaskAction creates a slot-replacement proposal.
func NewStartTaskAction(a *Agent, slot Slot, task Task, p Priority) *StartTaskAction {
	return &StartTaskAction{Agent: a, Slot: slot, NewTask: task, priority: p}
}

func (s *StartTaskAction) Kind() string       { return "start_task" }
func (s *StartTaskAction) Priority() Priority { return s.priority }

func (s *StartTaskAction) Execute(env *ExecEnv) error {
	if s.NewTask == nil {
		return fmt.Errorf("start_task: nil task for %s", s.Agent.Name)
	}
	s.Agent.replaceSlot(s.Slot, s.NewTask)
	env.record("task", fmt.Sprintf("%s starts %s", s.Agent.Name, s.NewTask.Name()))
	return nil
}
