package mind

import (
	"github.com/talgya/microcosm/internal/sense"
	"github.com/talgya/microcosm/internal/world"
)

// TaskState is the lifecycle state of an activity or command.
type TaskState uint8

const (
	TaskRunning TaskState = iota
	TaskCompleted
	TaskFailed
)

// Terminal reports whether the state is final.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// String returns a human-readable state name.
func (s TaskState) String() string {
	switch s {
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Slot identifies which active-task slot a task occupies.
type Slot uint8

const (
	SlotCommand  Slot = iota // Externally issued directive
	SlotActivity             // Self-started long-running task
)

// TaskContext is what a task sees when asked for its next action: the
// owning agent's frozen position and filtered perception for the tick.
type TaskContext struct {
	Agent      *Agent
	Pos        world.Coord
	Perception *sense.Perception
	Map        *world.Map
	Tick       uint64
}

// Task is a stateful, resumable unit of behavior occupying an agent's
// Command or Activity slot.
//
// Advance may return nil when the task has no action this tick. Holders
// must check State after every Advance: a task that reaches a terminal
// state and returns nil in the same call is finished, not idle.
// Composed tasks must detect that transition on their inner task and
// move to their next phase within the same Advance call; returning a
// bare nil there would hand a one-tick window to an unrelated
// lower-priority proposal.
type Task interface {
	Name() string
	State() TaskState
	Advance(ctx *TaskContext) Action

	// Bind attaches the owning agent. Called once, on the control
	// goroutine, when the task enters a slot.
	Bind(a *Agent)
	// Teardown releases the task's hold. A still-running task is marked
	// Failed so it is never silently abandoned.
	Teardown()
}

// TaskBase carries the common task bookkeeping. Embed it and call
// complete or fail from Advance.
type TaskBase struct {
	name  string
	state TaskState
	agent *Agent
}

// NewTaskBase initializes the embedded bookkeeping.
func NewTaskBase(name string) TaskBase {
	return TaskBase{name: name, state: TaskRunning}
}

// Name returns the task's name.
func (b *TaskBase) Name() string { return b.name }

// State returns the task's lifecycle state.
func (b *TaskBase) State() TaskState { return b.state }

// Bind attaches the owning agent.
func (b *TaskBase) Bind(a *Agent) { b.agent = a }

// Owner returns the bound agent, nil before Bind.
func (b *TaskBase) Owner() *Agent { return b.agent }

// Teardown marks a still-running task Failed.
func (b *TaskBase) Teardown() {
	if b.state == TaskRunning {
		b.state = TaskFailed
	}
}

func (b *TaskBase) complete() { b.state = TaskCompleted }
func (b *TaskBase) fail()     { b.state = TaskFailed }
