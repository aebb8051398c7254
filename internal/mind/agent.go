package mind

import (
	"sync/atomic"

	"github.com/talgya/microcosm/internal/entropy"
	"github.com/talgya/microcosm/internal/world"
)

// Agent is one autonomous actor. Its decision call runs concurrently
// with every other agent's; everything it writes during that call is
// its own private state. World mutation happens only through the
// actions it returns.
type Agent struct {
	ID   uint64
	Name string
	Pos  world.Coord

	// Acuity is the sense-difficulty ceiling this agent can detect.
	Acuity float64

	Needs   Needs
	Carried *world.Storage

	traits    *TraitSet
	command   *Directive
	activity  Task
	memory    *Memory
	knowledge *Knowledge
	worldMap  *world.Map
	rng       *entropy.Source

	moveTicksLeft int
	inDialogue    atomic.Bool
}

// AgentConfig composes an agent. Traits, memory horizons, and knowledge
// scopes are fixed here; the slots start empty.
type AgentConfig struct {
	ID       uint64
	Name     string
	Pos      world.Coord
	Acuity   float64
	Carry    int // carried-stock capacity, 0 = default
	Traits   *TraitSet
	Memory   MemoryConfig
	Scopes   []*Scope
	Map      *world.Map
	Rand     *entropy.Source
}

// NewAgent builds an agent from its configuration.
func NewAgent(cfg AgentConfig) *Agent {
	carry := cfg.Carry
	if carry == 0 {
		carry = 20
	}
	rng := cfg.Rand
	if rng == nil {
		rng = entropy.NewSource(int64(cfg.ID) + 1)
	}
	acuity := cfg.Acuity
	if acuity == 0 {
		acuity = 0.6
	}
	return &Agent{
		ID:        cfg.ID,
		Name:      cfg.Name,
		Pos:       cfg.Pos,
		Acuity:    acuity,
		Needs:     DefaultNeeds(),
		Carried:   world.NewStorage(carry),
		traits:    cfg.Traits,
		memory:    NewMemory(cfg.Memory),
		knowledge: NewKnowledge(cfg.Scopes...),
		worldMap:  cfg.Map,
		rng:       rng,
	}
}

// Memory returns the agent's private memory.
func (a *Agent) Memory() *Memory { return a.memory }

// Knowledge returns the agent's composed knowledge scopes.
func (a *Agent) Knowledge() *Knowledge { return a.knowledge }

// Command returns the active externally issued directive, or nil.
func (a *Agent) Command() *Directive { return a.command }

// Activity returns the active self-started task, or nil.
func (a *Agent) Activity() Task { return a.activity }

// ActiveTaskName names the currently running command or activity for
// UI/selection surfaces. Empty when idle.
func (a *Agent) ActiveTaskName() string {
	if a.command != nil && !a.command.State().Terminal() {
		return a.command.Name()
	}
	if a.activity != nil && !a.activity.State().Terminal() {
		return a.activity.Name()
	}
	return ""
}

// replaceSlot tears down the slot's occupant and installs the new task.
// Control goroutine only; reached exclusively through StartTaskAction
// execution or directive application at the tick boundary.
func (a *Agent) replaceSlot(slot Slot, task Task) {
	switch slot {
	case SlotCommand:
		if a.command != nil {
			a.command.Teardown()
		}
		if d, ok := task.(*Directive); ok {
			a.command = d
		} else {
			a.command = NewDirective(task, "internal")
		}
		task.Bind(a)
	case SlotActivity:
		if a.activity != nil {
			a.activity.Teardown()
		}
		a.activity = task
		task.Bind(a)
	}
}

// ClearTerminalTasks tears down and empties any slot whose occupant
// reached a terminal state. Called by the coordinator at the end of
// every tick, on the control goroutine.
func (a *Agent) ClearTerminalTasks() {
	if a.command != nil && a.command.State().Terminal() {
		a.command.Teardown()
		a.command = nil
	}
	if a.activity != nil && a.activity.State().Terminal() {
		a.activity.Teardown()
		a.activity = nil
	}
}

// beginMove starts a movement progression of cost ticks. The tick that
// executes the move is the first of them; the end-of-tick advance
// consumes it, leaving cost-1 ticks of occupancy.
func (a *Agent) beginMove(cost int) {
	if cost > 1 {
		a.moveTicksLeft = cost
	}
}

// Moving reports whether a multi-tick move is still in progress.
func (a *Agent) Moving() bool {
	return a.moveTicksLeft > 0
}

// AdvanceMovement consumes one tick of movement progression. Control
// goroutine only.
func (a *Agent) AdvanceMovement() {
	if a.moveTicksLeft > 0 {
		a.moveTicksLeft--
	}
}

// SetDialogue marks the agent as being in an interactive exchange.
// While set, only urgent proposals interrupt; everything else idles.
func (a *Agent) SetDialogue(on bool) {
	a.inDialogue.Store(on)
}

// InDialogue reports whether the agent is mid-exchange.
func (a *Agent) InDialogue() bool {
	return a.inDialogue.Load()
}

// SenseID implements the sensable contract.
func (a *Agent) SenseID() uint64 { return a.ID }

// SensePos implements the sensable contract.
func (a *Agent) SensePos() world.Coord { return a.Pos }

// SenseLabel implements the sensable contract.
func (a *Agent) SenseLabel() string { return a.Name }

// SenseDifficulty implements the sensable contract. People are a little
// harder to spot than buildings.
func (a *Agent) SenseDifficulty() float64 { return 0.25 }
