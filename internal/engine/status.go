package engine

import (
	"github.com/talgya/microcosm/internal/mind"
	"github.com/talgya/microcosm/internal/world"
)

// AgentStatus is a read-only snapshot of one agent, safe to serve from
// any goroutine.
type AgentStatus struct {
	ID       uint64      `json:"id"`
	Name     string      `json:"name"`
	Pos      world.Coord `json:"pos"`
	Needs    mind.Needs  `json:"needs"`
	Carrying int         `json:"carrying"`
	Task     string      `json:"task,omitempty"`
	Moving   bool        `json:"moving"`
}

// Status is the coordinator's published snapshot, replaced atomically at
// the end of every tick.
type Status struct {
	Tick            uint64        `json:"tick"`
	AgentCount      int           `json:"agent_count"`
	ActionsExecuted int           `json:"actions_executed"`
	Agents          []AgentStatus `json:"agents"`
}

// Status returns the latest published snapshot. Never nil.
func (c *Coordinator) Status() *Status {
	return c.status.Load()
}

// publishStatus builds and swaps in the tick's snapshot. Control
// goroutine only; readers get it through the atomic pointer.
func (c *Coordinator) publishStatus(tick uint64, executed int) {
	s := &Status{
		Tick:            tick,
		AgentCount:      len(c.agents),
		ActionsExecuted: executed,
		Agents:          make([]AgentStatus, 0, len(c.agents)),
	}
	for _, a := range c.agents {
		s.Agents = append(s.Agents, AgentStatus{
			ID:       a.ID,
			Name:     a.Name,
			Pos:      a.Pos,
			Needs:    a.Needs,
			Carrying: a.Carried.Contents().Total(),
			Task:     a.ActiveTaskName(),
			Moving:   a.Moving(),
		})
	}
	c.status.Store(s)
}
