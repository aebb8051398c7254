// Package mind provides the agent model: traits, tasks, actions, the
// per-tick Think pipeline, personal memory, and shared knowledge.
package mind

// Needs tracks the fulfillment level of each drive.
// All values range from 0.0 (completely unmet) to 1.0 (fully satisfied).
// Traits read needs to decide when to interrupt; nothing else consumes
// them directly.
type Needs struct {
	Food   float32 `json:"food"`
	Rest   float32 `json:"rest"`
	Safety float32 `json:"safety"`
	Social float32 `json:"social"`
}

// DefaultNeeds returns a comfortably satisfied needs vector.
func DefaultNeeds() Needs {
	return Needs{Food: 0.8, Rest: 0.9, Safety: 0.9, Social: 0.7}
}

// Decay reduces all needs slightly, the passage of one tick. Hunger
// moves fastest.
func (n *Needs) Decay() {
	n.Food -= 0.0020
	n.Rest -= 0.0010
	n.Safety -= 0.0003
	n.Social -= 0.0005
	n.Clamp()
}

// Clamp bounds every need to [0, 1].
func (n *Needs) Clamp() {
	clamp01(&n.Food)
	clamp01(&n.Rest)
	clamp01(&n.Safety)
	clamp01(&n.Social)
}

// Lowest returns the least satisfied need's value.
func (n *Needs) Lowest() float32 {
	low := n.Food
	if n.Rest < low {
		low = n.Rest
	}
	if n.Safety < low {
		low = n.Safety
	}
	if n.Social < low {
		low = n.Social
	}
	return low
}

func clamp01(v *float32) {
	if *v < 0 {
		*v = 0
	}
	if *v > 1 {
		*v = 1
	}
}
