package mind

import (
	"fmt"
	"sort"
)

// Trait is an always-present reactive rule. Each tick it may propose at
// most one action from the agent's position and perception; it never
// mutates shared state directly; only its returned action does, later,
// on the control goroutine. Writes to the owning agent's private state
// (memory, continuation fields) are allowed.
//
// A trait returning an error is treated as abstaining; the pipeline
// logs it and moves on.
type Trait interface {
	Name() string
	Priority() Priority
	Suggest(ctx *TaskContext) (Action, error)
}

// TraitSet is the flat, priority-ordered rule registry an agent polls
// every tick. Order is fixed at composition time.
type TraitSet struct {
	traits []Trait
}

// NewTraitSet validates and orders traits. A nil trait, an empty name,
// or two traits sharing a priority fails here, at composition, not at
// decision time.
func NewTraitSet(traits ...Trait) (*TraitSet, error) {
	seen := make(map[Priority]string, len(traits))
	for _, t := range traits {
		if t == nil {
			return nil, fmt.Errorf("trait set: nil trait")
		}
		if t.Name() == "" {
			return nil, fmt.Errorf("trait set: trait with empty name")
		}
		if prev, dup := seen[t.Priority()]; dup {
			return nil, fmt.Errorf("trait set: %q and %q share priority %d", prev, t.Name(), t.Priority())
		}
		seen[t.Priority()] = t.Name()
	}

	ordered := make([]Trait, len(traits))
	copy(ordered, traits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority() < ordered[j].Priority()
	})
	return &TraitSet{traits: ordered}, nil
}

// MustTraitSet is NewTraitSet for compositions known valid at build
// time; it panics on misconfiguration.
func MustTraitSet(traits ...Trait) *TraitSet {
	ts, err := NewTraitSet(traits...)
	if err != nil {
		panic(err)
	}
	return ts
}

// All returns the traits in ascending priority order.
func (ts *TraitSet) All() []Trait {
	return ts.traits
}

// Len returns the number of traits.
func (ts *TraitSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.traits)
}
