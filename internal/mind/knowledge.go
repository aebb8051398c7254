package mind

import (
	"strings"

	"github.com/talgya/microcosm/internal/world"
)

// Fact is a shared, named piece of knowledge: a known location, a
// landmark, a standing arrangement.
type Fact struct {
	Key        string      `json:"key"` // e.g. "granary:north", "well"
	Pos        world.Coord `json:"pos"`
	BuildingID uint64      `json:"building_id,omitempty"`
	Note       string      `json:"note,omitempty"`
	Tick       uint64      `json:"tick"`
}

// Scope is a named collection of shared facts referenced (not owned) by
// many agents: a settlement's common knowledge, a household's, a
// faction's.
//
// Mutation is control-goroutine only and happens strictly outside the
// concurrent decision phase; every accessor returns copies, so the hot
// read path needs no locking.
type Scope struct {
	name  string
	facts map[string]Fact
}

// NewScope creates an empty knowledge scope.
func NewScope(name string) *Scope {
	return &Scope{name: name, facts: make(map[string]Fact)}
}

// Name returns the scope's name.
func (s *Scope) Name() string {
	return s.name
}

// Record stores or replaces a fact. Control goroutine only.
func (s *Scope) Record(f Fact) {
	s.facts[f.Key] = f
}

// Forget removes a fact. Control goroutine only.
func (s *Scope) Forget(key string) {
	delete(s.facts, key)
}

// Lookup returns a copy of the fact with the given key.
func (s *Scope) Lookup(key string) (Fact, bool) {
	f, ok := s.facts[key]
	return f, ok
}

// Facts returns a copy of every fact in the scope.
func (s *Scope) Facts() []Fact {
	out := make([]Fact, 0, len(s.facts))
	for _, f := range s.facts {
		out = append(out, f)
	}
	return out
}

// Len returns the number of facts held.
func (s *Scope) Len() int {
	return len(s.facts)
}

// Knowledge is the composable set of scopes one agent references.
// Multiple agents share the same underlying scopes.
type Knowledge struct {
	scopes []*Scope
}

// NewKnowledge composes zero or more scopes.
func NewKnowledge(scopes ...*Scope) *Knowledge {
	return &Knowledge{scopes: scopes}
}

// Attach adds another scope. Control goroutine only.
func (k *Knowledge) Attach(s *Scope) {
	k.scopes = append(k.scopes, s)
}

// Lookup returns the first fact matching key across scopes, in scope
// attachment order.
func (k *Knowledge) Lookup(key string) (Fact, bool) {
	for _, s := range k.scopes {
		if f, ok := s.Lookup(key); ok {
			return f, true
		}
	}
	return Fact{}, false
}

// NearestWithPrefix returns the fact whose key starts with prefix that
// lies closest to from, across all scopes.
func (k *Knowledge) NearestWithPrefix(prefix string, from world.Coord) (Fact, bool) {
	var best Fact
	bestDist := -1
	for _, s := range k.scopes {
		for _, f := range s.Facts() {
			if !strings.HasPrefix(f.Key, prefix) {
				continue
			}
			d := world.Distance(from, f.Pos)
			if bestDist < 0 || d < bestDist || (d == bestDist && f.Key < best.Key) {
				best = f
				bestDist = d
			}
		}
	}
	return best, bestDist >= 0
}
