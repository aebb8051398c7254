// Package sense provides the per-tick spatial index, frozen observation
// windows, ambient events, and the per-agent perception filter.
//
// The index is rebuilt from scratch once per tick on the control
// goroutine, then treated as immutable while decision calls run. The
// observation window for a position is computed once and cached, so
// colocated agents share the same window for the tick.
package sense

import (
	"sort"

	"github.com/talgya/microcosm/internal/world"
)

// Kind classifies what a sensed object is.
type Kind uint8

const (
	KindAgent Kind = iota
	KindBuilding
)

// KindName returns a human-readable kind.
func KindName(k Kind) string {
	if k == KindAgent {
		return "agent"
	}
	return "building"
}

// Sensable is anything that can appear in an observation window.
// Implemented by mind.Agent and world.Building.
type Sensable interface {
	SenseID() uint64
	SensePos() world.Coord
	SenseLabel() string
	SenseDifficulty() float64 // 0 (obvious) to 1 (nearly hidden)
}

// Object is one sensable as captured into an observation window.
type Object struct {
	ID         uint64
	Kind       Kind
	Label      string
	Pos        world.Coord
	Distance   int
	Difficulty float64
	Ref        Sensable
}

// Observation is the frozen window an agent reasons from for one tick.
// It is immutable once built; all concurrent decision calls for a tick
// share observations by pointer.
type Observation struct {
	Tick    uint64
	Center  world.Coord
	Radius  int
	Nearby  []Object
	Ambient []AmbientEvent
}

// Index is the global position → sensables index for one tick.
// PrepareForTick, Add, AddAmbient, and ObservationFor are all
// control-goroutine only; the Observations they produce are what the
// concurrent decision phase reads.
type Index struct {
	worldMap    *world.Map
	senseRadius int

	tick    uint64
	grid    map[world.Coord][]entry
	ambient []AmbientEvent
	cache   map[world.Coord]*Observation
}

type entry struct {
	kind Kind
	s    Sensable
}

// NewIndex creates an index over the given map with a sense radius.
func NewIndex(m *world.Map, senseRadius int) *Index {
	return &Index{
		worldMap:    m,
		senseRadius: senseRadius,
		grid:        make(map[world.Coord][]entry),
		cache:       make(map[world.Coord]*Observation),
	}
}

// SenseRadius returns the configured observation radius.
func (ix *Index) SenseRadius() int {
	return ix.senseRadius
}

// Map returns the map the index computes line of sight against.
func (ix *Index) Map() *world.Map {
	return ix.worldMap
}

// PrepareForTick clears and begins a full rebuild for the tick. Ambient
// events do not survive rebuilds; re-add any still-active ones.
func (ix *Index) PrepareForTick(tick uint64) {
	ix.tick = tick
	ix.grid = make(map[world.Coord][]entry)
	ix.ambient = ix.ambient[:0]
	ix.cache = make(map[world.Coord]*Observation)
}

// Add registers a sensable at its current position.
func (ix *Index) Add(kind Kind, s Sensable) {
	pos := s.SensePos()
	ix.grid[pos] = append(ix.grid[pos], entry{kind: kind, s: s})
}

// AddAmbient registers an ambient event for this tick.
func (ix *Index) AddAmbient(ev AmbientEvent) {
	ix.ambient = append(ix.ambient, ev)
}

// ObservationFor returns the observation window for a position, building
// and caching it on first request. The cache key is the position, so all
// agents standing on the same hex receive the identical window.
func (ix *Index) ObservationFor(pos world.Coord) *Observation {
	if obs, ok := ix.cache[pos]; ok {
		return obs
	}

	obs := &Observation{Tick: ix.tick, Center: pos, Radius: ix.senseRadius}

	// Sensables within the sense radius.
	r := ix.senseRadius
	for q := -r; q <= r; q++ {
		for dr := -r; dr <= r; dr++ {
			c := world.Coord{Q: pos.Q + q, R: pos.R + dr}
			d := world.Distance(pos, c)
			if d > r {
				continue
			}
			for _, e := range ix.grid[c] {
				obs.Nearby = append(obs.Nearby, Object{
					ID:         e.s.SenseID(),
					Kind:       e.kind,
					Label:      e.s.SenseLabel(),
					Pos:        c,
					Distance:   d,
					Difficulty: e.s.SenseDifficulty(),
					Ref:        e.s,
				})
			}
		}
	}

	// Nearest first; ID breaks ties so windows are deterministic.
	sort.Slice(obs.Nearby, func(i, j int) bool {
		if obs.Nearby[i].Distance != obs.Nearby[j].Distance {
			return obs.Nearby[i].Distance < obs.Nearby[j].Distance
		}
		return obs.Nearby[i].ID < obs.Nearby[j].ID
	})

	// Ambient events whose radius-expanded area intersects the window.
	for _, ev := range ix.ambient {
		if world.Distance(pos, ev.Pos) <= ev.Radius+r {
			obs.Ambient = append(obs.Ambient, ev)
		}
	}

	ix.cache[pos] = obs
	return obs
}
