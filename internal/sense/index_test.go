package sense

import (
	"testing"

	"github.com/talgya/microcosm/internal/world"
)

type fakeSensable struct {
	id         uint64
	pos        world.Coord
	label      string
	difficulty float64
}

func (f *fakeSensable) SenseID() uint64          { return f.id }
func (f *fakeSensable) SensePos() world.Coord    { return f.pos }
func (f *fakeSensable) SenseLabel() string       { return f.label }
func (f *fakeSensable) SenseDifficulty() float64 { return f.difficulty }

func openMap(radius int) *world.Map {
	m := world.NewMap(radius)
	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			c := world.Coord{Q: q, R: r}
			if !m.InBounds(c) {
				continue
			}
			m.Set(&world.Tile{Coord: c, Terrain: world.TerrainPlains})
		}
	}
	return m
}

func TestColocatedAgentsShareWindow(t *testing.T) {
	ix := NewIndex(openMap(8), 4)
	ix.PrepareForTick(10)
	ix.Add(KindAgent, &fakeSensable{id: 1, pos: world.Coord{Q: 0, R: 0}})
	ix.Add(KindAgent, &fakeSensable{id: 2, pos: world.Coord{Q: 0, R: 0}})

	a := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	b := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	if a != b {
		t.Error("same position should return the identical cached window")
	}
	if a.Tick != 10 {
		t.Errorf("window tick = %d, want 10", a.Tick)
	}
}

func TestObservationExcludesBeyondRadius(t *testing.T) {
	ix := NewIndex(openMap(10), 3)
	ix.PrepareForTick(1)
	ix.Add(KindAgent, &fakeSensable{id: 1, pos: world.Coord{Q: 2, R: 0}})
	ix.Add(KindAgent, &fakeSensable{id: 2, pos: world.Coord{Q: 5, R: 0}})

	obs := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	if len(obs.Nearby) != 1 {
		t.Fatalf("got %d objects, want 1", len(obs.Nearby))
	}
	if obs.Nearby[0].ID != 1 {
		t.Errorf("got object %d, want 1", obs.Nearby[0].ID)
	}
}

func TestObservationOrderIsDeterministic(t *testing.T) {
	build := func() *Observation {
		ix := NewIndex(openMap(8), 4)
		ix.PrepareForTick(1)
		ix.Add(KindAgent, &fakeSensable{id: 3, pos: world.Coord{Q: 1, R: 0}})
		ix.Add(KindAgent, &fakeSensable{id: 1, pos: world.Coord{Q: 0, R: 2}})
		ix.Add(KindAgent, &fakeSensable{id: 2, pos: world.Coord{Q: 0, R: 2}})
		return ix.ObservationFor(world.Coord{Q: 0, R: 0})
	}
	a, b := build(), build()
	if len(a.Nearby) != 3 || len(b.Nearby) != 3 {
		t.Fatalf("got %d and %d objects, want 3", len(a.Nearby), len(b.Nearby))
	}
	for i := range a.Nearby {
		if a.Nearby[i].ID != b.Nearby[i].ID {
			t.Fatalf("order differs at %d: %d vs %d", i, a.Nearby[i].ID, b.Nearby[i].ID)
		}
	}
	// Nearest first, ID-ordered within equal distance.
	if a.Nearby[0].ID != 3 || a.Nearby[1].ID != 1 || a.Nearby[2].ID != 2 {
		t.Errorf("order = [%d %d %d], want [3 1 2]", a.Nearby[0].ID, a.Nearby[1].ID, a.Nearby[2].ID)
	}
}

func TestAmbientIntersectsExpandedWindow(t *testing.T) {
	ix := NewIndex(openMap(12), 3)
	ix.PrepareForTick(1)
	// Event center is 5 away; its radius 2 brings it within 3+2.
	ix.AddAmbient(AmbientEvent{Pos: world.Coord{Q: 5, R: 0}, Radius: 2, Intensity: 0.9, Channel: ChannelSound})
	// This one stays out of reach.
	ix.AddAmbient(AmbientEvent{Pos: world.Coord{Q: 9, R: 0}, Radius: 2, Intensity: 0.9, Channel: ChannelSound})

	obs := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	if len(obs.Ambient) != 1 {
		t.Fatalf("got %d ambient events, want 1", len(obs.Ambient))
	}
}

func TestPrepareForTickClearsState(t *testing.T) {
	ix := NewIndex(openMap(8), 4)
	ix.PrepareForTick(1)
	ix.Add(KindAgent, &fakeSensable{id: 1, pos: world.Coord{Q: 1, R: 0}})
	ix.AddAmbient(AmbientEvent{Pos: world.Coord{Q: 0, R: 0}, Radius: 1, Intensity: 1})
	ix.ObservationFor(world.Coord{Q: 0, R: 0})

	ix.PrepareForTick(2)
	obs := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	if len(obs.Nearby) != 0 || len(obs.Ambient) != 0 {
		t.Error("rebuild should drop prior sensables and ambient events")
	}
	if obs.Tick != 2 {
		t.Errorf("window tick = %d, want 2", obs.Tick)
	}
}
