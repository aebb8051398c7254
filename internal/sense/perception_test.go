package sense

import (
	"testing"

	"github.com/talgya/microcosm/internal/entropy"
	"github.com/talgya/microcosm/internal/world"
)

func TestAdjacentAlwaysDetected(t *testing.T) {
	m := openMap(8)
	ix := NewIndex(m, 4)
	ix.PrepareForTick(1)
	// Nearly hidden, but standing right next to the observer.
	ix.Add(KindAgent, &fakeSensable{id: 1, pos: world.Coord{Q: 1, R: 0}, difficulty: 0.99})

	obs := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	per := Perceive(obs, m, 0.1, entropy.NewSource(1))
	if _, ok := per.FindObject(1); !ok {
		t.Error("adjacent object should be detected regardless of difficulty")
	}
}

func TestAcuityThreshold(t *testing.T) {
	m := openMap(8)
	ix := NewIndex(m, 4)
	ix.PrepareForTick(1)
	ix.Add(KindAgent, &fakeSensable{id: 1, pos: world.Coord{Q: 3, R: 0}, difficulty: 0.7})
	ix.Add(KindBuilding, &fakeSensable{id: 2, pos: world.Coord{Q: 0, R: 3}, difficulty: 0.1})

	obs := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	per := Perceive(obs, m, 0.5, entropy.NewSource(1))

	if _, ok := per.FindObject(1); ok {
		t.Error("object above the acuity threshold should go unnoticed")
	}
	if _, ok := per.FindObject(2); !ok {
		t.Error("easy object within acuity should be detected")
	}
}

func TestSightBlockedByTerrain(t *testing.T) {
	m := openMap(8)
	m.Set(&world.Tile{Coord: world.Coord{Q: 2, R: 0}, Terrain: world.TerrainMountain})

	ix := NewIndex(m, 5)
	ix.PrepareForTick(1)
	ix.Add(KindAgent, &fakeSensable{id: 1, pos: world.Coord{Q: 4, R: 0}, difficulty: 0.1})

	obs := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	per := Perceive(obs, m, 0.9, entropy.NewSource(1))
	if _, ok := per.FindObject(1); ok {
		t.Error("object behind a mountain should not be seen")
	}
}

func TestVisualEventNeedsLineOfSight(t *testing.T) {
	m := openMap(8)
	m.Set(&world.Tile{Coord: world.Coord{Q: 2, R: 0}, Terrain: world.TerrainForest})

	ix := NewIndex(m, 5)
	ix.PrepareForTick(1)
	ix.AddAmbient(AmbientEvent{
		Pos: world.Coord{Q: 4, R: 0}, Radius: 2, Intensity: 1.0, Channel: ChannelVisual,
	})

	obs := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	per := Perceive(obs, m, 0.9, entropy.NewSource(1))
	if len(per.Events) != 0 {
		t.Error("visual event behind opaque terrain should not be perceived")
	}
}

func TestLoudNearbySoundIsCertain(t *testing.T) {
	m := openMap(8)
	ix := NewIndex(m, 5)
	ix.PrepareForTick(1)
	ix.AddAmbient(AmbientEvent{
		Pos: world.Coord{Q: 1, R: 0}, Radius: 3, Intensity: 1.0, Channel: ChannelSound,
	})

	obs := ix.ObservationFor(world.Coord{Q: 0, R: 0})
	// Several observers with different streams all hear a certain event.
	for seed := int64(1); seed <= 5; seed++ {
		per := Perceive(obs, m, 0.5, entropy.NewSource(seed))
		if len(per.Events) != 1 {
			t.Fatalf("seed %d: full-intensity sound inside radius must always be heard", seed)
		}
	}
}

func TestDetectionProbabilityFalloff(t *testing.T) {
	ev := AmbientEvent{Radius: 2, Intensity: 0.8, Channel: ChannelSound}

	if p := ev.DetectionProbability(0, 4); p != 0.8 {
		t.Errorf("at origin p = %v, want 0.8", p)
	}
	if p := ev.DetectionProbability(2, 4); p != 0.8 {
		t.Errorf("at event radius p = %v, want 0.8", p)
	}
	inside := ev.DetectionProbability(3, 4)
	further := ev.DetectionProbability(5, 4)
	if !(inside > further) {
		t.Errorf("probability should fall with distance: %v then %v", inside, further)
	}
	if p := ev.DetectionProbability(7, 4); p != 0 {
		t.Errorf("beyond reach p = %v, want 0", p)
	}
}
