package world

import "testing"

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := SmallTestConfig()
	a := Generate(cfg)
	b := Generate(cfg)

	if a.TileCount() != b.TileCount() {
		t.Fatalf("tile counts differ: %d vs %d", a.TileCount(), b.TileCount())
	}
	for coord, tile := range a.Tiles {
		other := b.Get(coord)
		if other == nil || other.Terrain != tile.Terrain {
			t.Fatalf("terrain differs at %v", coord)
		}
	}
}

func TestGenerateCoversRadius(t *testing.T) {
	cfg := SmallTestConfig()
	m := Generate(cfg)

	// Hex count for radius R is 3R(R+1)+1.
	want := 3*cfg.Radius*(cfg.Radius+1) + 1
	if m.TileCount() != want {
		t.Errorf("tile count = %d, want %d", m.TileCount(), want)
	}
}

func TestFindOpenReturnsPassableAndDeterministic(t *testing.T) {
	m := Generate(SmallTestConfig())

	a := FindOpen(m, 5, 11)
	b := FindOpen(m, 5, 11)
	if len(a) != 5 {
		t.Fatalf("got %d spots, want 5", len(a))
	}
	for i, c := range a {
		if !m.Passable(c) {
			t.Errorf("spot %v is not passable", c)
		}
		if c != b[i] {
			t.Errorf("placement differs at %d with the same seed", i)
		}
	}

	seen := make(map[Coord]bool)
	for _, c := range a {
		if seen[c] {
			t.Errorf("duplicate spot %v", c)
		}
		seen[c] = true
	}
}
