package world

import "testing"

func TestDistance(t *testing.T) {
	cases := []struct {
		name string
		a, b Coord
		want int
	}{
		{"same hex", Coord{0, 0}, Coord{0, 0}, 0},
		{"neighbor", Coord{0, 0}, Coord{1, 0}, 1},
		{"diagonal", Coord{0, 0}, Coord{2, -1}, 2},
		{"far", Coord{-3, 2}, Coord{4, -1}, 7},
		{"symmetric", Coord{4, -1}, Coord{-3, 2}, 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Distance(tc.a, tc.b); got != tc.want {
				t.Errorf("Distance(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestNeighbors(t *testing.T) {
	n := Coord{Q: 2, R: -1}.Neighbors()
	if len(n) != 6 {
		t.Fatalf("expected 6 neighbors, got %d", len(n))
	}
	seen := make(map[Coord]bool)
	for _, c := range n {
		if Distance(Coord{2, -1}, c) != 1 {
			t.Errorf("neighbor %v is not at distance 1", c)
		}
		if seen[c] {
			t.Errorf("duplicate neighbor %v", c)
		}
		seen[c] = true
	}
}

func TestAdjacent(t *testing.T) {
	center := Coord{0, 0}
	if !Adjacent(center, center) {
		t.Error("a hex should be adjacent to itself")
	}
	if !Adjacent(center, Coord{0, 1}) {
		t.Error("neighboring hexes should be adjacent")
	}
	if Adjacent(center, Coord{2, 0}) {
		t.Error("hexes at distance 2 should not be adjacent")
	}
}

func TestLineEndpoints(t *testing.T) {
	a, b := Coord{-2, 0}, Coord{3, -1}
	line := Line(a, b)
	if line[0] != a {
		t.Errorf("line starts at %v, want %v", line[0], a)
	}
	if line[len(line)-1] != b {
		t.Errorf("line ends at %v, want %v", line[len(line)-1], b)
	}
	if want := Distance(a, b) + 1; len(line) != want {
		t.Errorf("line has %d hexes, want %d", len(line), want)
	}
	for i := 1; i < len(line); i++ {
		if Distance(line[i-1], line[i]) != 1 {
			t.Errorf("line step %v -> %v is not unit length", line[i-1], line[i])
		}
	}
}

func TestLineOfSightBlocking(t *testing.T) {
	m := NewMap(5)
	for q := -5; q <= 5; q++ {
		for r := -5; r <= 5; r++ {
			c := Coord{q, r}
			if !m.InBounds(c) {
				continue
			}
			m.Set(&Tile{Coord: c, Terrain: TerrainPlains})
		}
	}

	from, to := Coord{-2, 0}, Coord{2, 0}
	if !m.LineOfSight(from, to) {
		t.Fatal("open plains should not block sight")
	}

	// A mountain between the endpoints blocks.
	m.Set(&Tile{Coord: Coord{0, 0}, Terrain: TerrainMountain})
	if m.LineOfSight(from, to) {
		t.Error("interior mountain should block sight")
	}

	// Opaque endpoints never block.
	m.Set(&Tile{Coord: Coord{0, 0}, Terrain: TerrainPlains})
	m.Set(&Tile{Coord: to, Terrain: TerrainForest})
	if !m.LineOfSight(from, to) {
		t.Error("an opaque endpoint should not block sight to itself")
	}
}
