// Package world provides the hex grid, terrain, buildings, and the
// storage-transfer contract the simulation core mutates.
// Uses axial coordinates (q, r) for the hex grid.
package world

// Coord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// NeighborDirections defines the six neighbor offsets in axial coordinates.
var NeighborDirections = [6]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (c Coord) Neighbors() [6]Coord {
	var result [6]Coord
	for i, dir := range NeighborDirections {
		result[i] = Coord{Q: c.Q + dir.Q, R: c.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Coord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	max := dq
	if dr > max {
		max = dr
	}
	if ds > max {
		max = ds
	}
	return max
}

// Adjacent reports whether two coordinates are the same hex or touching.
// This is the adjacency test the action layer revalidates at execution time.
func Adjacent(a, b Coord) bool {
	return Distance(a, b) <= 1
}

// Line returns the hexes on the straight line from a to b, inclusive.
// Uses cube-coordinate interpolation with rounding.
func Line(a, b Coord) []Coord {
	n := Distance(a, b)
	if n == 0 {
		return []Coord{a}
	}
	result := make([]Coord, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		result = append(result, cubeRound(
			lerp(float64(a.Q), float64(b.Q), t),
			lerp(float64(a.R), float64(b.R), t),
			lerp(float64(a.S()), float64(b.S()), t),
		))
	}
	return result
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// cubeRound snaps fractional cube coordinates to the nearest hex.
func cubeRound(q, r, s float64) Coord {
	rq := roundf(q)
	rr := roundf(r)
	rs := roundf(s)

	dq := absf(float64(rq) - q)
	dr := absf(float64(rr) - r)
	ds := absf(float64(rs) - s)

	switch {
	case dq > dr && dq > ds:
		rq = -rr - rs
	case dr > ds:
		rr = -rq - rs
	}
	return Coord{Q: rq, R: rr}
}

func roundf(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
