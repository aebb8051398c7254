package world

import "fmt"

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open ground, fast movement
	TerrainForest                  // Slower movement, blocks sight
	TerrainMountain                // Impassable, blocks sight
	TerrainMarsh                   // Slowest passable ground
	TerrainWater                   // Impassable
)

// TerrainName returns a human-readable terrain name.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "plains"
	case TerrainForest:
		return "forest"
	case TerrainMountain:
		return "mountain"
	case TerrainMarsh:
		return "marsh"
	case TerrainWater:
		return "water"
	default:
		return "unknown"
	}
}

// Tile represents a single hex on the world map.
type Tile struct {
	Coord     Coord   `json:"coord"`
	Terrain   Terrain `json:"terrain"`
	Elevation float64 `json:"elevation"` // 0.0 (low) to 1.0 (peak)
}

// Passable reports whether agents can enter the tile.
func (t *Tile) Passable() bool {
	return t.Terrain != TerrainMountain && t.Terrain != TerrainWater
}

// Opaque reports whether the tile blocks line of sight.
func (t *Tile) Opaque() bool {
	return t.Terrain == TerrainForest || t.Terrain == TerrainMountain
}

// MoveCost returns how many ticks a move into this tile occupies the mover.
func (t *Tile) MoveCost() int {
	switch t.Terrain {
	case TerrainForest:
		return 2
	case TerrainMarsh:
		return 3
	default:
		return 1
	}
}

// Map holds the complete hex grid world state.
type Map struct {
	Tiles  map[Coord]*Tile `json:"-"`
	Radius int             `json:"radius"`

	buildings map[uint64]*Building
	nextBldg  uint64
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Tiles:     make(map[Coord]*Tile),
		Radius:    radius,
		buildings: make(map[uint64]*Building),
		nextBldg:  1,
	}
}

// Get returns the tile at the given coordinate, or nil if out of bounds.
func (m *Map) Get(coord Coord) *Tile {
	return m.Tiles[coord]
}

// Set places a tile at the given coordinate.
func (m *Map) Set(t *Tile) {
	m.Tiles[t.Coord] = t
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord Coord) bool {
	q, r, s := abs(coord.Q), abs(coord.R), abs(coord.S())
	max := q
	if r > max {
		max = r
	}
	if s > max {
		max = s
	}
	return max <= m.Radius
}

// Passable reports whether the coordinate can be entered by an agent.
func (m *Map) Passable(coord Coord) bool {
	t := m.Get(coord)
	return t != nil && t.Passable()
}

// LineOfSight reports whether b is visible from a. Tiles between the two
// endpoints block sight when opaque; the endpoints themselves never block.
func (m *Map) LineOfSight(a, b Coord) bool {
	line := Line(a, b)
	for i := 1; i < len(line)-1; i++ {
		t := m.Get(line[i])
		if t != nil && t.Opaque() {
			return false
		}
	}
	return true
}

// TileCount returns the total number of tiles in the map.
func (m *Map) TileCount() int {
	return len(m.Tiles)
}

// AddBuilding registers a building on the map, assigning it an ID.
func (m *Map) AddBuilding(b *Building) *Building {
	b.ID = m.nextBldg
	m.nextBldg++
	m.buildings[b.ID] = b
	return b
}

// Building returns the building with the given ID, or nil.
func (m *Map) Building(id uint64) *Building {
	return m.buildings[id]
}

// Buildings returns all registered buildings. The slice is freshly
// allocated; the pointed-to buildings are shared.
func (m *Map) Buildings() []*Building {
	out := make([]*Building, 0, len(m.buildings))
	for _, b := range m.buildings {
		out = append(out, b)
	}
	return out
}

// RemoveBuilding invalidates and deregisters a building.
func (m *Map) RemoveBuilding(id uint64) {
	if b, ok := m.buildings[id]; ok {
		b.valid = false
		delete(m.buildings, id)
	}
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map{radius=%d tiles=%d buildings=%d}", m.Radius, len(m.Tiles), len(m.buildings))
}
