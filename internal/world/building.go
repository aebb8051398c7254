package world

// BuildingKind classifies buildings for perception and knowledge lookups.
type BuildingKind uint8

const (
	BuildingGranary  BuildingKind = iota // Food storage
	BuildingWarehouse                    // General storage
	BuildingWell                         // Landmark, no storage
	BuildingHut                          // Shelter
)

// BuildingKindName returns a human-readable building kind.
func BuildingKindName(k BuildingKind) string {
	switch k {
	case BuildingGranary:
		return "granary"
	case BuildingWarehouse:
		return "warehouse"
	case BuildingWell:
		return "well"
	case BuildingHut:
		return "hut"
	default:
		return "unknown"
	}
}

// Building is a stationary structure, optionally holding a storage
// container. Buildings are constructed by external generation code and
// handed to the core by reference; the core relies only on stable
// position, the adjacency test, and the storage contract.
type Building struct {
	ID    uint64
	Name  string
	Kind  BuildingKind
	Pos   Coord
	Store *Storage // nil for buildings without storage

	valid bool
}

// NewBuilding creates a building at a position. Register it on a Map to
// assign its ID.
func NewBuilding(name string, kind BuildingKind, pos Coord, store *Storage) *Building {
	return &Building{Name: name, Kind: kind, Pos: pos, Store: store, valid: true}
}

// Valid reports whether the building still exists. Tasks holding a stale
// reference use this to surface their own Failed state instead of acting
// against a destroyed target.
func (b *Building) Valid() bool {
	return b != nil && b.valid
}

// SenseID implements the sensable contract.
func (b *Building) SenseID() uint64 { return b.ID }

// SensePos implements the sensable contract.
func (b *Building) SensePos() Coord { return b.Pos }

// SenseLabel implements the sensable contract.
func (b *Building) SenseLabel() string { return b.Name }

// SenseDifficulty implements the sensable contract. Buildings are large
// and easy to spot.
func (b *Building) SenseDifficulty() float64 { return 0.1 }
