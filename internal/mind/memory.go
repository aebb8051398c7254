package mind

import (
	"github.com/talgya/microcosm/internal/sense"
	"github.com/talgya/microcosm/internal/world"
)

// MemoryConfig sets the expiry horizon of each recollection class, in
// ticks. Storage observations persist long; entity sightings fade about
// four times faster.
type MemoryConfig struct {
	StorageTTL  uint64
	SightingTTL uint64
}

// DefaultMemoryConfig returns the standard expiry horizons.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{StorageTTL: 2400, SightingTTL: 600}
}

// StorageMemory is a recollection of a container's contents at the time
// the agent last stood next to it. It may be arbitrarily stale.
type StorageMemory struct {
	BuildingID uint64
	Pos        world.Coord
	Contents   world.Stock
	Tick       uint64
}

// Sighting is a recollection of where an entity was last noticed.
type Sighting struct {
	EntityID uint64
	Kind     sense.Kind
	Label    string
	Pos      world.Coord
	Tick     uint64
}

// Memory is an agent's private, decaying recollection store. It never
// reaches into live world state: the only way true container contents
// enter memory is physical adjacency at decision time. Everything else
// is recollection that may be wrong or stale.
//
// Memory is written only from its owning agent's decision call and
// swept from the control goroutine between ticks, so it needs no lock.
type Memory struct {
	cfg       MemoryConfig
	storages  map[uint64]StorageMemory
	sightings map[uint64]Sighting
}

// NewMemory creates an empty memory with the given expiries.
func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.StorageTTL == 0 {
		cfg.StorageTTL = DefaultMemoryConfig().StorageTTL
	}
	if cfg.SightingTTL == 0 {
		cfg.SightingTTL = DefaultMemoryConfig().SightingTTL
	}
	return &Memory{
		cfg:       cfg,
		storages:  make(map[uint64]StorageMemory),
		sightings: make(map[uint64]Sighting),
	}
}

// RecordStorage remembers a container's observed contents.
func (m *Memory) RecordStorage(buildingID uint64, pos world.Coord, contents world.Stock, tick uint64) {
	m.storages[buildingID] = StorageMemory{
		BuildingID: buildingID,
		Pos:        pos,
		Contents:   contents,
		Tick:       tick,
	}
}

// RecordSighting remembers where an entity was noticed.
func (m *Memory) RecordSighting(id uint64, kind sense.Kind, label string, pos world.Coord, tick uint64) {
	m.sightings[id] = Sighting{EntityID: id, Kind: kind, Label: label, Pos: pos, Tick: tick}
}

// RecallStorage returns the remembered contents of a container, if the
// recollection has not yet expired.
func (m *Memory) RecallStorage(buildingID, now uint64) (StorageMemory, bool) {
	sm, ok := m.storages[buildingID]
	if !ok || now >= sm.Tick+m.cfg.StorageTTL {
		return StorageMemory{}, false
	}
	return sm, true
}

// RecallSighting returns the remembered position of an entity, if the
// recollection has not yet expired.
func (m *Memory) RecallSighting(id, now uint64) (Sighting, bool) {
	s, ok := m.sightings[id]
	if !ok || now >= s.Tick+m.cfg.SightingTTL {
		return Sighting{}, false
	}
	return s, true
}

// StoragesWithItem returns unexpired storage recollections holding at
// least one unit of kind, most recently observed first.
func (m *Memory) StoragesWithItem(kind world.ItemKind, now uint64) []StorageMemory {
	var out []StorageMemory
	for _, sm := range m.storages {
		if now >= sm.Tick+m.cfg.StorageTTL {
			continue
		}
		if sm.Contents[kind] > 0 {
			out = append(out, sm)
		}
	}
	// Newest recollection first; building ID breaks ties.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if a.Tick > b.Tick || (a.Tick == b.Tick && a.BuildingID <= b.BuildingID) {
				break
			}
			out[j-1], out[j] = b, a
		}
	}
	return out
}

// Sweep removes expired entries. Called from a periodic maintenance
// layer, not every tick.
func (m *Memory) Sweep(now uint64) {
	for id, sm := range m.storages {
		if now >= sm.Tick+m.cfg.StorageTTL {
			delete(m.storages, id)
		}
	}
	for id, s := range m.sightings {
		if now >= s.Tick+m.cfg.SightingTTL {
			delete(m.sightings, id)
		}
	}
}

// Invalidate drops all recollections of one entity or building,
// immediately. Used when the referent is destroyed.
func (m *Memory) Invalidate(id uint64) {
	delete(m.storages, id)
	delete(m.sightings, id)
}

// Counts returns how many storage and sighting entries are held,
// including not-yet-swept expired ones.
func (m *Memory) Counts() (storages, sightings int) {
	return len(m.storages), len(m.sightings)
}
