// Demo world generation using layered simplex noise. Real deployments
// build maps and buildings in external generation code; this exists so
// the cmd binaries and tests have a world to run against.
package world

import (
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds demo world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius
	Seed        int64   // Random seed (0 = random)
	WaterLevel  float64 // Elevation threshold for water (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      18,
		Seed:        0,
		WaterLevel:  0.22,
		MountainLvl: 0.75,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      6,
		Seed:        42,
		WaterLevel:  0.15,
		MountainLvl: 0.85,
	}
}

// Generate creates a complete demo map with terrain derived from noise.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	wetNoise := opensimplex.NewNormalized(seed + 1)

	m := NewMap(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := Coord{Q: q, R: r}
			if !m.InBounds(coord) {
				continue
			}

			// Hex axial → cartesian for noise sampling:
			// x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			// Two octaves for natural-looking terrain.
			elev := 0.7*elevNoise.Eval2(x*0.08, y*0.08) + 0.3*elevNoise.Eval2(x*0.25, y*0.25)
			wet := wetNoise.Eval2(x*0.1, y*0.1)

			m.Set(&Tile{
				Coord:     coord,
				Terrain:   deriveTerrain(elev, wet, cfg),
				Elevation: elev,
			})
		}
	}
	return m
}

func deriveTerrain(elev, wet float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.WaterLevel:
		return TerrainWater
	case elev > cfg.MountainLvl:
		return TerrainMountain
	case wet > 0.75:
		return TerrainMarsh
	case wet > 0.5:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// TerrainCounts tallies tiles per terrain type.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range m.Tiles {
		counts[t.Terrain]++
	}
	return counts
}

// FindOpen returns up to n distinct passable coordinates, scanning from
// the map center outward with a seeded shuffle per ring.
func FindOpen(m *Map, n int, seed int64) []Coord {
	rng := rand.New(rand.NewSource(seed))
	var out []Coord
	for radius := 0; radius <= m.Radius && len(out) < n; radius++ {
		var ring []Coord
		for coord, t := range m.Tiles {
			if Distance(coord, Coord{}) == radius && t.Passable() {
				ring = append(ring, coord)
			}
		}
		// Map iteration order is random; sort before the seeded shuffle so
		// the same seed yields the same placements.
		sort.Slice(ring, func(i, j int) bool {
			if ring[i].Q != ring[j].Q {
				return ring[i].Q < ring[j].Q
			}
			return ring[i].R < ring[j].R
		})
		rng.Shuffle(len(ring), func(i, j int) { ring[i], ring[j] = ring[j], ring[i] })
		for _, c := range ring {
			if len(out) >= n {
				break
			}
			out = append(out, c)
		}
	}
	return out
}
