// Command microcosm runs the autonomous settlement simulation: a demo
// world, a handful of trait-driven agents, the HTTP API, and the live
// status stream.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/talgya/microcosm/internal/api"
	"github.com/talgya/microcosm/internal/config"
	"github.com/talgya/microcosm/internal/engine"
	"github.com/talgya/microcosm/internal/entropy"
	"github.com/talgya/microcosm/internal/journal"
	"github.com/talgya/microcosm/internal/mind"
	"github.com/talgya/microcosm/internal/platform/logger"
	"github.com/talgya/microcosm/internal/platform/metrics"
	"github.com/talgya/microcosm/internal/sense"
	"github.com/talgya/microcosm/internal/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.DebugAgents)

	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		log.Error().Err(err).Msg("tuning load failed")
		os.Exit(1)
	}

	met := metrics.New()

	jnl, err := journal.Open(cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("journal open failed")
		os.Exit(1)
	}
	defer jnl.Close()
	log.Info().Str("path", cfg.DBPath).Msg("journal opened")

	rng := entropy.NewSource(cfg.Seed)

	gen := world.DefaultGenConfig()
	gen.Radius = tuning.MapRadius
	gen.Seed = cfg.Seed
	worldMap := world.Generate(gen)
	for terrain, count := range world.TerrainCounts(worldMap) {
		log.Info().Str("terrain", world.TerrainName(terrain)).Int("count", count).Msg("terrain generated")
	}

	placeBuildings(worldMap, cfg.Seed, log)
	town := mind.NewScope("town")
	for _, b := range worldMap.Buildings() {
		town.Record(mind.Fact{
			Key:        fmt.Sprintf("%s:%d", world.BuildingKindName(b.Kind), b.ID),
			Pos:        b.Pos,
			BuildingID: b.ID,
		})
	}

	index := sense.NewIndex(worldMap, tuning.SenseRadius)
	coord := engine.NewCoordinator(worldMap, index, log, met, jnl, engine.CoordinatorConfig{
		Workers:         tuning.Workers,
		DecisionTimeout: tuning.DecisionTimeout.Std(),
	})

	spawnAgents(coord, worldMap, town, rng, tuning)
	log.Info().Int("agents", len(coord.Agents())).Msg("population spawned")

	hub := api.NewHub(log)
	go hub.Run()

	clock := engine.NewClock(log, engine.ClockConfig{
		Interval:     tuning.TickInterval.Std(),
		TicksPerHour: tuning.TicksPerHour,
		HoursPerDay:  tuning.HoursPerDay,
	})
	clock.OnTick(func(tick uint64) {
		if err := coord.ProcessTick(tick); err != nil {
			return
		}
		hub.Broadcast(coord.Status())
	})
	clock.OnHour(func(hour uint64) {
		coord.SweepMemories(clock.Tick())
		log.SweepLimiter()
		if err := jnl.Flush(); err != nil {
			log.Error().Err(err).Msg("journal flush failed")
		}
	})
	clock.OnDay(func(day uint64) {
		from := (day - 1) * tuning.HoursPerDay * tuning.TicksPerHour
		to := day * tuning.HoursPerDay * tuning.TicksPerHour
		counts, err := jnl.CategoryCounts(from, to)
		if err != nil {
			log.Error().Err(err).Msg("daily summary failed")
			return
		}
		ev := log.Info().Uint64("day", day)
		for category, n := range counts {
			ev = ev.Int(category, n)
		}
		ev.Msg("daily summary")
		if err := jnl.SaveMeta("last_day", fmt.Sprintf("%d", day)); err != nil {
			log.Error().Err(err).Msg("meta save failed")
		}
	})

	server := &api.Server{
		Coord:    coord,
		WorldMap: worldMap,
		Journal:  jnl,
		Metrics:  met,
		Log:      log,
		Stream:   hub,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	server.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := clock.Run(ctx); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("clock exited")
	}
	if err := jnl.Flush(); err != nil {
		log.Error().Err(err).Msg("final journal flush failed")
	}
	log.Info().Uint64("tick", clock.Tick()).Msg("shutdown complete")
}

// placeBuildings drops the demo settlement onto open ground near the map
// center.
func placeBuildings(m *world.Map, seed int64, log *logger.Logger) {
	spots := world.FindOpen(m, 4, seed+7)

	kinds := []struct {
		name     string
		kind     world.BuildingKind
		capacity int
		stock    world.ItemKind
		qty      int
	}{
		{"old granary", world.BuildingGranary, 200, world.ItemGrain, 80},
		{"river warehouse", world.BuildingWarehouse, 400, world.ItemTimber, 40},
		{"town well", world.BuildingWell, 0, 0, 0},
		{"fisher hut", world.BuildingHut, 50, world.ItemFish, 12},
	}

	for i, k := range kinds {
		if i >= len(spots) {
			break
		}
		var store *world.Storage
		if k.capacity > 0 {
			store = world.NewStorage(k.capacity)
			store.Add(k.stock, k.qty)
		}
		b := m.AddBuilding(world.NewBuilding(k.name, k.kind, spots[i], store))
		log.Info().
			Str("building", b.Name).
			Int("q", b.Pos.Q).
			Int("r", b.Pos.R).
			Msg("building placed")
	}
}

var villagerNames = []string{
	"Ansa", "Bren", "Cato", "Dovi", "Ekke", "Fenn",
	"Galla", "Haki", "Ilse", "Joro", "Kest", "Lumi",
	"Mirre", "Noll", "Ossa", "Prit", "Quen", "Rask",
}

// spawnAgents registers the demo population with a shared trait
// composition and the settlement's common knowledge.
func spawnAgents(coord *engine.Coordinator, m *world.Map, town *mind.Scope, rng *entropy.Source, tuning config.Tuning) {
	spots := world.FindOpen(m, tuning.AgentCount, int64(rng.Intn(1<<30))+1)
	for i := 0; i < tuning.AgentCount && i < len(spots); i++ {
		id := uint64(i + 1)
		name := villagerNames[i%len(villagerNames)]
		if i >= len(villagerNames) {
			name = fmt.Sprintf("%s-%d", name, i/len(villagerNames)+1)
		}
		a := mind.NewAgent(mind.AgentConfig{
			ID:     id,
			Name:   name,
			Pos:    spots[i],
			Acuity: 0.5 + rng.Float()*0.3,
			Traits: mind.MustTraitSet(
				&mind.EatTrait{Threshold: 0.3},
				&mind.AlarmTrait{MinIntensity: 0.8},
				&mind.DepositTrait{Surplus: 8},
				&mind.WanderTrait{Chance: 0.15},
			),
			Memory: mind.MemoryConfig{
				StorageTTL:  tuning.StorageMemoryTTL,
				SightingTTL: tuning.SightingMemoryTTL,
			},
			Scopes: []*mind.Scope{town},
			Map:    m,
			Rand:   rng.Fork(id),
		})
		coord.Register(a)
	}
}
