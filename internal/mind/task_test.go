package mind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/microcosm/internal/world"
)

func testMap(radius int) *world.Map {
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

func testAgent(m *world.Map, pos world.Coord) *Agent {
	return NewAgent(AgentConfig{
		ID:   1,
		Name: "ansa",
		Pos:  pos,
		Map:  m,
	})
}

func taskCtx(a *Agent, m *world.Map, tick uint64) *TaskContext {
	return &TaskContext{Agent: a, Pos: a.Pos, Map: m, Tick: tick}
}

func TestTravelStepsTowardTarget(t *testing.T) {
	m := testMap(6)
	a := testAgent(m, world.Coord{Q: -3, R: 0})
	travel := NewTravelTask(world.Coord{Q: 3, R: 0}, 0, PriorityNormal)
	travel.Bind(a)

	act := travel.Advance(taskCtx(a, m, 1))
	require.NotNil(t, act)
	move, ok := act.(*MoveAction)
	require.True(t, ok)
	assert.Less(t,
		world.Distance(move.Dest, world.Coord{Q: 3, R: 0}),
		world.Distance(a.Pos, world.Coord{Q: 3, R: 0}),
	)
	assert.Equal(t, TaskRunning, travel.State())
}

func TestTravelCompletesSilentlyAtDestination(t *testing.T) {
	m := testMap(6)
	a := testAgent(m, world.Coord{Q: 2, R: 1})
	travel := NewTravelTask(world.Coord{Q: 2, R: 1}, 0, PriorityNormal)
	travel.Bind(a)

	act := travel.Advance(taskCtx(a, m, 1))
	assert.Nil(t, act, "arrival produces no action")
	assert.Equal(t, TaskCompleted, travel.State(), "state flips in the same call")
}

func TestTravelFailsWhenBoxedIn(t *testing.T) {
	m := testMap(6)
	start := world.Coord{Q: 0, R: 0}
	for _, n := range start.Neighbors() {
		m.Set(&world.Tile{Coord: n, Terrain: world.TerrainWater})
	}
	a := testAgent(m, start)
	travel := NewTravelTask(world.Coord{Q: 4, R: 0}, 0, PriorityNormal)
	travel.Bind(a)

	act := travel.Advance(taskCtx(a, m, 1))
	assert.Nil(t, act)
	assert.Equal(t, TaskFailed, travel.State())
}

func TestHaulAdvancesThroughArrivalInOneCall(t *testing.T) {
	m := testMap(6)
	store := world.NewStorage(100)
	store.Add(world.ItemGrain, 20)
	granary := m.AddBuilding(world.NewBuilding("granary", world.BuildingGranary, world.Coord{Q: 1, R: 0}, store))

	// Agent already adjacent to the source: the inner travel completes
	// silently and the load phase must produce a transfer this same call.
	a := testAgent(m, world.Coord{Q: 0, R: 0})
	haul := NewHaulTask(granary, nil, world.ItemGrain, 5, PriorityNormal)
	haul.Bind(a)

	act := haul.Advance(taskCtx(a, m, 1))
	require.NotNil(t, act, "arrival must not yield an idle tick")
	transfer, ok := act.(*TransferAction)
	require.True(t, ok, "expected a transfer, got %T", act)
	assert.False(t, transfer.Deposit)
	assert.Equal(t, 5, transfer.Qty)
}

func TestHaulCompletesAfterLoadWithoutDest(t *testing.T) {
	m := testMap(6)
	store := world.NewStorage(100)
	store.Add(world.ItemGrain, 20)
	granary := m.AddBuilding(world.NewBuilding("granary", world.BuildingGranary, world.Coord{Q: 1, R: 0}, store))

	a := testAgent(m, world.Coord{Q: 0, R: 0})
	haul := NewHaulTask(granary, nil, world.ItemGrain, 5, PriorityNormal)
	haul.Bind(a)

	act := haul.Advance(taskCtx(a, m, 1))
	require.NoError(t, act.Execute(&ExecEnv{Tick: 1, Map: m}))
	assert.Equal(t, 5, a.Carried.Count(world.ItemGrain))

	// Loaded and no destination: the next call completes.
	act = haul.Advance(taskCtx(a, m, 2))
	assert.Nil(t, act)
	assert.Equal(t, TaskCompleted, haul.State())
}

func TestHaulFailsOnEmptySource(t *testing.T) {
	m := testMap(6)
	granary := m.AddBuilding(world.NewBuilding("granary", world.BuildingGranary, world.Coord{Q: 1, R: 0}, world.NewStorage(100)))

	a := testAgent(m, world.Coord{Q: 0, R: 0})
	haul := NewHaulTask(granary, nil, world.ItemGrain, 5, PriorityNormal)
	haul.Bind(a)

	act := haul.Advance(taskCtx(a, m, 1))
	assert.Nil(t, act)
	assert.Equal(t, TaskFailed, haul.State())
}

func TestHaulFailsOnDestroyedSource(t *testing.T) {
	m := testMap(6)
	store := world.NewStorage(100)
	store.Add(world.ItemGrain, 20)
	granary := m.AddBuilding(world.NewBuilding("granary", world.BuildingGranary, world.Coord{Q: 3, R: 0}, store))

	a := testAgent(m, world.Coord{Q: -2, R: 0})
	haul := NewHaulTask(granary, nil, world.ItemGrain, 5, PriorityNormal)
	haul.Bind(a)

	require.NotNil(t, haul.Advance(taskCtx(a, m, 1)), "first step toward the source")

	m.RemoveBuilding(granary.ID)
	act := haul.Advance(taskCtx(a, m, 2))
	assert.Nil(t, act)
	assert.Equal(t, TaskFailed, haul.State())
}

func TestTeardownFailsRunningTask(t *testing.T) {
	travel := NewTravelTask(world.Coord{Q: 5, R: 0}, 0, PriorityNormal)
	travel.Teardown()
	assert.Equal(t, TaskFailed, travel.State())

	done := NewTravelTask(world.Coord{}, 0, PriorityNormal)
	done.complete()
	done.Teardown()
	assert.Equal(t, TaskCompleted, done.State(), "teardown must not overwrite a completed state")
}

func TestStartTaskActionReplacesSlot(t *testing.T) {
	m := testMap(6)
	a := testAgent(m, world.Coord{Q: 0, R: 0})

	first := NewTravelTask(world.Coord{Q: 2, R: 0}, 0, PriorityNormal)
	a.replaceSlot(SlotActivity, first)
	require.Equal(t, first, a.Activity())

	second := NewTravelTask(world.Coord{Q: -2, R: 0}, 0, PriorityNormal)
	err := NewStartTaskAction(a, SlotActivity, second, PriorityNormal).Execute(&ExecEnv{Tick: 1, Map: m})
	require.NoError(t, err)

	assert.Equal(t, Task(second), a.Activity())
	assert.Equal(t, TaskFailed, first.State(), "the displaced task is torn down")
}

func TestClearTerminalTasks(t *testing.T) {
	m := testMap(6)
	a := testAgent(m, world.Coord{Q: 0, R: 0})

	finished := NewTravelTask(world.Coord{Q: 0, R: 0}, 0, PriorityNormal)
	a.replaceSlot(SlotActivity, finished)
	finished.Advance(taskCtx(a, m, 1)) // completes immediately
	require.Equal(t, TaskCompleted, finished.State())

	a.ClearTerminalTasks()
	assert.Nil(t, a.Activity())
}
