package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/microcosm/internal/engine"
	"github.com/talgya/microcosm/internal/journal"
	"github.com/talgya/microcosm/internal/mind"
	"github.com/talgya/microcosm/internal/platform/logger"
	"github.com/talgya/microcosm/internal/platform/metrics"
	"github.com/talgya/microcosm/internal/sense"
	"github.com/talgya/microcosm/internal/world"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	m := world.NewMap(5)
	for q := -5; q <= 5; q++ {
		for r := -5; r <= 5; r++ {
			c := world.Coord{Q: q, R: r}
			if !m.InBounds(c) {
				continue
			}
			m.Set(&world.Tile{Coord: c, Terrain: world.TerrainPlains})
		}
	}
	m.AddBuilding(world.NewBuilding("granary", world.BuildingGranary, world.Coord{Q: 2, R: 0}, world.NewStorage(100)))

	log := logger.New(io.Discard, "error", false)
	jnl, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { jnl.Close() })

	coord := engine.NewCoordinator(m, sense.NewIndex(m, 4), log, metrics.New(), jnl, engine.CoordinatorConfig{
		Workers:         1,
		DecisionTimeout: 200 * time.Millisecond,
	})
	coord.Register(mind.NewAgent(mind.AgentConfig{ID: 1, Name: "ansa", Pos: world.Coord{Q: 0, R: 0}, Map: m}))
	require.NoError(t, coord.ProcessTick(1))

	s := &Server{
		Coord:    coord,
		WorldMap: m,
		Journal:  jnl,
		Metrics:  metrics.New(),
		Log:      log,
		AdminKey: "sekrit",
	}
	return s
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tick":1`)
}

func TestHandleAgentDetail(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleAgentDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agent/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ansa"`)

	rec = httptest.NewRecorder()
	s.handleAgentDetail(rec, httptest.NewRequest(http.MethodGet, "/api/v1/agent/404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDirectiveRequiresBearerToken(t *testing.T) {
	s := newTestServer(t)
	handler := s.adminOnly(s.handleDirective)

	body := `{"agent_id":1,"kind":"travel","q":2,"r":0}`

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/directive", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/directive", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "queued")
}

func TestDirectiveValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"unknown kind", `{"agent_id":1,"kind":"dance"}`},
		{"out of bounds", `{"agent_id":1,"kind":"travel","q":99,"r":99}`},
		{"haul without containers", `{"agent_id":1,"kind":"haul","item":"grain","qty":3}`},
		{"haul bad item", `{"agent_id":1,"kind":"haul","source_id":1,"item":"gold","qty":3}`},
		{"haul bad qty", `{"agent_id":1,"kind":"haul","source_id":1,"item":"grain","qty":0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/directive", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			s.handleDirective(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDirectiveUnknownAgent(t *testing.T) {
	s := newTestServer(t)

	body := `{"agent_id":42,"kind":"travel","q":1,"r":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/directive", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleDirective(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleMap(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleMap(rec, httptest.NewRequest(http.MethodGet, "/api/v1/map", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"granary"`)
	assert.Contains(t, rec.Body.String(), `"radius":5`)
}
