// Package api serves the simulation over HTTP. GET endpoints are
// public read-only observation; POST endpoints require a bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/microcosm/internal/engine"
	"github.com/talgya/microcosm/internal/journal"
	"github.com/talgya/microcosm/internal/mind"
	"github.com/talgya/microcosm/internal/platform/logger"
	"github.com/talgya/microcosm/internal/platform/metrics"
	"github.com/talgya/microcosm/internal/world"
)

// Server serves simulation state over HTTP.
type Server struct {
	Coord    *engine.Coordinator
	WorldMap *world.Map
	Journal  *journal.Journal
	Metrics  *metrics.Metrics
	Log      *logger.Logger
	Stream   *Hub

	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	directiveThrottle := newIPThrottle(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/agent/", s.handleAgentDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/map", s.handleMap)

	// Live status stream over websocket.
	if s.Stream != nil {
		mux.HandleFunc("/api/v1/stream", s.Stream.HandleUpgrade)
	}

	// Prometheus metrics.
	mux.Handle("/metrics", s.Metrics.Handler())

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/directive", s.adminOnly(directiveThrottle.limit(s.handleDirective)))

	addr := fmt.Sprintf(":%d", s.Port)
	s.Log.Info().Str("addr", addr).Bool("admin_auth", s.AdminKey != "").Msg("http api starting")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			s.Log.Error().Err(err).Msg("http server error")
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no MICROCOSM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.Coord.Status()
	writeJSON(w, map[string]any{
		"name":             "microcosm",
		"tick":             st.Tick,
		"agents":           st.AgentCount,
		"actions_executed": st.ActionsExecuted,
	})
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Coord.Status().Agents)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing agent id", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		http.Error(w, "invalid agent id", http.StatusBadRequest)
		return
	}

	for _, a := range s.Coord.Status().Agents {
		if a.ID == id {
			writeJSON(w, a)
			return
		}
	}
	http.Error(w, "agent not found", http.StatusNotFound)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	events, err := s.Journal.RecentEvents(limit)
	if err != nil {
		s.Log.Error().Err(err).Msg("events query failed")
		http.Error(w, "events unavailable", http.StatusInternalServerError)
		return
	}
	if events == nil {
		events = []journal.Event{}
	}
	writeJSON(w, events)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type tileEntry struct {
		Q         int     `json:"q"`
		R         int     `json:"r"`
		Terrain   uint8   `json:"terrain"`
		Elevation float64 `json:"elevation"`
	}
	type buildingEntry struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
		Kind uint8  `json:"kind"`
		Q    int    `json:"q"`
		R    int    `json:"r"`
	}

	tiles := make([]tileEntry, 0, len(s.WorldMap.Tiles))
	for _, t := range s.WorldMap.Tiles {
		tiles = append(tiles, tileEntry{
			Q:         t.Coord.Q,
			R:         t.Coord.R,
			Terrain:   uint8(t.Terrain),
			Elevation: t.Elevation,
		})
	}

	buildings := make([]buildingEntry, 0)
	for _, b := range s.WorldMap.Buildings() {
		buildings = append(buildings, buildingEntry{
			ID:   b.ID,
			Name: b.Name,
			Kind: uint8(b.Kind),
			Q:    b.Pos.Q,
			R:    b.Pos.R,
		})
	}

	writeJSON(w, map[string]any{
		"radius":    s.WorldMap.Radius,
		"tiles":     tiles,
		"buildings": buildings,
	})
}

// directiveRequest is the POST /api/v1/directive body. kind selects the
// task: "travel" walks to (q,r); "haul" moves qty of item between the
// named containers.
type directiveRequest struct {
	AgentID uint64 `json:"agent_id"`
	Kind    string `json:"kind"`

	Q         int `json:"q"`
	R         int `json:"r"`
	Tolerance int `json:"tolerance"`

	SourceID uint64 `json:"source_id"`
	DestID   uint64 `json:"dest_id"`
	Item     string `json:"item"`
	Qty      int    `json:"qty"`
}

func (s *Server) handleDirective(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req directiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	task, err := s.buildTask(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d := mind.NewDirective(task, "api")
	if err := s.Coord.SubmitDirective(req.AgentID, d); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.Log.Info().
		Uint64("agent", req.AgentID).
		Str("kind", req.Kind).
		Str("directive", d.ID).
		Msg("directive accepted")
	writeJSON(w, map[string]any{"directive_id": d.ID, "status": "queued"})
}

func (s *Server) buildTask(req directiveRequest) (mind.Task, error) {
	switch req.Kind {
	case "travel":
		target := world.Coord{Q: req.Q, R: req.R}
		if !s.WorldMap.InBounds(target) {
			return nil, fmt.Errorf("target (%d,%d) out of bounds", req.Q, req.R)
		}
		return mind.NewTravelTask(target, req.Tolerance, mind.PriorityNormal), nil

	case "haul":
		item, ok := parseItem(req.Item)
		if !ok {
			return nil, fmt.Errorf("unknown item %q", req.Item)
		}
		if req.Qty <= 0 {
			return nil, fmt.Errorf("qty must be positive")
		}
		var source, dest *world.Building
		if req.SourceID != 0 {
			source = s.WorldMap.Building(req.SourceID)
			if !source.Valid() {
				return nil, fmt.Errorf("source building %d not found", req.SourceID)
			}
		}
		if req.DestID != 0 {
			dest = s.WorldMap.Building(req.DestID)
			if !dest.Valid() {
				return nil, fmt.Errorf("dest building %d not found", req.DestID)
			}
		}
		if source == nil && dest == nil {
			return nil, fmt.Errorf("haul needs a source or a dest")
		}
		return mind.NewHaulTask(source, dest, item, req.Qty, mind.PriorityNormal), nil

	default:
		return nil, fmt.Errorf("unknown directive kind %q", req.Kind)
	}
}

func parseItem(name string) (world.ItemKind, bool) {
	for k := world.ItemKind(0); k < world.NumItemKinds; k++ {
		if world.ItemName(k) == name {
			return k, true
		}
	}
	return 0, false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding error", http.StatusInternalServerError)
	}
}
