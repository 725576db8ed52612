package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RouteResponse is returned by POST /route
type RouteResponse struct {
	RunID    string    `json:"runId"`
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Scenario Scenario  `json:"scenario"`
	Result   RunResult `json:"result"`
	Metrics  Metrics   `json:"metrics"`
}

// PathRequest asks for a single point-to-point search
type PathRequest struct {
	GridSize     int     `json:"gridSize"`
	Start        Cell    `json:"start"`
	Goal         Cell    `json:"goal"`
	Obstacles    []Cell  `json:"obstacles"`
	Connectivity string  `json:"connectivity,omitempty"`
	Tolerance    float64 `json:"tolerance,omitempty"` // Waypoint compression tolerance
}

// PathResponse is returned by POST /path
type PathResponse struct {
	Path      []Cell          `json:"path"`
	Waypoints []Cell          `json:"waypoints,omitempty"`
	Algorithm SearchAlgorithm `json:"algorithm,omitempty"`
	Moves     int             `json:"moves"`
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
}

// CompareResponse is returned by POST /compare
type CompareResponse struct {
	RunID   string      `json:"runId"`
	Runs    []RunRecord `json:"runs"`
	Summary []Summary   `json:"summary"`
}

// Server holds the HTTP handlers and their shared metrics store
type Server struct {
	store MetricsStore

	mu     sync.Mutex
	served int
}

func NewServer(store MetricsStore) *Server {
	return &Server{store: store}
}

// Handler registers every endpoint behind the CORS middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/route", corsMiddleware(s.routeHandler))
	mux.HandleFunc("/scenario", corsMiddleware(s.scenarioHandler))
	mux.HandleFunc("/compare", corsMiddleware(s.compareHandler))
	mux.HandleFunc("/path", corsMiddleware(s.pathHandler))
	mux.HandleFunc("/runs", corsMiddleware(s.runsHandler))
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️  Failed to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

// decodePost checks the method and decodes the JSON body into v
func decodePost(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// POST /route - Collect targets on a grid with one strategy
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")
	defer log.Println("========================================")

	var req RouteRequest
	if !decodePost(w, r, &req) {
		return
	}

	cfg, scenario, err := req.EngineConfig()
	if err != nil {
		log.Printf("❌ Invalid request: %v\n", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("   Grid: %dx%d, start %s\n", scenario.GridSize, scenario.GridSize, scenario.Start)
	log.Printf("   Targets: %d, obstacles: %d\n", len(scenario.Targets), len(scenario.Obstacles))
	log.Printf("   Strategy: %s (%s-connected)\n", cfg.Strategy, cfg.Connectivity)

	started := time.Now()
	result, err := Route(cfg)
	if err != nil {
		log.Printf("❌ Invalid scenario: %v\n", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics := Evaluate(0, scenario, cfg.Strategy, result, time.Since(started))

	runID := uuid.NewString()
	s.record(r, runID, []Metrics{metrics})

	if r.URL.Query().Get("format") == "geojson" {
		data, err := RunFeatureCollection(RunRecord{
			Strategy:     cfg.Strategy,
			Connectivity: cfg.Connectivity,
			Scenario:     scenario,
			Result:       result,
			Metrics:      metrics,
		}).MarshalJSON()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(data)
		return
	}

	resp := RouteResponse{
		RunID:    runID,
		Success:  result.Terminal == TerminalDone,
		Message:  result.Reason,
		Scenario: scenario,
		Result:   result,
		Metrics:  metrics,
	}
	if resp.Success {
		log.Printf("✅ Collected %d/%d targets, path %d cells\n",
			len(result.Collected), len(scenario.Targets), len(result.Path))
	} else {
		log.Printf("⚠️  Run stuck: %s\n", result.Reason)
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /scenario - Generate a scenario from environmental readings
func (s *Server) scenarioHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("🌊 Scenario request received")

	var req ScenarioRequest
	if !decodePost(w, r, &req) {
		return
	}
	scenario := req.Generate()
	log.Printf("   Generated %d targets, %d obstacles (seed %d)\n",
		len(scenario.Targets), len(scenario.Obstacles), req.Seed)
	writeJSON(w, http.StatusOK, scenario)
}

// POST /compare - Run several strategies on the same scenario
func (s *Server) compareHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📊 Compare request received")
	defer log.Println("========================================")

	var req CompareRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.Scenario.GridSize == 0 {
		req.Scenario.GridSize = DefaultGridSize
	}
	if len(req.Strategies) == 0 {
		req.Strategies = []string{"nearest", "lookahead", "directional", "fusion"}
	}

	runID := uuid.NewString()
	resp := CompareResponse{RunID: runID}
	var rows []Metrics
	for _, raw := range req.Strategies {
		strategy, err := ParseStrategy(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		conn, err := resolveConnectivity(req.Connectivity, strategy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		started := time.Now()
		result, err := Route(req.Scenario.EngineConfig(strategy, conn))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		m := Evaluate(0, req.Scenario, strategy, result, time.Since(started))
		log.Printf("   %-12s collected %d/%d, path %d\n",
			strategy, len(result.Collected), len(req.Scenario.Targets), len(result.Path))

		rows = append(rows, m)
		resp.Runs = append(resp.Runs, RunRecord{
			Strategy:     strategy,
			Connectivity: conn,
			Scenario:     req.Scenario,
			Result:       result,
			Metrics:      m,
		})
	}
	resp.Summary = Summarize(rows)
	s.record(r, runID, rows)
	writeJSON(w, http.StatusOK, resp)
}

// POST /path - Single start/goal search with Dijkstra fallback
func (s *Server) pathHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("🔍 Path request received")

	var req PathRequest
	if !decodePost(w, r, &req) {
		return
	}
	if req.GridSize == 0 {
		req.GridSize = DefaultGridSize
	}
	conn := FourConnected
	if req.Connectivity != "" {
		var err error
		if conn, err = ParseConnectivity(req.Connectivity); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	world := NewGridWorld(req.GridSize, req.Obstacles)
	path, algorithm, err := FindPathWithFallback(world, req.Start, req.Goal, conn)
	switch {
	case errors.Is(err, ErrOutOfBounds):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("❌ No path from %s to %s\n", req.Start, req.Goal)
		writeJSON(w, http.StatusOK, PathResponse{Success: false, Message: err.Error()})
		return
	}

	log.Printf("✅ Path found with %d cells (%s)\n", len(path), algorithm)
	writeJSON(w, http.StatusOK, PathResponse{
		Path:      path,
		Waypoints: CompressPath(path, req.Tolerance),
		Algorithm: algorithm,
		Moves:     RouteLength(path),
		Success:   true,
	})
}

// GET /runs - List stored run ids, or the metrics of ?id=
func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no metrics store configured")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		ids, err := s.store.ListRuns(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"runs": ids})
		return
	}

	rows, ok, err := s.store.GetMetrics(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runId":   id,
		"metrics": rows,
		"summary": Summarize(rows),
	})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	served := s.served
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"hasStore": s.store != nil,
		"served":   served,
	})
}

// record counts the request and stores its metrics; store failures are logged, not returned
func (s *Server) record(r *http.Request, runID string, rows []Metrics) {
	s.mu.Lock()
	s.served++
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.SaveMetrics(r.Context(), runID, rows); err != nil {
		log.Printf("⚠️  Failed to store metrics for %s: %v\n", runID, err)
	}
}
