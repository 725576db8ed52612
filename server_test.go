package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb/geojson"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	store := NewMemoryStore()
	if err := store.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := NewServer(store)
	return s, s.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouteHandler(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/route", RouteRequest{
		GridSize: 5,
		Start:    Cell{0, 0},
		Targets:  []Cell{{4, 4}},
		Strategy: "nearest",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS header")
	}

	var resp RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || len(resp.Result.Path) != 9 || resp.Metrics.CollectionRate != 1 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.RunID == "" || resp.Metrics.Algorithm != "nearest" {
		t.Fatalf("run id = %q algorithm = %q", resp.RunID, resp.Metrics.Algorithm)
	}
}

func TestRouteHandlerGeoJSON(t *testing.T) {
	_, h := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/route?format=geojson", RouteRequest{
		GridSize: 5,
		Targets:  []Cell{{4, 0}},
	})
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/geo+json" {
		t.Fatalf("status = %d type = %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	fc, err := geojson.UnmarshalFeatureCollection(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(fc.Features) == 0 {
		t.Fatal("empty feature collection")
	}
}

func TestRouteHandlerRejectsBadInput(t *testing.T) {
	_, h := newTestServer(t)

	if rec := doJSON(t, h, http.MethodGet, "/route", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/route", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad body status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/route", RouteRequest{
		GridSize:  5,
		Targets:   []Cell{{2, 2}},
		Obstacles: []Cell{{2, 2}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("target on obstacle status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/route", RouteRequest{GridSize: 5, Strategy: "teleport"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown strategy status = %d", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	_, h := newTestServer(t)
	rec := doJSON(t, h, http.MethodOptions, "/route", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatalf("preflight status = %d headers = %v", rec.Code, rec.Header())
	}
}

func TestScenarioHandler(t *testing.T) {
	_, h := newTestServer(t)
	req := ScenarioRequest{Seed: 9, Env: EnvParams{WindSpeed: 2}}

	var a, b Scenario
	for _, out := range []*Scenario{&a, &b} {
		rec := doJSON(t, h, http.MethodPost, "/scenario", req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatal(err)
		}
	}
	if a.GridSize != DefaultGridSize || len(a.Targets) == 0 {
		t.Fatalf("scenario = %+v", a)
	}
	if len(a.Targets) != len(b.Targets) || a.Targets[0] != b.Targets[0] {
		t.Fatal("seeded scenario requests should match")
	}
}

func TestCompareHandler(t *testing.T) {
	_, h := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/compare", CompareRequest{
		Scenario: Scenario{
			GridSize:  8,
			Targets:   []Cell{{7, 7}, {2, 5}, {6, 1}},
			Obstacles: []Cell{{3, 3}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body)
	}
	var resp CompareResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Runs) != 4 || len(resp.Summary) != 4 {
		t.Fatalf("runs = %d summary = %d", len(resp.Runs), len(resp.Summary))
	}
	for _, r := range resp.Runs {
		if r.Result.Terminal != TerminalDone || len(r.Result.Collected) != 3 {
			t.Fatalf("%s: %+v", r.Strategy, r.Result)
		}
	}
	if resp.Runs[2].Connectivity != EightConnected {
		t.Fatalf("directional ran %s-connected", resp.Runs[2].Connectivity)
	}
}

func TestPathHandler(t *testing.T) {
	_, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/path", PathRequest{GridSize: 5, Goal: Cell{4, 0}})
	var resp PathResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Moves != 4 || resp.Algorithm != AlgorithmAStar {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Waypoints) != 2 {
		t.Fatalf("waypoints = %v", resp.Waypoints)
	}

	rec = doJSON(t, h, http.MethodPost, "/path", PathRequest{GridSize: 3, Goal: Cell{2, 2}, Obstacles: []Cell{{1, 2}, {2, 1}}})
	resp = PathResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || resp.Success {
		t.Fatalf("enclosed goal: status = %d response = %+v", rec.Code, resp)
	}

	rec = doJSON(t, h, http.MethodPost, "/path", PathRequest{GridSize: 3, Goal: Cell{5, 5}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out of bounds status = %d", rec.Code)
	}
}

func TestRunsAndHealthHandlers(t *testing.T) {
	s, h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/route", RouteRequest{GridSize: 4, Targets: []Cell{{3, 3}}})
	var routed RouteResponse
	if err := json.NewDecoder(rec.Body).Decode(&routed); err != nil {
		t.Fatal(err)
	}

	rec = doJSON(t, h, http.MethodGet, "/runs", nil)
	var list struct {
		Runs []string `json:"runs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list.Runs) != 1 || list.Runs[0] != routed.RunID {
		t.Fatalf("runs = %v, want [%s]", list.Runs, routed.RunID)
	}

	if rec := doJSON(t, h, http.MethodGet, "/runs?id="+routed.RunID, nil); rec.Code != http.StatusOK {
		t.Fatalf("run lookup status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/runs?id=nope", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown run status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/health", nil)
	var health map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health["status"] != "ready" || health["served"] != float64(1) {
		t.Fatalf("health = %v", health)
	}
	if s.served != 1 {
		t.Fatalf("served = %d", s.served)
	}

	bare := NewServer(nil).Handler()
	if rec := doJSON(t, bare, http.MethodGet, "/runs", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("no store status = %d", rec.Code)
	}
}
