package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
)

// RouteRequest is the JSON form of one routing run, used by POST /route and `route -config`
type RouteRequest struct {
	GridSize      int     `json:"gridSize"`
	Start         Cell    `json:"start"`
	Targets       []Cell  `json:"targets"`
	Obstacles     []Cell  `json:"obstacles"`
	Strategy      string  `json:"strategy"`
	Connectivity  string  `json:"connectivity,omitempty"`
	MaxIterations int     `json:"maxIterations,omitempty"`
	SenseRadius   float64 `json:"senseRadius,omitempty"`

	// Generate the scenario from environmental readings when Targets is empty
	Env  *EnvParams `json:"env,omitempty"`
	Seed int64      `json:"seed,omitempty"`
}

// ScenarioRequest asks for a generated scenario
type ScenarioRequest struct {
	GridSize int       `json:"gridSize"`
	Start    Cell      `json:"start"`
	Seed     int64     `json:"seed"`
	Env      EnvParams `json:"env"`
}

// CompareRequest runs several strategies on one scenario
type CompareRequest struct {
	Scenario     Scenario `json:"scenario"`
	Strategies   []string `json:"strategies"`
	Connectivity string   `json:"connectivity,omitempty"`
}

// Scenario resolves the request's scenario, generating it when only Env is given
func (r RouteRequest) Scenario() Scenario {
	gridSize := r.GridSize
	if gridSize == 0 {
		gridSize = DefaultGridSize
	}
	if len(r.Targets) == 0 && r.Env != nil {
		return GenerateScenario(gridSize, r.Start, *r.Env, rand.New(rand.NewSource(r.Seed)))
	}
	return Scenario{
		GridSize:  gridSize,
		Start:     r.Start,
		Targets:   r.Targets,
		Obstacles: r.Obstacles,
	}
}

// EngineConfig fills defaults and parses the strategy and connectivity names
func (r RouteRequest) EngineConfig() (EngineConfig, Scenario, error) {
	strategy, err := ParseStrategy(r.Strategy)
	if err != nil {
		return EngineConfig{}, Scenario{}, err
	}
	conn, err := resolveConnectivity(r.Connectivity, strategy)
	if err != nil {
		return EngineConfig{}, Scenario{}, err
	}

	scenario := r.Scenario()
	cfg := scenario.EngineConfig(strategy, conn)
	cfg.MaxIterations = r.MaxIterations
	cfg.SenseRadius = r.SenseRadius
	return cfg, scenario, nil
}

// Generate builds the requested scenario
func (r ScenarioRequest) Generate() Scenario {
	gridSize := r.GridSize
	if gridSize == 0 {
		gridSize = DefaultGridSize
	}
	return GenerateScenario(gridSize, r.Start, r.Env, rand.New(rand.NewSource(r.Seed)))
}

// resolveConnectivity picks the strategy's stencil when the caller names none
func resolveConnectivity(raw string, strategy Strategy) (Connectivity, error) {
	if raw == "" {
		return strategy.DefaultConnectivity(), nil
	}
	return ParseConnectivity(raw)
}

// LoadRouteRequest reads a RouteRequest from a JSON file
func LoadRouteRequest(path string) (RouteRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RouteRequest{}, fmt.Errorf("failed to read config: %w", err)
	}
	var req RouteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return RouteRequest{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return req, nil
}

// envOr returns the environment variable or def when unset
func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
