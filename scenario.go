package main

import (
	"math"
	"math/rand"
)

// Scenario generation constants
const (
	DefaultGridSize = 50

	baseTargets      = 50
	baseObstacles    = 10
	maxTargets       = 300
	maxObstacles     = 50
	targetDriftMax   = 5 // Wind drift in cells
	obstacleDriftMax = 3 // Wave drift in cells
)

// EnvParams are the environmental readings of one buoy observation. Missing values are zero.
type EnvParams struct {
	WindSpeed             float64 `json:"windSpeed"`             // m/s
	WindDirection         float64 `json:"windDirection"`         // degrees
	GustSpeed             float64 `json:"gustSpeed"`             // m/s
	MaxWaveHeight         float64 `json:"maxWaveHeight"`         // m
	SignificantWaveHeight float64 `json:"significantWaveHeight"` // m
	MeanWaveHeight        float64 `json:"meanWaveHeight"`        // m
	WavePeriod            float64 `json:"wavePeriod"`            // sec
	WaveDirection         float64 `json:"waveDirection"`         // degrees
}

// Scenario is one routing problem
type Scenario struct {
	GridSize  int    `json:"gridSize"`
	Start     Cell   `json:"start"`
	Targets   []Cell `json:"targets"`
	Obstacles []Cell `json:"obstacles"`
}

// TargetCount derives the number of debris items from wind and significant wave height
func (e EnvParams) TargetCount() int {
	n := baseTargets + int(e.WindSpeed*5) + int(e.SignificantWaveHeight*10)
	return clampInt(n, 0, maxTargets)
}

// ObstacleCount derives the number of obstacles from gusts and maximum wave height
func (e EnvParams) ObstacleCount() int {
	n := baseObstacles + int(e.GustSpeed*2) + int(e.MaxWaveHeight*5)
	return clampInt(n, 0, maxObstacles)
}

// GenerateScenario places targets drifted along the wind and obstacles drifted along the waves.
// Obstacles never cover the start cell and targets landing on an obstacle are discarded.
func GenerateScenario(gridSize int, start Cell, env EnvParams, rng *rand.Rand) Scenario {
	rawTargets := make([]Cell, 0, env.TargetCount())
	for i := 0; i < env.TargetCount(); i++ {
		rawTargets = append(rawTargets, driftedCell(gridSize, env.WindDirection, targetDriftMax, rng))
	}

	obstacleSet := make(map[Cell]bool)
	obstacles := make([]Cell, 0, env.ObstacleCount())
	for i := 0; i < env.ObstacleCount(); i++ {
		c := driftedCell(gridSize, env.WaveDirection, obstacleDriftMax, rng)
		if c == start || obstacleSet[c] {
			continue
		}
		obstacleSet[c] = true
		obstacles = append(obstacles, c)
	}

	targets := make([]Cell, 0, len(rawTargets))
	for _, t := range rawTargets {
		if !obstacleSet[t] {
			targets = append(targets, t)
		}
	}

	return Scenario{
		GridSize:  gridSize,
		Start:     start,
		Targets:   targets,
		Obstacles: obstacles,
	}
}

// driftedCell samples a uniform cell and pushes it up to maxDrift cells along directionDeg
func driftedCell(gridSize int, directionDeg float64, maxDrift int, rng *rand.Rand) Cell {
	baseX := rng.Intn(gridSize)
	baseY := rng.Intn(gridSize)
	drift := float64(rng.Intn(maxDrift + 1))

	rad := directionDeg * math.Pi / 180.0
	offsetX := int(math.Cos(rad) * drift)
	offsetY := int(math.Sin(rad) * drift)

	return Cell{
		X: clampInt(baseX+offsetX, 0, gridSize-1),
		Y: clampInt(baseY+offsetY, 0, gridSize-1),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EngineConfig builds the routing input for this scenario
func (s Scenario) EngineConfig(strategy Strategy, conn Connectivity) EngineConfig {
	return EngineConfig{
		GridSize:     s.GridSize,
		Start:        s.Start,
		Targets:      s.Targets,
		Obstacles:    s.Obstacles,
		Strategy:     strategy,
		Connectivity: conn,
	}
}
