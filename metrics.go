package main

import (
	"sort"
	"time"
)

// Metrics is the per-run evaluation record persisted by batch runs
type Metrics struct {
	Index          int           `json:"index"`
	Algorithm      string        `json:"algorithm"`
	CollectionRate float64       `json:"collectionRate"`
	CollisionCount int           `json:"collisionCount"`
	SearchDistance int           `json:"searchDistance"`
	ElapsedTime    float64       `json:"elapsedTime"` // seconds
	TargetsTouched int           `json:"targetsTouched"`
	Terminal       TerminalState `json:"terminal"`
}

// Evaluate scores a run against its scenario.
// CollectionRate counts committed targets; TargetsTouched counts every distinct target cell the path crosses.
func Evaluate(index int, scenario Scenario, strategy Strategy, result RunResult, elapsed time.Duration) Metrics {
	targets := make(map[Cell]bool, len(scenario.Targets))
	for _, t := range scenario.Targets {
		targets[t] = true
	}
	obstacles := make(map[Cell]bool, len(scenario.Obstacles))
	for _, o := range scenario.Obstacles {
		obstacles[o] = true
	}

	m := Metrics{
		Index:          index,
		Algorithm:      strategy.String(),
		SearchDistance: len(result.Path),
		ElapsedTime:    elapsed.Seconds(),
		Terminal:       result.Terminal,
	}
	if len(targets) > 0 {
		m.CollectionRate = float64(len(result.Collected)) / float64(len(targets))
	}

	touched := make(map[Cell]bool)
	for _, p := range result.Path {
		if obstacles[p] {
			m.CollisionCount++
		}
		if targets[p] {
			touched[p] = true
		}
	}
	m.TargetsTouched = len(touched)
	return m
}

// Summary is the per-algorithm average over many runs
type Summary struct {
	Algorithm          string  `json:"algorithm"`
	Runs               int     `json:"runs"`
	MeanCollectionRate float64 `json:"meanCollectionRate"`
	MeanCollisionCount float64 `json:"meanCollisionCount"`
	MeanSearchDistance float64 `json:"meanSearchDistance"`
	MeanElapsedTime    float64 `json:"meanElapsedTime"`
	StuckRuns          int     `json:"stuckRuns"`
}

// Summarize averages metrics per algorithm, sorted by algorithm name
func Summarize(rows []Metrics) []Summary {
	byAlgo := make(map[string]*Summary)
	for _, r := range rows {
		s, ok := byAlgo[r.Algorithm]
		if !ok {
			s = &Summary{Algorithm: r.Algorithm}
			byAlgo[r.Algorithm] = s
		}
		s.Runs++
		s.MeanCollectionRate += r.CollectionRate
		s.MeanCollisionCount += float64(r.CollisionCount)
		s.MeanSearchDistance += float64(r.SearchDistance)
		s.MeanElapsedTime += r.ElapsedTime
		if r.Terminal == TerminalStuck {
			s.StuckRuns++
		}
	}

	out := make([]Summary, 0, len(byAlgo))
	for _, s := range byAlgo {
		n := float64(s.Runs)
		s.MeanCollectionRate /= n
		s.MeanCollisionCount /= n
		s.MeanSearchDistance /= n
		s.MeanElapsedTime /= n
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Algorithm < out[j].Algorithm })
	return out
}
