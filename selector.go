package main

import (
	"math"
)

// directionEpsilon keeps the 1/distance score finite
const directionEpsilon = 1e-5

// cosineThreshold is the minimum cosine similarity for a target to count toward a compass direction
const cosineThreshold = 0.7

// TargetSelector picks the next target to pursue. Implementations must not modify remaining.
type TargetSelector interface {
	Name() string
	Select(current Cell, remaining []Cell) (Cell, bool)
}

// NearestSelector is the greedy straight-line choice
type NearestSelector struct{}

func (NearestSelector) Name() string { return "nearest" }

func (NearestSelector) Select(current Cell, remaining []Cell) (Cell, bool) {
	return nearestOf(current, remaining)
}

// nearestOf returns the closest cell; the first one wins a tie
func nearestOf(from Cell, cells []Cell) (Cell, bool) {
	if len(cells) == 0 {
		return Cell{}, false
	}
	best := cells[0]
	bestDist := from.Distance(best)
	for _, c := range cells[1:] {
		if d := from.Distance(c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, true
}

// LookaheadSelector scores each candidate by its searched first leg plus
// Depth-1 simulated greedy hops measured in straight lines.
type LookaheadSelector struct {
	World        *GridWorld
	Connectivity Connectivity
	Depth        int
}

func (s *LookaheadSelector) Name() string { return "lookahead" }

func (s *LookaheadSelector) Select(current Cell, remaining []Cell) (Cell, bool) {
	depth := s.Depth
	if depth < 1 {
		depth = 1
	}

	var (
		best     Cell
		bestCost = math.Inf(1)
		found    bool
	)
	for _, first := range remaining {
		route, err := FindPath(s.World, current, first, s.Connectivity)
		if err != nil {
			continue
		}
		cost := float64(RouteLength(route)) + simulateGreedy(first, remaining, depth-1)
		if cost < bestCost {
			best, bestCost, found = first, cost, true
		}
	}
	return best, found
}

// simulateGreedy walks hops nearest-first picks from start over remaining (start excluded)
// and returns the summed straight-line distance.
func simulateGreedy(start Cell, remaining []Cell, hops int) float64 {
	if hops <= 0 {
		return 0
	}
	visited := map[Cell]bool{start: true}
	pos := start
	total := 0.0
	for i := 0; i < hops; i++ {
		var (
			next     Cell
			nextDist = math.Inf(1)
			ok       bool
		)
		for _, c := range remaining {
			if visited[c] {
				continue
			}
			if d := pos.Distance(c); d < nextDist {
				next, nextDist, ok = c, d, true
			}
		}
		if !ok {
			break
		}
		total += nextDist
		visited[next] = true
		pos = next
	}
	return total
}

// DirectionalSelector favours the compass direction holding the most nearby target mass
type DirectionalSelector struct {
	Connectivity Connectivity
}

func (s *DirectionalSelector) Name() string { return "directional" }

func (s *DirectionalSelector) Select(current Cell, remaining []Cell) (Cell, bool) {
	if len(remaining) == 0 {
		return Cell{}, false
	}

	dir := compassSteps[s.bestDirection(current, remaining)]

	candidates := make([]Cell, 0, len(remaining))
	for _, t := range remaining {
		if dot(dir, displacement(current, t)) > 0 {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		candidates = remaining
	}
	return nearestOf(current, candidates)
}

// DirectionScores returns the aggregate score of each compass direction, in compass order
func (s *DirectionalSelector) DirectionScores(current Cell, remaining []Cell) []float64 {
	scores := make([]float64, len(compassSteps))
	for i, dir := range compassSteps {
		for _, t := range remaining {
			v := displacement(current, t)
			dist := current.Distance(t)
			if dist == 0 {
				continue
			}
			if s.counts(dir, v, dist) {
				scores[i] += 1 / (dist + directionEpsilon)
			}
		}
	}
	return scores
}

func (s *DirectionalSelector) counts(dir, v Cell, dist float64) bool {
	if s.Connectivity == EightConnected {
		cos := float64(dot(dir, v)) / (math.Hypot(float64(dir.X), float64(dir.Y)) * dist)
		return cos >= cosineThreshold
	}
	return dot(dir, v) > 0
}

// bestDirection is the argmax of the direction scores; the first direction wins a tie
func (s *DirectionalSelector) bestDirection(current Cell, remaining []Cell) int {
	scores := s.DirectionScores(current, remaining)
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

func displacement(from, to Cell) Cell {
	return Cell{to.X - from.X, to.Y - from.Y}
}

func dot(a, b Cell) int {
	return a.X*b.X + a.Y*b.Y
}
