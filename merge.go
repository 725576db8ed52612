package main

import (
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MergeObstacleRegions removes polygons that are fully contained within other polygons.
// This reduces the number of polygons rasterised onto the grid.
func MergeObstacleRegions(polygons []orb.Polygon) []orb.Polygon {
	if len(polygons) <= 1 {
		return polygons
	}

	contained := make([]bool, len(polygons))

	// Check each polygon against all others
	for i := range polygons {
		if contained[i] {
			continue
		}
		for j := range polygons {
			if i == j || contained[j] {
				continue
			}
			if isPolygonContainedIn(polygons[i], polygons[j]) {
				contained[i] = true
				break
			}
		}
	}

	result := make([]orb.Polygon, 0, len(polygons))
	for i, p := range polygons {
		if !contained[i] {
			result = append(result, p)
		}
	}

	if removed := len(polygons) - len(result); removed > 0 {
		log.Printf("   Obstacle regions after removing contained: %d (removed %d)\n", len(result), removed)
	}
	return result
}

// isPolygonContainedIn reports whether every vertex of a's outer ring lies inside b
func isPolygonContainedIn(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	// Quick bounding box check first
	if !isBoundContained(a.Bound(), b.Bound()) {
		return false
	}
	for _, p := range a[0] {
		if !planar.PolygonContains(b, p) {
			return false
		}
	}
	return true
}

// isBoundContained checks if bound a is inside bound b
func isBoundContained(a, b orb.Bound) bool {
	return a.Min[0] >= b.Min[0] && a.Max[0] <= b.Max[0] &&
		a.Min[1] >= b.Min[1] && a.Max[1] <= b.Max[1]
}

// mergeCells appends the cells of extra not already in base
func mergeCells(base, extra []Cell) []Cell {
	seen := make(map[Cell]bool, len(base)+len(extra))
	out := make([]Cell, 0, len(base)+len(extra))
	for _, group := range [][]Cell{base, extra} {
		for _, c := range group {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// withoutCells filters cells that appear in drop
func withoutCells(cells, drop []Cell) []Cell {
	blocked := make(map[Cell]bool, len(drop))
	for _, c := range drop {
		blocked[c] = true
	}
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if !blocked[c] {
			out = append(out, c)
		}
	}
	return out
}
