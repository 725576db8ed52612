package main

import (
	"github.com/dhconnelly/rtreego"
)

// pointTolerance gives each target a near-zero box so rect distances match cell distances
const pointTolerance = 1e-6

// targetEntry wraps a target cell for R-tree storage
type targetEntry struct {
	Cell Cell
	BBox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *targetEntry) Bounds() rtreego.Rect {
	return e.BBox
}

// TargetIndex answers range queries over the remaining targets
type TargetIndex struct {
	tree    *rtreego.Rtree
	entries map[Cell]*targetEntry
}

// NewTargetIndex creates a spatial index over the given cells
func NewTargetIndex(cells []Cell) *TargetIndex {
	idx := &TargetIndex{
		tree:    rtreego.NewTree(2, 25, 50), // 2D, min 25, max 50 entries per node
		entries: make(map[Cell]*targetEntry, len(cells)),
	}
	for _, c := range cells {
		idx.Insert(c)
	}
	return idx
}

// Insert adds a cell; inserting a present cell is a no-op
func (idx *TargetIndex) Insert(c Cell) {
	if _, ok := idx.entries[c]; ok {
		return
	}
	entry := &targetEntry{
		Cell: c,
		BBox: rtreego.Point{float64(c.X), float64(c.Y)}.ToRect(pointTolerance),
	}
	idx.entries[c] = entry
	idx.tree.Insert(entry)
}

// Remove deletes a cell from the index
func (idx *TargetIndex) Remove(c Cell) bool {
	entry, ok := idx.entries[c]
	if !ok {
		return false
	}
	delete(idx.entries, c)
	return idx.tree.Delete(entry)
}

func (idx *TargetIndex) Len() int { return len(idx.entries) }

// QueryRadius returns the cells within Euclidean radius of center, in no particular order
func (idx *TargetIndex) QueryRadius(center Cell, radius float64) []Cell {
	if radius < 0 || len(idx.entries) == 0 {
		return nil
	}

	minX, minY, maxX, maxY := GetRadiusBoundingBox(center, radius)
	bbox, err := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{maxX - minX, maxY - minY},
	)
	if err != nil {
		return nil
	}

	results := idx.tree.SearchIntersect(bbox)
	cells := make([]Cell, 0, len(results))
	for _, item := range results {
		entry := item.(*targetEntry)
		if center.Distance(entry.Cell) <= radius {
			cells = append(cells, entry.Cell)
		}
	}
	return cells
}

// GetRadiusBoundingBox calculates the square around a query circle, padded so the box is never degenerate
func GetRadiusBoundingBox(center Cell, radius float64) (minX, minY, maxX, maxY float64) {
	pad := radius + pointTolerance*2
	minX = float64(center.X) - pad
	maxX = float64(center.X) + pad
	minY = float64(center.Y) - pad
	maxY = float64(center.Y) + pad
	return
}
