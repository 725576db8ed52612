package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// CompressPath reduces a cell trajectory to its turning points using Douglas-Peucker.
// A zero tolerance drops only cells lying on a straight run; endpoints are always kept.
func CompressPath(path []Cell, tolerance float64) []Cell {
	if len(path) <= 2 {
		out := make([]Cell, len(path))
		copy(out, path)
		return out
	}

	simplified := simplify.DouglasPeucker(tolerance).LineString(cellsToLineString(path))

	out := make([]Cell, 0, len(simplified))
	for _, p := range simplified {
		out = append(out, Cell{X: int(p[0]), Y: int(p[1])})
	}
	return out
}

func cellsToLineString(cells []Cell) orb.LineString {
	ls := make(orb.LineString, 0, len(cells))
	for _, c := range cells {
		ls = append(ls, cellPoint(c))
	}
	return ls
}

func cellsToMultiPoint(cells []Cell) orb.MultiPoint {
	mp := make(orb.MultiPoint, 0, len(cells))
	for _, c := range cells {
		mp = append(mp, cellPoint(c))
	}
	return mp
}

func cellPoint(c Cell) orb.Point {
	return orb.Point{float64(c.X), float64(c.Y)}
}
