package main

import "sort"

// TargetSet is the drainable set of targets owned by one routing run.
// Iteration follows first-insertion order so selection is reproducible.
type TargetSet struct {
	order []Cell
	seq   map[Cell]int
	index *TargetIndex
}

// NewTargetSet deduplicates cells, keeping the first occurrence's position
func NewTargetSet(cells []Cell) *TargetSet {
	s := &TargetSet{
		order: make([]Cell, 0, len(cells)),
		seq:   make(map[Cell]int, len(cells)),
	}
	for _, c := range cells {
		if _, ok := s.seq[c]; ok {
			continue
		}
		s.seq[c] = len(s.order)
		s.order = append(s.order, c)
	}
	s.index = NewTargetIndex(s.order)
	return s
}

func (s *TargetSet) Len() int { return len(s.order) }

func (s *TargetSet) Empty() bool { return len(s.order) == 0 }

func (s *TargetSet) Contains(c Cell) bool {
	_, ok := s.seq[c]
	return ok
}

// Cells returns a copy of the remaining targets in iteration order
func (s *TargetSet) Cells() []Cell {
	out := make([]Cell, len(s.order))
	copy(out, s.order)
	return out
}

// Remove drops a target for good; a removed target never re-enters the set
func (s *TargetSet) Remove(c Cell) bool {
	if _, ok := s.seq[c]; !ok {
		return false
	}
	delete(s.seq, c)
	s.index.Remove(c)
	for i, o := range s.order {
		if o == c {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Within returns the targets within radius of center, in iteration order
func (s *TargetSet) Within(center Cell, radius float64) []Cell {
	cells := s.index.QueryRadius(center, radius)
	sort.Slice(cells, func(i, j int) bool {
		return s.seq[cells[i]] < s.seq[cells[j]]
	})
	return cells
}
