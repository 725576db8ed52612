package main

import (
	"fmt"
	"math"
	"strings"
)

// Cell is one discrete grid position
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Distance calculates Euclidean distance between two cells
func (c Cell) Distance(other Cell) float64 {
	dx := float64(c.X - other.X)
	dy := float64(c.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Connectivity selects the move stencil used by path search
type Connectivity int

const (
	FourConnected Connectivity = iota
	EightConnected
)

func (c Connectivity) String() string {
	if c == EightConnected {
		return "eight"
	}
	return "four"
}

// ParseConnectivity accepts "four"/"4" and "eight"/"8"
func ParseConnectivity(s string) (Connectivity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "four", "4":
		return FourConnected, nil
	case "eight", "8":
		return EightConnected, nil
	default:
		return FourConnected, fmt.Errorf("unknown connectivity %q", s)
	}
}

// Stencil order is fixed; it drives tie-breaking in search and direction scoring.
var (
	orthogonalSteps = []Cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	compassSteps    = []Cell{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

func (c Connectivity) steps() []Cell {
	if c == EightConnected {
		return compassSteps
	}
	return orthogonalSteps
}

// GridWorld holds the square grid bounds and the static obstacle set for one run
type GridWorld struct {
	size      int
	obstacles map[Cell]struct{}
}

// NewGridWorld builds a world, dropping obstacle cells that fall outside the grid
func NewGridWorld(size int, obstacles []Cell) *GridWorld {
	w := &GridWorld{
		size:      size,
		obstacles: make(map[Cell]struct{}, len(obstacles)),
	}
	for _, o := range obstacles {
		if w.InBounds(o) {
			w.obstacles[o] = struct{}{}
		}
	}
	return w
}

func (w *GridWorld) Size() int { return w.size }

// InBounds is true iff 0 <= x,y < size
func (w *GridWorld) InBounds(c Cell) bool {
	return c.X >= 0 && c.X < w.size && c.Y >= 0 && c.Y < w.size
}

func (w *GridWorld) IsObstacle(c Cell) bool {
	_, ok := w.obstacles[c]
	return ok
}

// Obstacles returns the obstacle cells in row-major order
func (w *GridWorld) Obstacles() []Cell {
	cells := make([]Cell, 0, len(w.obstacles))
	for y := 0; y < w.size && len(cells) < len(w.obstacles); y++ {
		for x := 0; x < w.size; x++ {
			if w.IsObstacle(Cell{x, y}) {
				cells = append(cells, Cell{x, y})
			}
		}
	}
	return cells
}

// Neighbors returns in-bounds neighbors in stencil order. Obstacles are not filtered.
func (w *GridWorld) Neighbors(c Cell, conn Connectivity) []Cell {
	steps := conn.steps()
	result := make([]Cell, 0, len(steps))
	for _, d := range steps {
		n := Cell{c.X + d.X, c.Y + d.Y}
		if w.InBounds(n) {
			result = append(result, n)
		}
	}
	return result
}

func (c Connectivity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Connectivity) UnmarshalText(text []byte) error {
	parsed, err := ParseConnectivity(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
