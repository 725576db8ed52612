package main

import (
	"container/heap"
)

// SearchAlgorithm names the search that produced a route
type SearchAlgorithm string

const (
	AlgorithmAStar    SearchAlgorithm = "astar"
	AlgorithmDijkstra SearchAlgorithm = "dijkstra"
)

// searchNode is one frontier entry of a single search call
type searchNode struct {
	cell   Cell
	g      float64 // Cost from start to this cell
	f      float64 // Estimated total cost (g + heuristic)
	parent *searchNode
	index  int // Index in the heap
}

// nodeQueue implements heap.Interface ordered by estimated total cost only
type nodeQueue []*searchNode

func (pq nodeQueue) Len() int { return len(pq) }

func (pq nodeQueue) Less(i, j int) bool {
	return pq[i].f < pq[j].f
}

func (pq nodeQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *nodeQueue) Push(x interface{}) {
	n := len(*pq)
	node := x.(*searchNode)
	node.index = n
	*pq = append(*pq, node)
}

func (pq *nodeQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

type heuristicFunc func(from, to Cell) float64

func euclidean(from, to Cell) float64 { return from.Distance(to) }

func zeroHeuristic(_, _ Cell) float64 { return 0 }

// FindPath computes a route from start to goal with A* and a Euclidean heuristic.
// The route includes both endpoints. Returns ErrNoPath when the frontier empties.
func FindPath(world *GridWorld, start, goal Cell, conn Connectivity) ([]Cell, error) {
	return search(world, start, goal, conn, euclidean)
}

// FindPathUniformCost is the Dijkstra fallback: same expansion discipline, no heuristic
func FindPathUniformCost(world *GridWorld, start, goal Cell, conn Connectivity) ([]Cell, error) {
	return search(world, start, goal, conn, zeroHeuristic)
}

// FindPathWithFallback tries A* first and Dijkstra second, reporting which one produced the route
func FindPathWithFallback(world *GridWorld, start, goal Cell, conn Connectivity) ([]Cell, SearchAlgorithm, error) {
	route, err := FindPath(world, start, goal, conn)
	if err == nil {
		return route, AlgorithmAStar, nil
	}
	route, err = FindPathUniformCost(world, start, goal, conn)
	if err == nil {
		return route, AlgorithmDijkstra, nil
	}
	return nil, "", err
}

func search(world *GridWorld, start, goal Cell, conn Connectivity, h heuristicFunc) ([]Cell, error) {
	if !world.InBounds(start) || !world.InBounds(goal) {
		return nil, ErrOutOfBounds
	}

	openSet := &nodeQueue{}
	heap.Init(openSet)
	heap.Push(openSet, &searchNode{cell: start, g: 0, f: h(start, goal)})

	// A cell is expanded at most once; later pops of a closed cell are discarded.
	closedSet := make(map[Cell]bool)
	bestG := map[Cell]float64{start: 0}

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)

		if current.cell == goal {
			return reconstructRoute(current), nil
		}
		if closedSet[current.cell] {
			continue
		}
		closedSet[current.cell] = true

		for _, next := range world.Neighbors(current.cell, conn) {
			if world.IsObstacle(next) || closedSet[next] {
				continue
			}
			tentativeG := current.g + 1
			if g, seen := bestG[next]; seen && tentativeG >= g {
				continue
			}
			bestG[next] = tentativeG
			heap.Push(openSet, &searchNode{
				cell:   next,
				g:      tentativeG,
				f:      tentativeG + h(next, goal),
				parent: current,
			})
		}
	}

	return nil, ErrNoPath
}

func reconstructRoute(node *searchNode) []Cell {
	length := 0
	for n := node; n != nil; n = n.parent {
		length++
	}
	route := make([]Cell, length)
	for n := node; n != nil; n = n.parent {
		length--
		route[length] = n.cell
	}
	return route
}

// RouteLength is the number of unit moves in a route
func RouteLength(route []Cell) int {
	if len(route) == 0 {
		return 0
	}
	return len(route) - 1
}
