package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
)

const (
	// DefaultMaxIterations bounds the select/plan cycles of one run
	DefaultMaxIterations = 1000

	// DefaultSenseRadius is the resensing range in grid units
	DefaultSenseRadius = 5.0
)

// EngineState is a state of the routing state machine
type EngineState string

const (
	StateSelecting         EngineState = "SELECTING"
	StatePlanning          EngineState = "PLANNING"
	StateFallbackDijkstra  EngineState = "FALLBACK_DIJKSTRA"
	StateFallbackAltTarget EngineState = "FALLBACK_ALT_TARGET"
	StateCommitting        EngineState = "COMMITTING"
	StateResensing         EngineState = "RESENSING"
	StateDone              EngineState = "DONE"
	StateStuck             EngineState = "STUCK"
)

// TerminalState is how a run ended
type TerminalState string

const (
	TerminalDone  TerminalState = "done"
	TerminalStuck TerminalState = "stuck"
)

// EngineConfig is the boundary input of one routing run
type EngineConfig struct {
	GridSize      int
	Start         Cell
	Targets       []Cell
	Obstacles     []Cell
	Strategy      Strategy
	Connectivity  Connectivity
	MaxIterations int         // Zero means DefaultMaxIterations
	SenseRadius   float64     // Zero means DefaultSenseRadius; fusion only
	Logger        *log.Logger // Nil discards engine logging
}

// Validate rejects inputs outside the grid and targets or start placed on obstacles
func (c EngineConfig) Validate() error {
	if c.GridSize <= 0 {
		return ErrInvalidGridSize
	}
	world := NewGridWorld(c.GridSize, nil)
	if !world.InBounds(c.Start) {
		return fmt.Errorf("start %s: %w", c.Start, ErrOutOfBounds)
	}
	obstacles := make(map[Cell]bool, len(c.Obstacles))
	for _, o := range c.Obstacles {
		if !world.InBounds(o) {
			return fmt.Errorf("obstacle %s: %w", o, ErrOutOfBounds)
		}
		obstacles[o] = true
	}
	if obstacles[c.Start] {
		return fmt.Errorf("start %s: %w", c.Start, ErrStartOnObstacle)
	}
	for _, t := range c.Targets {
		if !world.InBounds(t) {
			return fmt.Errorf("target %s: %w", t, ErrOutOfBounds)
		}
		if obstacles[t] {
			return fmt.Errorf("target %s: %w", t, ErrTargetOnObstacle)
		}
	}
	return nil
}

// RunStats counts how often each recovery path fired
type RunStats struct {
	AStarRoutes      int `json:"astarRoutes"`
	DijkstraRoutes   int `json:"dijkstraRoutes"`
	AltTargetRoutes  int `json:"altTargetRoutes"`
	ResensedTargets  int `json:"resensedTargets"`
	DroppedTargets   int `json:"droppedTargets"`
	SearchInvocation int `json:"searchInvocations"`
}

// RunResult is the output of one routing run
type RunResult struct {
	Path       []Cell        `json:"path"`
	Collected  []Cell        `json:"collected"` // In collection order
	Remaining  []Cell        `json:"remaining"`
	Dropped    []Cell        `json:"dropped"`
	Terminal   TerminalState `json:"terminal"`
	Reason     string        `json:"reason,omitempty"`
	Iterations int           `json:"iterations"`
	Stats      RunStats      `json:"stats"`

	// Err is ErrNoReachableTarget or ErrIterationCap for stuck runs
	Err error `json:"-"`
}

// CollectedSet returns the collected targets as a set
func (r RunResult) CollectedSet() map[Cell]bool {
	set := make(map[Cell]bool, len(r.Collected))
	for _, c := range r.Collected {
		set[c] = true
	}
	return set
}

// RoutingEngine runs SELECT -> PLAN -> FALLBACK -> COMMIT -> RESENSE cycles.
// It owns the remaining targets and the accumulated path of a single run.
type RoutingEngine struct {
	world         *GridWorld
	selector      TargetSelector
	strategy      Strategy
	conn          Connectivity
	maxIterations int
	senseRadius   float64
	logger        *log.Logger

	state     EngineState
	position  Cell
	remaining *TargetSet
	path      []Cell
	collected []Cell
	dropped   []Cell
	stats     RunStats
}

// NewRoutingEngine validates the input and prepares a run
func NewRoutingEngine(cfg EngineConfig) (*RoutingEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Strategy.Kind == "" {
		cfg.Strategy = Strategy{Kind: StrategyFusion}
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.SenseRadius <= 0 {
		cfg.SenseRadius = DefaultSenseRadius
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	world := NewGridWorld(cfg.GridSize, cfg.Obstacles)
	return &RoutingEngine{
		world:         world,
		selector:      NewSelector(cfg.Strategy, world, cfg.Connectivity),
		strategy:      cfg.Strategy,
		conn:          cfg.Connectivity,
		maxIterations: cfg.MaxIterations,
		senseRadius:   cfg.SenseRadius,
		logger:        logger,
		state:         StateSelecting,
		position:      cfg.Start,
		remaining:     NewTargetSet(cfg.Targets),
		path:          []Cell{cfg.Start},
	}, nil
}

// World exposes the read-only grid of this run
func (e *RoutingEngine) World() *GridWorld { return e.world }

// State reports the current state machine state
func (e *RoutingEngine) State() EngineState { return e.state }

// Run drives the state machine to DONE or STUCK. It is not safe to call twice.
func (e *RoutingEngine) Run() RunResult {
	e.logger.Printf("🚀 Routing %d targets with %s (%s-connected)\n",
		e.remaining.Len(), e.strategy, e.conn)

	iterations := 0
	var stuckErr error

	for {
		e.state = StateSelecting
		if e.remaining.Empty() {
			e.state = StateDone
			break
		}
		if iterations >= e.maxIterations {
			e.state = StateStuck
			stuckErr = ErrIterationCap
			e.logger.Printf("⚠️  Iteration cap %d reached with %d targets left\n", e.maxIterations, e.remaining.Len())
			break
		}
		iterations++

		target, ok := e.selector.Select(e.position, e.remaining.Cells())
		if !ok {
			e.state = StateStuck
			stuckErr = ErrNoReachableTarget
			e.logger.Printf("❌ No reachable target from %s (%d left)\n", e.position, e.remaining.Len())
			break
		}

		route, reached, err := e.plan(target)
		if err != nil {
			e.remaining.Remove(target)
			e.dropped = append(e.dropped, target)
			e.stats.DroppedTargets++
			e.logger.Printf("⚠️  Dropping unreachable target %s\n", target)
			continue
		}

		e.commit(route, reached)

		if e.strategy.Fusion() {
			e.resense()
		}
	}

	result := RunResult{
		Path:       e.path,
		Collected:  e.collected,
		Remaining:  e.remaining.Cells(),
		Dropped:    e.dropped,
		Iterations: iterations,
		Stats:      e.stats,
	}
	if e.state == StateDone {
		result.Terminal = TerminalDone
		e.logger.Printf("✅ Done: collected %d, dropped %d, path %d cells\n",
			len(e.collected), len(e.dropped), len(e.path))
	} else {
		result.Terminal = TerminalStuck
		result.Err = stuckErr
		result.Reason = stuckErr.Error()
	}
	return result
}

// plan runs PLANNING, FALLBACK_DIJKSTRA and, for fusion, FALLBACK_ALT_TARGET.
// It returns the route and the target that route reaches.
func (e *RoutingEngine) plan(target Cell) ([]Cell, Cell, error) {
	e.state = StatePlanning
	route, err := e.searchBoth(target)
	if err == nil {
		return route, target, nil
	}

	if !e.strategy.Fusion() {
		return nil, target, err
	}

	e.state = StateFallbackAltTarget
	for _, alt := range e.alternatives(target) {
		route, err := e.searchBoth(alt)
		if err == nil {
			e.stats.AltTargetRoutes++
			e.logger.Printf("ℹ️  %s unreachable, diverting to %s\n", target, alt)
			return route, alt, nil
		}
	}
	return nil, target, ErrNoReachableTarget
}

// searchBoth is A* followed by the uniform-cost retry on the same pair
func (e *RoutingEngine) searchBoth(goal Cell) ([]Cell, error) {
	e.stats.SearchInvocation++
	route, err := FindPath(e.world, e.position, goal, e.conn)
	if err == nil {
		e.stats.AStarRoutes++
		return route, nil
	}
	if !errors.Is(err, ErrNoPath) {
		return nil, err
	}

	e.state = StateFallbackDijkstra
	e.stats.SearchInvocation++
	route, err = FindPathUniformCost(e.world, e.position, goal, e.conn)
	if err == nil {
		e.stats.DijkstraRoutes++
		return route, nil
	}
	return nil, err
}

// alternatives lists the other remaining targets by ascending straight-line distance
func (e *RoutingEngine) alternatives(exclude Cell) []Cell {
	cells := e.remaining.Cells()
	alts := cells[:0]
	for _, c := range cells {
		if c != exclude {
			alts = append(alts, c)
		}
	}
	sort.SliceStable(alts, func(i, j int) bool {
		return e.position.Distance(alts[i]) < e.position.Distance(alts[j])
	})
	return alts
}

// commit appends the route minus its first cell and collects the reached target
func (e *RoutingEngine) commit(route []Cell, reached Cell) {
	e.state = StateCommitting
	if len(route) > 1 {
		e.path = append(e.path, route[1:]...)
	}
	e.position = reached
	if e.remaining.Remove(reached) {
		e.collected = append(e.collected, reached)
	}
}

// resense opportunistically collects targets near the current position without reselection
func (e *RoutingEngine) resense() {
	e.state = StateResensing
	for _, t := range e.remaining.Within(e.position, e.senseRadius) {
		if !e.remaining.Contains(t) {
			continue
		}
		e.stats.SearchInvocation++
		route, err := FindPath(e.world, e.position, t, e.conn)
		if err != nil {
			continue
		}
		e.stats.AStarRoutes++
		e.stats.ResensedTargets++
		e.commit(route, t)
		e.state = StateResensing
	}
}

// Route is a convenience wrapper: validate, run, return
func Route(cfg EngineConfig) (RunResult, error) {
	engine, err := NewRoutingEngine(cfg)
	if err != nil {
		return RunResult{}, err
	}
	return engine.Run(), nil
}
