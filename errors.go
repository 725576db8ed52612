package main

import "errors"

var (
	// ErrNoPath means the goal cannot be reached from the source under the current obstacles
	ErrNoPath = errors.New("no path found")

	// ErrNoReachableTarget means every remaining target exhausted the fallback chain
	ErrNoReachableTarget = errors.New("no reachable target")

	// ErrIterationCap is reported when a run stops at its iteration cap
	ErrIterationCap = errors.New("iteration cap exceeded")

	ErrOutOfBounds      = errors.New("cell outside grid")
	ErrTargetOnObstacle = errors.New("target placed on an obstacle cell")
	ErrStartOnObstacle  = errors.New("start placed on an obstacle cell")
	ErrInvalidGridSize  = errors.New("grid size must be positive")
)
