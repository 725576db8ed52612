package main

import (
	"fmt"
	"strconv"
	"strings"
)

// StrategyKind names a routing strategy
type StrategyKind string

const (
	StrategyNearest     StrategyKind = "nearest"
	StrategyLookahead   StrategyKind = "lookahead"
	StrategyDirectional StrategyKind = "directional"
	StrategyFusion      StrategyKind = "fusion"
)

const defaultLookahead = 2

// Strategy is the target-selection policy chosen once per run
type Strategy struct {
	Kind      StrategyKind
	Lookahead int // Only meaningful for StrategyLookahead
}

func (s Strategy) String() string {
	if s.Kind == StrategyLookahead {
		return fmt.Sprintf("%s:%d", s.Kind, s.lookahead())
	}
	return string(s.Kind)
}

func (s Strategy) lookahead() int {
	if s.Lookahead < 1 {
		return defaultLookahead
	}
	return s.Lookahead
}

// Fusion adds the alternate-target fallback and resensing on top of nearest selection
func (s Strategy) Fusion() bool { return s.Kind == StrategyFusion }

// DefaultConnectivity is the stencil a strategy runs with when the caller does not choose one
func (s Strategy) DefaultConnectivity() Connectivity {
	if s.Kind == StrategyDirectional {
		return EightConnected
	}
	return FourConnected
}

// ParseStrategy accepts nearest, lookahead[:k], directional (alias score) and fusion
func ParseStrategy(raw string) (Strategy, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(raw)), ":")
	switch StrategyKind(name) {
	case StrategyNearest, "greedy":
		return Strategy{Kind: StrategyNearest}, nil
	case StrategyDirectional, "score":
		return Strategy{Kind: StrategyDirectional}, nil
	case StrategyFusion, "":
		return Strategy{Kind: StrategyFusion}, nil
	case StrategyLookahead, "predictive":
		k := defaultLookahead
		if hasArg {
			v, err := strconv.Atoi(arg)
			if err != nil || v < 1 {
				return Strategy{}, fmt.Errorf("invalid lookahead depth %q", arg)
			}
			k = v
		}
		return Strategy{Kind: StrategyLookahead, Lookahead: k}, nil
	default:
		return Strategy{}, fmt.Errorf("unknown strategy %q", raw)
	}
}

// ParseStrategies splits a comma separated list
func ParseStrategies(raw string) ([]Strategy, error) {
	var out []Strategy
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := ParseStrategy(part)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no strategies in %q", raw)
	}
	return out, nil
}

// NewSelector builds the selector for a strategy over one world
func NewSelector(s Strategy, world *GridWorld, conn Connectivity) TargetSelector {
	switch s.Kind {
	case StrategyLookahead:
		return &LookaheadSelector{World: world, Connectivity: conn, Depth: s.lookahead()}
	case StrategyDirectional:
		return &DirectionalSelector{Connectivity: conn}
	default:
		return NearestSelector{}
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
