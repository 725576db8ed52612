package main

import (
	"encoding/json"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		raw  string
		want Strategy
		name string
	}{
		{"nearest", Strategy{Kind: StrategyNearest}, "nearest"},
		{"greedy", Strategy{Kind: StrategyNearest}, "nearest"},
		{"lookahead", Strategy{Kind: StrategyLookahead, Lookahead: 2}, "lookahead:2"},
		{"predictive:4", Strategy{Kind: StrategyLookahead, Lookahead: 4}, "lookahead:4"},
		{"Score", Strategy{Kind: StrategyDirectional}, "directional"},
		{"", Strategy{Kind: StrategyFusion}, "fusion"},
		{" fusion ", Strategy{Kind: StrategyFusion}, "fusion"},
	}
	for _, tc := range cases {
		got, err := ParseStrategy(tc.raw)
		if err != nil {
			t.Fatalf("ParseStrategy(%q): %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseStrategy(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
		if got.String() != tc.name {
			t.Fatalf("String() = %q, want %q", got.String(), tc.name)
		}
	}

	for _, bad := range []string{"random", "lookahead:0", "lookahead:x"} {
		if _, err := ParseStrategy(bad); err == nil {
			t.Fatalf("ParseStrategy(%q) should fail", bad)
		}
	}
}

func TestParseStrategies(t *testing.T) {
	got, err := ParseStrategies("nearest, lookahead:3,,fusion")
	if err != nil {
		t.Fatalf("ParseStrategies: %v", err)
	}
	if len(got) != 3 || got[1].Lookahead != 3 {
		t.Fatalf("ParseStrategies = %+v", got)
	}
	if _, err := ParseStrategies(" , "); err == nil {
		t.Fatal("empty list should fail")
	}
}

func TestStrategyJSON(t *testing.T) {
	in := struct {
		Strategy     Strategy     `json:"strategy"`
		Connectivity Connectivity `json:"connectivity"`
	}{Strategy{Kind: StrategyLookahead, Lookahead: 3}, EightConnected}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"strategy":"lookahead:3","connectivity":"eight"}` {
		t.Fatalf("json = %s", data)
	}

	out := in
	out.Strategy, out.Connectivity = Strategy{}, FourConnected
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestDefaultConnectivity(t *testing.T) {
	if (Strategy{Kind: StrategyDirectional}).DefaultConnectivity() != EightConnected {
		t.Fatal("directional should default to eight-connected")
	}
	for _, k := range []StrategyKind{StrategyNearest, StrategyLookahead, StrategyFusion} {
		if (Strategy{Kind: k}).DefaultConnectivity() != FourConnected {
			t.Fatalf("%s should default to four-connected", k)
		}
	}
}

func TestNewSelector(t *testing.T) {
	w := NewGridWorld(5, nil)
	cases := map[StrategyKind]string{
		StrategyNearest:     "nearest",
		StrategyFusion:      "nearest",
		StrategyLookahead:   "lookahead",
		StrategyDirectional: "directional",
	}
	for kind, name := range cases {
		if got := NewSelector(Strategy{Kind: kind}, w, FourConnected).Name(); got != name {
			t.Fatalf("selector for %s = %s, want %s", kind, got, name)
		}
	}

	ls := NewSelector(Strategy{Kind: StrategyLookahead}, w, FourConnected).(*LookaheadSelector)
	if ls.Depth != defaultLookahead {
		t.Fatalf("lookahead depth = %d, want %d", ls.Depth, defaultLookahead)
	}
}
