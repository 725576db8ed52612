package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

// recordingScreen keeps the last rune drawn at each position
type recordingScreen struct {
	cells map[[2]int]rune
}

func newRecordingScreen() *recordingScreen {
	return &recordingScreen{cells: make(map[[2]int]rune)}
}

func (r *recordingScreen) SetContent(x, y int, mainc rune, _ []rune, _ tcell.Style) {
	r.cells[[2]int{x, y}] = mainc
}

func (r *recordingScreen) at(x, y int) rune {
	return r.cells[[2]int{x, y}]
}

func animationPanels(t *testing.T) []AnimationPanel {
	t.Helper()
	scenario := Scenario{
		GridSize:  5,
		Start:     Cell{0, 0},
		Targets:   []Cell{{4, 0}},
		Obstacles: []Cell{{2, 2}},
	}
	var panels []AnimationPanel
	for _, kind := range []StrategyKind{StrategyNearest, StrategyFusion} {
		result, err := Route(scenario.EngineConfig(Strategy{Kind: kind}, FourConnected))
		if err != nil {
			t.Fatalf("Route: %v", err)
		}
		panels = append(panels, AnimationPanel{Title: string(kind), Scenario: scenario, Result: result})
	}
	return panels
}

func TestDrawFrameReplaysPath(t *testing.T) {
	panels := animationPanels(t)
	if got := Frames(panels); got != 5 {
		t.Fatalf("frames = %d, want 5", got)
	}

	s := newRecordingScreen()
	DrawFrame(s, panels, 0)
	if s.at(0, frameHeader) != glyphAgent {
		t.Fatalf("agent not at start: %q", s.at(0, frameHeader))
	}
	if s.at(4, frameHeader) != glyphTarget {
		t.Fatalf("target glyph = %q", s.at(4, frameHeader))
	}
	if s.at(2, 2+frameHeader) != glyphObstacle {
		t.Fatalf("obstacle glyph = %q", s.at(2, 2+frameHeader))
	}
	if s.at(1, frameHeader) != glyphEmpty {
		t.Fatalf("unvisited cell = %q", s.at(1, frameHeader))
	}

	s = newRecordingScreen()
	DrawFrame(s, panels, 2)
	if s.at(0, frameHeader) != glyphStart || s.at(1, frameHeader) != glyphTrail || s.at(2, frameHeader) != glyphAgent {
		t.Fatalf("row = %q %q %q", s.at(0, frameHeader), s.at(1, frameHeader), s.at(2, frameHeader))
	}

	// Steps past the end hold the last frame
	s = newRecordingScreen()
	DrawFrame(s, panels, 99)
	if s.at(4, frameHeader) != glyphAgent {
		t.Fatalf("agent should rest on the collected target, got %q", s.at(4, frameHeader))
	}
	if s.at(3, frameHeader) != glyphTrail {
		t.Fatalf("trail = %q", s.at(3, frameHeader))
	}
}

func TestDrawFrameLaysPanelsSideBySide(t *testing.T) {
	panels := animationPanels(t)
	s := newRecordingScreen()
	DrawFrame(s, panels, 0)

	offset := panels[0].Scenario.GridSize + panelGap
	if s.at(offset, frameHeader) != glyphAgent {
		t.Fatalf("second panel agent = %q", s.at(offset, frameHeader))
	}
	if s.at(offset, 0) != 'f' {
		t.Fatalf("second panel title starts with %q", s.at(offset, 0))
	}
	if _, ok := s.cells[[2]int{panels[0].Scenario.GridSize, frameHeader}]; ok {
		t.Fatal("gap column should stay untouched")
	}
}

func TestDrawFrameCapsPanels(t *testing.T) {
	panel := animationPanels(t)[0]
	panels := []AnimationPanel{panel, panel, panel, panel, panel}
	s := newRecordingScreen()
	DrawFrame(s, panels, 0)

	fifth := 4 * (panel.Scenario.GridSize + panelGap)
	if _, ok := s.cells[[2]int{fifth, frameHeader}]; ok {
		t.Fatal("only four panels should be drawn")
	}
}
