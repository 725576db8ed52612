package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
)

const (
	glyphEmpty     = '·'
	glyphObstacle  = '█'
	glyphTarget    = '*'
	glyphCollected = 'o'
	glyphTrail     = '+'
	glyphAgent     = '@'
	glyphStart     = 'S'

	panelGap    = 2
	maxPanels   = 4
	frameHeader = 1
)

var (
	styleObstacle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTarget    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleCollected = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleTrail     = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	styleAgent     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleTitle     = tcell.StyleDefault.Bold(true)
)

// cellSetter is the part of tcell.Screen the frame renderer draws through
type cellSetter interface {
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
}

// AnimationPanel is one strategy's run drawn side by side with the others
type AnimationPanel struct {
	Title    string
	Scenario Scenario
	Result   RunResult
}

// Frames is the number of steps needed to replay the longest path
func Frames(panels []AnimationPanel) int {
	n := 0
	for _, p := range panels {
		if len(p.Result.Path) > n {
			n = len(p.Result.Path)
		}
	}
	return n
}

// DrawFrame renders every panel with its path replayed up to step
func DrawFrame(s cellSetter, panels []AnimationPanel, step int) {
	x0 := 0
	for i, p := range panels {
		if i == maxPanels {
			break
		}
		drawPanel(s, p, step, x0)
		x0 += p.Scenario.GridSize + panelGap
	}
}

func drawPanel(s cellSetter, p AnimationPanel, step, x0 int) {
	size := p.Scenario.GridSize
	path := p.Result.Path
	if step >= len(path) {
		step = len(path) - 1
	}

	title := p.Title
	if step >= 0 {
		title = fmt.Sprintf("%s %d/%d", p.Title, step+1, len(path))
	}
	for i, r := range []rune(title) {
		if i >= size {
			break
		}
		s.SetContent(x0+i, 0, r, nil, styleTitle)
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			s.SetContent(x0+x, y+frameHeader, glyphEmpty, nil, tcell.StyleDefault)
		}
	}
	put := func(c Cell, r rune, style tcell.Style) {
		if c.X >= 0 && c.X < size && c.Y >= 0 && c.Y < size {
			s.SetContent(x0+c.X, c.Y+frameHeader, r, nil, style)
		}
	}

	for _, o := range p.Scenario.Obstacles {
		put(o, glyphObstacle, styleObstacle)
	}

	visited := make(map[Cell]bool, step+1)
	for i := 0; i <= step; i++ {
		visited[path[i]] = true
		put(path[i], glyphTrail, styleTrail)
	}

	collected := p.Result.CollectedSet()
	for _, t := range p.Scenario.Targets {
		if collected[t] && visited[t] {
			put(t, glyphCollected, styleCollected)
		} else {
			put(t, glyphTarget, styleTarget)
		}
	}

	put(p.Scenario.Start, glyphStart, styleTitle)
	if step >= 0 {
		put(path[step], glyphAgent, styleAgent)
	}
}

// Animate replays the panels in the terminal until the last frame, then waits for Esc or q
func Animate(ctx context.Context, panels []AnimationPanel, interval time.Duration) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	frames := Frames(panels)
	step := 0
	draw := func() {
		screen.Clear()
		DrawFrame(screen, panels, step)
		screen.Show()
	}
	draw()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-eventChan:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
				draw()
			}
		case <-ticker.C:
			if step < frames-1 {
				step++
				draw()
			}
		}
	}
}
