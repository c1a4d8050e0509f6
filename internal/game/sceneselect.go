package game

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// runSceneSelect shows the scene list and blocks until the player picks a
// scene. Returns false if the player quits or the screen closes.
func (g *Game) runSceneSelect() (int, bool) {
	g.state = StateSceneSelect
	selected := g.pending
	n := len(g.scenes)
	for {
		g.drawSceneSelect(selected)
		ev, ok := <-g.events
		if !ok {
			return 0, false
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			g.screen.Sync()
		case *tcell.EventKey:
			switch keyToAction(ev) {
			case ActionUp:
				selected = (selected - 1 + n) % n
			case ActionDown:
				selected = (selected + 1) % n
			case ActionAdvance:
				if g.repeat.Allow(ev) {
					return selected, true
				}
			case ActionQuit:
				return 0, false
			}
			if r := ev.Rune(); r >= '1' && r <= '9' {
				if idx := int(r - '1'); idx < n {
					return idx, true
				}
			}
		}
	}
}

// drawSceneSelect renders the scene list to the screen.
func (g *Game) drawSceneSelect(selected int) {
	g.screen.Clear()
	w, _ := g.screen.Size()

	titleStyle := tcell.StyleDefault.Foreground(tcell.NewRGBColor(255, 209, 102)).Bold(true)
	normalStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	dimStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)
	highlightStyle := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.NewRGBColor(255, 209, 102))

	centerText := func(y int, text string, style tcell.Style) {
		x := max((w-runewidth.StringWidth(text))/2, 0)
		drawScreenText(g.screen, x, y, text, style)
	}

	centerText(1, "💬 EMOJI DIALOGUE 💬", titleStyle)
	centerText(2, "Choose a scene", dimStyle)

	// Each scene occupies 2 lines + 1 blank. Start at row 4.
	startY := 4
	for i, sc := range g.scenes {
		y := startY + i*3
		prefix := "  "
		lineStyle := normalStyle
		if i == selected {
			prefix = "► "
			lineStyle = highlightStyle
		}
		drawScreenText(g.screen, 2, y, fmt.Sprintf("%s[%d] %s", prefix, i+1, sc.Title()), lineStyle)

		info := fmt.Sprintf("      %d lines", sc.Len())
		if done := g.plays.Completions(sc.ID()); done > 0 {
			info += fmt.Sprintf(" · finished %d×", done)
		}
		drawScreenText(g.screen, 2, y+1, info, dimStyle)
	}

	hintsY := startY + len(g.scenes)*3 + 1
	centerText(hintsY, "[j/k or ↑/↓] Navigate   [1-9] Quick-select   [Enter] Play   [q] Quit", dimStyle)

	g.screen.Show()
}

// showSummary overlays the end-of-scene card and waits for a key. Returns
// true to go back to the scene list, false to quit.
func (g *Game) showSummary(p Play) bool {
	for {
		g.drawSummary(p)
		ev, ok := <-g.events
		if !ok {
			return false
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			g.screen.Sync()
			g.stage.Draw()
		case *tcell.EventKey:
			switch keyToAction(ev) {
			case ActionAdvance:
				// A key still held from the last line must not dismiss the card.
				if g.repeat.Allow(ev) {
					return true
				}
			case ActionQuit:
				return false
			}
		}
	}
}

func (g *Game) drawSummary(p Play) {
	w, _ := g.screen.Size()
	gold := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	white := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	gray := tcell.StyleDefault.Foreground(tcell.ColorGray)

	lines := []struct {
		text  string
		style tcell.Style
	}{
		{"— fin —", gold},
		{p.Title, white},
		{fmt.Sprintf("%d lines · %d skipped · %.0fs", p.Lines, p.Skips, p.Seconds), gray},
		{fmt.Sprintf("Finished %d×", g.plays.Completions(p.Scene)), gray},
		{"[Enter] Scene list   [q] Quit", gray},
	}
	for i, l := range lines {
		x := max((w-runewidth.StringWidth(l.text))/2, 0)
		y := 2 + i
		for c := max(x-1, 0); c <= x+runewidth.StringWidth(l.text); c++ {
			g.screen.SetContent(c, y, ' ', nil, tcell.StyleDefault)
		}
		drawScreenText(g.screen, x, y, l.text, l.style)
	}
	g.screen.Show()
}

// drawScreenText writes a string to the screen at (x, y) with the given style.
func drawScreenText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		screen.SetContent(col, y, ch, nil, style)
		col += max(runewidth.RuneWidth(ch), 1)
	}
}
