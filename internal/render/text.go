package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Wrap breaks text into lines no wider than width terminal columns. Words
// are kept whole unless a single word is wider than the line. Explicit
// newlines always break.
func Wrap(text string, width int) []string {
	if width <= 0 {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, wrapParagraph(para, width)...)
	}
	return lines
}

func wrapParagraph(para string, width int) []string {
	var (
		lines []string
		cur   strings.Builder
		curW  int
	)
	flush := func() {
		lines = append(lines, cur.String())
		cur.Reset()
		curW = 0
	}
	for _, word := range strings.Fields(para) {
		ww := runewidth.StringWidth(word)
		if curW > 0 && curW+1+ww > width {
			flush()
		}
		if curW > 0 {
			cur.WriteByte(' ')
			curW++
		}
		// Hard-break words longer than a line.
		for ww > width-curW {
			head := runewidth.Truncate(word, width-curW, "")
			if head == "" {
				if curW == 0 {
					// A single glyph wider than the line.
					head = string([]rune(word)[:1])
				} else {
					flush()
					continue
				}
			}
			cur.WriteString(head)
			flush()
			word = word[len(head):]
			ww = runewidth.StringWidth(word)
		}
		cur.WriteString(word)
		curW += ww
	}
	if curW > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}

// putGlyph draws a single glyph (ASCII or multi-rune emoji) at (x, y) and
// returns its width in columns.
func (s *Stage) putGlyph(x, y int, glyph string, style tcell.Style) int {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return 0
	}
	s.screen.SetContent(x, y, runes[0], runes[1:], style)
	w := runewidth.StringWidth(glyph)
	if w == 2 {
		// Fill the second column to avoid rendering artifacts.
		s.screen.SetContent(x+1, y, ' ', nil, style)
	}
	return max(w, 1)
}

// drawText writes text starting at (x, y), clipped to maxW columns.
func (s *Stage) drawText(x, y, maxW int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col+w > maxW {
			return
		}
		s.screen.SetContent(x+col, y, ch, nil, style)
		col += w
	}
}

func (s *Stage) drawHLine(x, y, w int, ch rune, style tcell.Style) {
	for i := 0; i < w; i++ {
		s.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// drawBorder outlines r with box-drawing characters.
func (s *Stage) drawBorder(r Rect, style tcell.Style) {
	if r.W < 2 || r.H < 2 {
		return
	}
	s.drawHLine(r.X+1, r.Y, r.W-2, '─', style)
	s.drawHLine(r.X+1, r.Y+r.H-1, r.W-2, '─', style)
	for y := r.Y + 1; y < r.Y+r.H-1; y++ {
		s.screen.SetContent(r.X, y, '│', nil, style)
		s.screen.SetContent(r.X+r.W-1, y, '│', nil, style)
	}
	s.screen.SetContent(r.X, r.Y, '┌', nil, style)
	s.screen.SetContent(r.X+r.W-1, r.Y, '┐', nil, style)
	s.screen.SetContent(r.X, r.Y+r.H-1, '└', nil, style)
	s.screen.SetContent(r.X+r.W-1, r.Y+r.H-1, '┘', nil, style)
}
