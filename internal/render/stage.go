// Package render draws dialogue scenes onto a tcell screen.
package render

import (
	"sync"

	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/playback"
	"emoji-dialogue/internal/scene"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// advanceMark is drawn in the box corner once the line is fully shown.
const advanceMark = "▼"

type slotView struct {
	portrait   asset.Image
	name       string
	visibility playback.Visibility
}

// Stage is a playback.Display backed by a tcell screen. Display commands
// only update the stage's model; Draw paints it. Commands may arrive from
// timer goroutines, so hosts redraw from their own loop when notified.
type Stage struct {
	mu      sync.Mutex
	screen  tcell.Screen
	palette Palette
	notify  func()

	title      string
	background asset.Image
	backdrop   asset.Color
	slots      [2]slotView
	text       string
	visible    int
}

var _ playback.Display = (*Stage)(nil)

// NewStage creates a Stage for the given screen. notify, when non-nil, is
// called after every display command and must not block.
func NewStage(screen tcell.Screen, palette Palette, notify func()) *Stage {
	return &Stage{
		screen:   screen,
		palette:  palette,
		notify:   notify,
		backdrop: scene.FallbackBackdrop,
	}
}

// SetTitle sets the header line.
func (s *Stage) SetTitle(title string) {
	s.update(func() { s.title = title })
}

// Reset clears everything the previous scene left on stage.
func (s *Stage) Reset() {
	s.update(func() {
		s.background = asset.Image{}
		s.backdrop = scene.FallbackBackdrop
		s.slots = [2]slotView{}
		s.text, s.visible = "", 0
	})
}

func (s *Stage) update(f func()) {
	s.mu.Lock()
	f()
	s.mu.Unlock()
	if s.notify != nil {
		s.notify()
	}
}

// ─── playback.Display ───────────────────────────────────────────────────────

func (s *Stage) SetBackground(img asset.Image, backdrop asset.Color) {
	s.update(func() {
		s.background = img
		s.backdrop = backdrop
	})
}

func (s *Stage) SetSlotPortrait(side scene.Side, img asset.Image) {
	s.update(func() { s.slots[side].portrait = img })
}

func (s *Stage) SetSlotVisibility(side scene.Side, v playback.Visibility) {
	s.update(func() { s.slots[side].visibility = v })
}

func (s *Stage) SetNameplate(side scene.Side, name string) {
	s.update(func() { s.slots[side].name = name })
}

func (s *Stage) SetDisplayedText(text string, visible int) {
	s.update(func() {
		s.text = text
		s.visible = visible
	})
}

// ─── model accessors ────────────────────────────────────────────────────────

// Slot returns what the stage holds for one side.
func (s *Stage) Slot(side scene.Side) (asset.Image, string, playback.Visibility) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.slots[side]
	return v.portrait, v.name, v.visibility
}

// VisibleText returns the revealed prefix of the current line.
func (s *Stage) VisibleText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visibleLocked()
}

// Background returns the staged background image and backdrop colour.
func (s *Stage) Background() (asset.Image, asset.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background, s.backdrop
}

func (s *Stage) visibleLocked() string {
	runes := []rune(s.text)
	n := min(max(s.visible, 0), len(runes))
	return string(runes[:n])
}

// ─── drawing ────────────────────────────────────────────────────────────────

// Draw repaints the whole stage and shows it.
func (s *Stage) Draw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.screen.Clear()
	w, h := s.screen.Size()
	l := NewLayout(w, h)

	s.drawTitle(w)
	s.drawBackground(l.Band)
	for _, side := range []scene.Side{scene.Left, scene.Right} {
		s.drawSlot(side, l)
	}
	s.drawBox(l)
	s.screen.Show()
}

func (s *Stage) drawTitle(w int) {
	if s.title == "" {
		return
	}
	tw := runewidth.StringWidth(s.title)
	s.drawText(max((w-tw)/2, 0), 0, w, s.title, fg(s.palette.Name).Bold(true))
}

// drawBackground tiles the background glyph across the band, or fills the
// band with the backdrop colour when the scene has no image.
func (s *Stage) drawBackground(band Rect) {
	fill := tcell.StyleDefault.Background(tcellColor(s.palette.Backdrop(s.backdrop)))
	if s.background.Glyph != "" {
		fill = tcell.StyleDefault.Background(tcellColor(s.palette.Base))
	}
	for y := band.Y; y < band.Y+band.H; y++ {
		s.drawHLine(band.X, y, band.W, ' ', fill)
	}
	if s.background.Glyph == "" {
		return
	}
	const spacing = 8
	for y := band.Y; y < band.Y+band.H; y += 2 {
		offset := (y / 2 % 2) * spacing / 2
		for x := band.X + offset; x+2 <= band.X+band.W; x += spacing {
			s.putGlyph(x, y, s.background.Glyph, fill.Dim(true))
		}
	}
}

func (s *Stage) drawSlot(side scene.Side, l Layout) {
	v := s.slots[side]
	if v.visibility == playback.Transparent {
		return
	}
	frame, plate := l.Frames[side], l.Nameplate[side]

	frameCol, nameCol := s.palette.Frame, s.palette.Name
	glyphStyle := tcell.StyleDefault
	if v.visibility == playback.Greyed {
		frameCol = s.palette.Greyed(frameCol)
		nameCol = s.palette.Greyed(nameCol)
		glyphStyle = glyphStyle.Dim(true)
	}

	s.drawBorder(frame, fg(frameCol))
	if v.portrait.Glyph != "" && frame.W >= 4 && frame.H >= 3 {
		gw := max(runewidth.StringWidth(v.portrait.Glyph), 1)
		s.putGlyph(frame.X+(frame.W-gw)/2, frame.Y+frame.H/2, v.portrait.Glyph, glyphStyle)
	}
	if v.name != "" && plate.W > 0 {
		style := fg(nameCol)
		if v.visibility == playback.Opaque {
			style = style.Bold(true)
		}
		s.drawText(plate.X, plate.Y, plate.W, v.name, style)
	}
}

func (s *Stage) drawBox(l Layout) {
	s.drawBorder(l.Box, fg(s.palette.Frame))
	area := l.TextArea()
	if area.W == 0 || area.H == 0 {
		return
	}
	style := fg(s.palette.Text)
	lines := Wrap(s.visibleLocked(), area.W)
	// Keep the newest text in view when a line overflows the box.
	if len(lines) > area.H {
		lines = lines[len(lines)-area.H:]
	}
	for i, line := range lines {
		s.drawText(area.X, area.Y+i, area.W, line, style)
	}

	full := len([]rune(s.text))
	if full > 0 && s.visible >= full {
		s.drawText(l.Box.X+l.Box.W-3, l.Box.Y+l.Box.H-1, 1, advanceMark, fg(s.palette.Name))
	}
}
