package game

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// Action represents a player-requested action.
type Action uint8

const (
	ActionNone Action = iota
	ActionAdvance
	ActionQuit
	ActionUp
	ActionDown
)

// keyToAction maps a tcell key event to an action.
func keyToAction(ev *tcell.EventKey) Action {
	// Named keys.
	switch ev.Key() {
	case tcell.KeyEnter:
		return ActionAdvance
	case tcell.KeyUp:
		return ActionUp
	case tcell.KeyDown:
		return ActionDown
	case tcell.KeyEscape:
		return ActionQuit
	}

	// Rune keys.
	switch ev.Rune() {
	case ' ', 'z', 'Z':
		return ActionAdvance
	case 'k', 'K':
		return ActionUp
	case 'j', 'J':
		return ActionDown
	case 'q', 'Q':
		return ActionQuit
	}
	return ActionNone
}

// repeatFilter turns a held key into a single press. Terminals report a
// held key as a stream of identical key events; any event arriving within
// window of the previous identical one is dropped, and the window slides
// with every dropped event.
type repeatFilter struct {
	window time.Duration
	key    tcell.Key
	r      rune
	last   time.Time
}

func newRepeatFilter(window time.Duration) *repeatFilter {
	return &repeatFilter{window: window}
}

// Allow reports whether ev is a fresh press.
func (f *repeatFilter) Allow(ev *tcell.EventKey) bool {
	return f.allow(ev.Key(), ev.Rune(), ev.When())
}

func (f *repeatFilter) allow(key tcell.Key, r rune, now time.Time) bool {
	same := !f.last.IsZero() && key == f.key && r == f.r
	repeat := same && now.Sub(f.last) < f.window
	f.key, f.r, f.last = key, r, now
	return !repeat
}
