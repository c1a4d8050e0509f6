package game

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func TestKeyToAction(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Action
	}{
		{"enter", tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), ActionAdvance},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), ActionAdvance},
		{"z", tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), ActionAdvance},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), ActionQuit},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), ActionQuit},
		{"up", tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone), ActionUp},
		{"k", tcell.NewEventKey(tcell.KeyRune, 'k', tcell.ModNone), ActionUp},
		{"down", tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), ActionDown},
		{"j", tcell.NewEventKey(tcell.KeyRune, 'j', tcell.ModNone), ActionDown},
		{"unbound", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyToAction(tt.ev); got != tt.want {
				t.Errorf("keyToAction = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRepeatFilter(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

	f := newRepeatFilter(100 * time.Millisecond)
	steps := []struct {
		key  tcell.Key
		r    rune
		ms   int
		want bool
	}{
		{tcell.KeyEnter, 0, 0, true},     // first press
		{tcell.KeyEnter, 0, 30, false},   // auto-repeat
		{tcell.KeyEnter, 0, 60, false},   // still held
		{tcell.KeyEnter, 0, 150, true},   // released and pressed again
		{tcell.KeyRune, ' ', 160, true},  // a different key always passes
		{tcell.KeyRune, 'z', 170, true},  // so does another rune
		{tcell.KeyRune, 'z', 400, true},  // a late repeat passes
	}
	for i, s := range steps {
		if got := f.allow(s.key, s.r, at(s.ms)); got != s.want {
			t.Errorf("step %d (%v %q @%dms) = %v, want %v", i, s.key, s.r, s.ms, got, s.want)
		}
	}
}

func TestRepeatFilterZeroWindow(t *testing.T) {
	f := newRepeatFilter(0)
	now := time.Now()
	for i := range 3 {
		if !f.allow(tcell.KeyEnter, 0, now) {
			t.Fatalf("press %d dropped with a zero window", i)
		}
	}
}
