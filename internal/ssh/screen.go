package ssh

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// DefaultTerm is used when the client sends no TERM or one not in AllowedTerms.
const DefaultTerm = "xterm-256color"

// ErrNoPTY means the client did not request a terminal.
var ErrNoPTY = errors.New("session has no PTY")

// AllowedTerms lists the terminal types a client may select. TERM picks a
// terminfo entry on the server, so it is never taken verbatim from the client.
var AllowedTerms = map[string]bool{
	"xterm":                 true,
	"xterm-256color":        true,
	"screen":                true,
	"screen-256color":       true,
	"tmux":                  true,
	"tmux-256color":         true,
	"linux":                 true,
	"vt100":                 true,
	"rxvt-unicode-256color": true,
}

// termMu protects os.Setenv("TERM") around screen creation.
var termMu sync.Mutex

// SessionTerm returns the session's TERM if allowed, else DefaultTerm.
func SessionTerm(environ []string) string {
	for _, env := range environ {
		if term, ok := strings.CutPrefix(env, "TERM="); ok && AllowedTerms[term] {
			return term
		}
	}
	return DefaultTerm
}

// NewScreen creates and initializes a tcell screen drawing to the session.
func NewScreen(s gossh.Session) (tcell.Screen, error) {
	pty, winCh, ok := s.Pty()
	if !ok {
		return nil, ErrNoPTY
	}
	term := pty.Term
	if !AllowedTerms[term] {
		term = SessionTerm(s.Environ())
	}

	// TERM must be set in the process environment before
	// NewTerminfoScreenFromTty looks up the terminfo entry.
	tty := NewSessionTty(s, pty, winCh)
	termMu.Lock()
	prev, had := os.LookupEnv("TERM")
	_ = os.Setenv("TERM", term)
	screen, err := tcell.NewTerminfoScreenFromTty(tty)
	if had {
		_ = os.Setenv("TERM", prev)
	} else {
		_ = os.Unsetenv("TERM")
	}
	termMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("terminal setup (%s): %w", term, err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("screen init: %w", err)
	}
	return screen, nil
}

// ─── window changes ─────────────────────────────────────────────────────────

// NotifyResize registers tcell's resize callback. The first call starts
// following the session's window-change requests until the channel closes
// or the session ends; later calls only replace the callback.
func (t *SessionTty) NotifyResize(cb func()) {
	t.mu.Lock()
	t.onResize = cb
	t.mu.Unlock()

	t.follow.Do(func() { go t.followWindow() })
}

func (t *SessionTty) followWindow() {
	done := t.Context().Done()
	for {
		select {
		case win, ok := <-t.resizes:
			if !ok {
				return
			}
			t.mu.Lock()
			t.size = windowSize(win)
			cb := t.onResize
			t.mu.Unlock()
			if cb != nil {
				cb()
			}
		case <-done:
			return
		}
	}
}
