// Package ssh adapts gliderlabs/ssh sessions to tcell so every connection
// can run its own dialogue player.
package ssh

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	gossh "github.com/gliderlabs/ssh"
)

// SessionTty is the tcell.Tty of one SSH connection. Keystrokes are read
// from the channel, frames are written back to it, and the size follows the
// client's window-change requests.
type SessionTty struct {
	gossh.Session // Read, Write and Close go straight to the channel

	mu       sync.Mutex
	size     tcell.WindowSize
	resizes  <-chan gossh.Window
	onResize func()
	follow   sync.Once
}

var _ tcell.Tty = (*SessionTty)(nil)

// NewSessionTty starts at the size in pty; winCh delivers later sizes.
func NewSessionTty(s gossh.Session, pty gossh.Pty, winCh <-chan gossh.Window) *SessionTty {
	return &SessionTty{
		Session: s,
		size:    windowSize(pty.Window),
		resizes: winCh,
	}
}

// The channel is opened and torn down by the server, and writes are not
// buffered, so there is nothing to start, stop or drain.
func (t *SessionTty) Start() error { return nil }
func (t *SessionTty) Stop() error  { return nil }
func (t *SessionTty) Drain() error { return nil }

// WindowSize returns the last size the client reported.
func (t *SessionTty) WindowSize() (tcell.WindowSize, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size, nil
}

func windowSize(w gossh.Window) tcell.WindowSize {
	return tcell.WindowSize{Width: w.Width, Height: w.Height}
}
