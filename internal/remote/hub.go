// Package remote mirrors playback to websocket spectators. A Hub is both a
// playback.Display and a playback.Audio: every engine command becomes one JSON
// frame broadcast to every connected client.
package remote

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/playback"
	"emoji-dialogue/internal/scene"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// Frame is the wire form of one engine command.
type Frame struct {
	Kind       string `json:"kind"`
	Side       string `json:"side,omitempty"`
	Channel    string `json:"channel,omitempty"`
	Name       string `json:"name,omitempty"`
	Glyph      string `json:"glyph,omitempty"`
	Backdrop   string `json:"backdrop,omitempty"`
	Visibility string `json:"visibility,omitempty"`
	Text       string `json:"text,omitempty"`
	Visible    int    `json:"visible"`
	Path       string `json:"path,omitempty"`
}

// Frame kinds.
const (
	KindBackground = "background"
	KindPortrait   = "portrait"
	KindVisibility = "visibility"
	KindNameplate  = "nameplate"
	KindText       = "text"
	KindPlay       = "play"
	KindStop       = "stop"
)

// key groups frames that overwrite each other, e.g. the left portrait.
func (f Frame) key() string {
	switch f.Kind {
	case KindPlay, KindStop:
		return "audio/" + f.Channel
	}
	return f.Kind + "/" + f.Side
}

type client struct {
	conn *websocket.Conn
	send chan Frame
}

// Hub fans frames out to spectators and replays the latest state to late joiners.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	latest  map[string]Frame
	order   []string // first-seen order of latest keys
	closed  bool
}

var (
	_ playback.Display = (*Hub)(nil)
	_ playback.Audio   = (*Hub)(nil)
	_ http.Handler     = (*Hub)(nil)
)

// NewHub returns a Hub accepting connections from any origin.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
		latest:  make(map[string]Frame),
	}
}

// ServeHTTP upgrades the request and streams frames until the peer goes away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan Frame, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	for _, k := range h.order {
		c.send <- h.latest[k]
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("spectator joined", "remote", r.RemoteAddr)

	go h.writeLoop(c)

	// Spectators are read-only; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.drop(c)
	h.logger.Info("spectator left", "remote", r.RemoteAddr)
}

func (h *Hub) writeLoop(c *client) {
	for f := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(f); err != nil {
			h.logger.Debug("websocket write", "error", err)
			h.drop(c)
			break
		}
	}
	c.conn.Close()
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every spectator and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast never blocks; a spectator that cannot keep up is dropped.
func (h *Hub) broadcast(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	k := f.key()
	if _, seen := h.latest[k]; !seen {
		h.order = append(h.order, k)
	}
	h.latest[k] = f

	for c := range h.clients {
		select {
		case c.send <- f:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.Warn("spectator too slow, dropped")
		}
	}
}

// ─── playback.Display ───────────────────────────────────────────────────────

func (h *Hub) SetBackground(img asset.Image, backdrop asset.Color) {
	h.broadcast(Frame{Kind: KindBackground, Name: img.Name, Glyph: img.Glyph, Backdrop: backdrop.Hex()})
}

func (h *Hub) SetSlotPortrait(side scene.Side, img asset.Image) {
	h.broadcast(Frame{Kind: KindPortrait, Side: side.String(), Name: img.Name, Glyph: img.Glyph})
}

func (h *Hub) SetSlotVisibility(side scene.Side, v playback.Visibility) {
	h.broadcast(Frame{Kind: KindVisibility, Side: side.String(), Visibility: v.String()})
}

func (h *Hub) SetNameplate(side scene.Side, name string) {
	h.broadcast(Frame{Kind: KindNameplate, Side: side.String(), Name: name})
}

func (h *Hub) SetDisplayedText(text string, visible int) {
	h.broadcast(Frame{Kind: KindText, Text: text, Visible: visible})
}

// ─── playback.Audio ─────────────────────────────────────────────────────────

func (h *Hub) PlayAudio(ch asset.Channel, s asset.Sample) {
	h.broadcast(Frame{Kind: KindPlay, Channel: ch.String(), Name: s.Name, Path: s.Path})
}

func (h *Hub) StopAudio(ch asset.Channel) {
	h.broadcast(Frame{Kind: KindStop, Channel: ch.String()})
}
