// emoji-dialogue-server starts an SSH server where every connection gets its
// own dialogue player. Build:
//
//	go build -o emoji-dialogue-server ./cmd/server
//
// Usage:
//
//	./emoji-dialogue-server [--config dialogue.ini] [--port 2222] [--key host_key]
//
// Connect with:
//
//	ssh -p 2222 localhost
//
// With Server.Mirror set, each session can be watched over a websocket at
// /watch/<session>.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"unicode"

	"emoji-dialogue/internal/audio"
	"emoji-dialogue/internal/config"
	"emoji-dialogue/internal/game"
	"emoji-dialogue/internal/remote"
	"emoji-dialogue/internal/scene"
	internalssh "emoji-dialogue/internal/ssh"

	gossh "github.com/gliderlabs/ssh"
	xssh "golang.org/x/crypto/ssh"
)

// maxNameBytes bounds usernames before they reach logs and the play log.
const maxNameBytes = 16

func main() {
	cfgPath := flag.String("config", "dialogue.ini", "Path to the ini config file (optional)")
	port := flag.Int("port", 0, "SSH server port (overrides config)")
	keyFile := flag.String("key", "", "Path to the PEM-encoded host key, auto-generated if absent (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *keyFile != "" {
		cfg.Server.HostKey = *keyFile
	}

	scenes, err := game.LoadScenes(cfg, logger)
	if err != nil {
		log.Fatalf("scenes: %v", err)
	}

	h := &handler{
		cfg:    cfg,
		scenes: scenes,
		plays:  game.DefaultPlayLog(),
		logger: logger,
	}
	if cfg.Server.Mirror != "" {
		h.watch = newSpectators(logger)
		mux := http.NewServeMux()
		mux.Handle("GET /watch/{session}", h.watch)
		go func() {
			logger.Info("spectator mirror listening", "addr", cfg.Server.Mirror)
			if err := http.ListenAndServe(cfg.Server.Mirror, mux); err != nil {
				logger.Error("spectator mirror stopped", "error", err)
			}
		}()
	}

	srv := &gossh.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: h.handleSession,
		// Accept PTY requests from any client.
		PtyCallback: func(_ gossh.Context, _ gossh.Pty) bool { return true },
		// Accept any authentication; add gossh.PublicKeyAuth or
		// gossh.PasswordAuth options for real auth.
		HostSigners: []gossh.Signer{loadOrCreateHostKey(cfg.Server.HostKey)},
	}

	log.Printf("emoji-dialogue SSH server listening on :%d", cfg.Server.Port)
	log.Printf("Connect with:  ssh -p %d -o StrictHostKeyChecking=no localhost", cfg.Server.Port)
	log.Fatal(srv.ListenAndServe())
}

// ─── sessions ───────────────────────────────────────────────────────────────

// handler runs one Game per SSH connection. Scenes and packs are shared;
// every session has its own screen, engine and play state.
type handler struct {
	cfg    config.Config
	scenes []*scene.Scene
	plays  *game.PlayLog
	watch  *spectators // nil when the mirror is off
	logger *slog.Logger
}

// handleSession blocks for the duration of the connection.
func (h *handler) handleSession(s gossh.Session) {
	name := sanitizeName(s.User())
	id := sessionID(name)
	logger := h.logger.With("session", id, "remote", s.RemoteAddr().String())

	screen, err := internalssh.NewScreen(s)
	if errors.Is(err, internalssh.ErrNoPTY) {
		fmt.Fprintln(s, "This player requires a PTY. Connect with: ssh -t -p <port> <host>")
		return
	}
	if err != nil {
		fmt.Fprintf(s, "Terminal setup failed: %v\n", err)
		logger.Warn("terminal setup", "error", err)
		return
	}

	opts := game.Options{
		Screen:  screen,
		Scenes:  h.scenes,
		Config:  h.cfg,
		Audio:   audio.Discard{}, // no sound over SSH
		PlayLog: h.plays,
		Player:  name,
		Logger:  logger,
	}
	if h.watch != nil {
		hub := h.watch.open(id)
		defer h.watch.close(id)
		opts.Spectator = hub
		logger.Info("session mirrored", "path", "/watch/"+id)
	}

	g, err := game.New(opts)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(s, "Player setup failed: %v\n", err)
		logger.Error("new game", "error", err)
		return
	}
	logger.Info("session started", "user", name)
	g.Run()
	logger.Info("session ended", "user", name)
}

// sanitizeName strips control characters from a client-supplied name and
// truncates it to maxNameBytes without splitting a rune.
func sanitizeName(s string) string {
	out := make([]rune, 0, len(s))
	size := 0
	for _, r := range s {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			continue
		}
		n := len(string(r))
		if size+n > maxNameBytes {
			break
		}
		out = append(out, r)
		size += n
	}
	return string(out)
}

// sessionID is the name plus a random suffix, unique enough to key a mirror.
func sessionID(name string) string {
	var b [3]byte
	_, _ = rand.Read(b[:])
	if name == "" {
		name = "guest"
	}
	return name + "-" + hex.EncodeToString(b[:])
}

// ─── spectator mirror ───────────────────────────────────────────────────────

// spectators routes /watch/{session} to that session's hub.
type spectators struct {
	mu     sync.Mutex
	hubs   map[string]*remote.Hub
	logger *slog.Logger
}

func newSpectators(logger *slog.Logger) *spectators {
	return &spectators{hubs: make(map[string]*remote.Hub), logger: logger}
}

func (sp *spectators) open(id string) *remote.Hub {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	hub := remote.NewHub(sp.logger.With("session", id))
	sp.hubs[id] = hub
	return hub
}

func (sp *spectators) close(id string) {
	sp.mu.Lock()
	hub := sp.hubs[id]
	delete(sp.hubs, id)
	sp.mu.Unlock()
	if hub != nil {
		hub.Close()
	}
}

func (sp *spectators) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sp.mu.Lock()
	hub, ok := sp.hubs[r.PathValue("session")]
	sp.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	hub.ServeHTTP(w, r)
}

// ─── host key ───────────────────────────────────────────────────────────────

// loadOrCreateHostKey loads a PEM private key from path, or generates and
// persists a new ed25519 key if the file is absent or unreadable.
func loadOrCreateHostKey(path string) gossh.Signer {
	if data, err := os.ReadFile(path); err == nil {
		if signer, err := xssh.ParsePrivateKey(data); err == nil {
			log.Printf("Loaded host key from %s", path)
			return signer
		}
	}

	log.Printf("Generating new ed25519 host key → %s", path)
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		log.Fatalf("generate host key: %v", err)
	}
	signer, err := xssh.NewSignerFromKey(key)
	if err != nil {
		log.Fatalf("create signer: %v", err)
	}
	// Persist for next run (non-fatal if it fails).
	if pemBlock, err := xssh.MarshalPrivateKey(key, "emoji-dialogue server"); err == nil {
		_ = os.WriteFile(path, pem.EncodeToMemory(pemBlock), 0o600)
	}
	return signer
}
