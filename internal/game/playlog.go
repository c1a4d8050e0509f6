package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	playsFile = "plays.jsonl"
	tallyFile = "tally.json"
)

// Play records one scene played to its end.
type Play struct {
	Scene    string    `json:"scene"`
	Title    string    `json:"title"`
	Player   string    `json:"player,omitempty"`
	Lines    int       `json:"lines"`
	Skips    int       `json:"skips"` // reveals cut short by the player
	Seconds  float64   `json:"seconds"`
	Finished time.Time `json:"finished"`
}

// PlayLog keeps play history under one directory: every play as a JSON line
// in plays.jsonl and per-scene counters in tally.json. A nil *PlayLog
// records nothing.
type PlayLog struct {
	mu  sync.Mutex
	dir string
}

// NewPlayLog returns a PlayLog writing under dir.
func NewPlayLog(dir string) *PlayLog {
	return &PlayLog{dir: dir}
}

// Record appends p to plays.jsonl and bumps the scene's tally.
func (l *PlayLog) Record(p Play) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("create play log dir: %w", err)
	}
	if err := l.appendPlay(p); err != nil {
		return err
	}
	return l.bumpTally(p)
}

func (l *PlayLog) appendPlay(p Play) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode play: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(l.dir, playsFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open plays: %w", err)
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write plays: %w", err)
	}
	return nil
}

func (l *PlayLog) bumpTally(p Play) error {
	path := filepath.Join(l.dir, tallyFile)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read tally: %w", err)
	}
	if len(data) == 0 || !gjson.ValidBytes(data) {
		data = []byte(`{}`)
	}

	base := "scenes." + gjson.Escape(p.Scene)
	completed := gjson.GetBytes(data, base+".completed").Int()
	skips := gjson.GetBytes(data, base+".skips").Int()

	if data, err = sjson.SetBytes(data, base+".title", p.Title); err != nil {
		return fmt.Errorf("update tally: %w", err)
	}
	if data, err = sjson.SetBytes(data, base+".completed", completed+1); err != nil {
		return fmt.Errorf("update tally: %w", err)
	}
	if data, err = sjson.SetBytes(data, base+".skips", skips+int64(p.Skips)); err != nil {
		return fmt.Errorf("update tally: %w", err)
	}
	if data, err = sjson.SetBytes(data, base+".last", p.Finished.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("update tally: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write tally: %w", err)
	}
	return os.Rename(tmp, path)
}

// Completions returns how many times the scene has been played to its end.
func (l *PlayLog) Completions(sceneID string) int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := os.ReadFile(filepath.Join(l.dir, tallyFile))
	if err != nil {
		return 0
	}
	return int(gjson.GetBytes(data, "scenes."+gjson.Escape(sceneID)+".completed").Int())
}

// playLogDir returns the directory where play history is stored.
// Follows XDG Base Directory spec: $XDG_DATA_HOME/emoji-dialogue,
// defaulting to ~/.local/share/emoji-dialogue.
func playLogDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "emoji-dialogue"), nil
}

// DefaultPlayLog opens the play log in the XDG data directory, or returns
// nil when no home directory can be found.
func DefaultPlayLog() *PlayLog {
	dir, err := playLogDir()
	if err != nil {
		return nil
	}
	return NewPlayLog(dir)
}
