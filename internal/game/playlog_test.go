package game

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"
)

func TestPlayLogDirXDGEnvOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := playLogDir()
	if err != nil {
		t.Fatalf("playLogDir returned error: %v", err)
	}
	want := filepath.Join(tmp, "emoji-dialogue")
	if dir != want {
		t.Errorf("dir = %q; want %q", dir, want)
	}
}

func TestPlayLogDirDefaultFallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "") // force the fallback path

	dir, err := playLogDir()
	if err != nil {
		t.Skip("skipping: no user home directory available in test environment")
	}
	suffix := filepath.Join(".local", "share", "emoji-dialogue")
	if !strings.HasSuffix(dir, suffix) {
		t.Errorf("dir %q does not end with %q", dir, suffix)
	}
}

func TestRecordAppendsPlays(t *testing.T) {
	dir := t.TempDir()
	log := NewPlayLog(dir)

	for i := range 3 {
		err := log.Record(Play{Scene: "rooftop", Title: "Rooftop", Lines: 4, Skips: i, Finished: time.Now()})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, playsFile))
	if err != nil {
		t.Fatalf("plays.jsonl not created: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 play lines, got %d", len(lines))
	}
	if got := gjson.Get(lines[2], "skips").Int(); got != 2 {
		t.Errorf("third play skips = %d, want 2", got)
	}
}

func TestRecordTalliesPerScene(t *testing.T) {
	dir := t.TempDir()
	log := NewPlayLog(dir)
	finished := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	log.Record(Play{Scene: "rooftop", Title: "Rooftop", Skips: 1, Finished: finished})
	log.Record(Play{Scene: "rooftop", Title: "Rooftop", Skips: 2, Finished: finished})
	log.Record(Play{Scene: "ch1.intro", Title: "Intro", Finished: finished})

	if got := log.Completions("rooftop"); got != 2 {
		t.Errorf("rooftop completions = %d, want 2", got)
	}
	if got := log.Completions("ch1.intro"); got != 1 {
		t.Errorf("dotted id completions = %d, want 1", got)
	}
	if got := log.Completions("never"); got != 0 {
		t.Errorf("unplayed completions = %d, want 0", got)
	}

	data, _ := os.ReadFile(filepath.Join(dir, tallyFile))
	if got := gjson.GetBytes(data, "scenes.rooftop.skips").Int(); got != 3 {
		t.Errorf("rooftop skips = %d, want 3", got)
	}
	if got := gjson.GetBytes(data, "scenes.rooftop.last").String(); got != "2026-03-04T05:06:07Z" {
		t.Errorf("rooftop last = %q", got)
	}
}

func TestRecordRecoversFromCorruptTally(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, tallyFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	log := NewPlayLog(dir)
	if err := log.Record(Play{Scene: "s"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if got := log.Completions("s"); got != 1 {
		t.Errorf("completions = %d, want 1", got)
	}
}

func TestNilPlayLog(t *testing.T) {
	var log *PlayLog
	if err := log.Record(Play{Scene: "s"}); err != nil {
		t.Errorf("nil Record = %v", err)
	}
	if got := log.Completions("s"); got != 0 {
		t.Errorf("nil Completions = %d", got)
	}
}

func TestDefaultPlayLog(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)
	log := DefaultPlayLog()
	if log == nil {
		t.Fatal("DefaultPlayLog returned nil")
	}
	if err := log.Record(Play{Scene: "s"}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "emoji-dialogue", playsFile)); err != nil {
		t.Errorf("plays.jsonl missing: %v", err)
	}
}
