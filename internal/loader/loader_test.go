package loader

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"emoji-dialogue/internal/scene"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const castJSON = `{
  "characters": {
    "mira": {
      "name": "Mira",
      "emotions": ["neutral", "happy", "sad"],
      "expressions": {
        "neutral": "🙂",
        "happy": {"name": "mira-happy", "glyph": "😄"}
      },
      "voice": {"name": "mira-blip", "tone": 880, "length": "35ms"}
    },
    "juno": {
      "emotions": ["calm"],
      "expressions": {"calm": "😐"},
      "voice": {"path": "voice/juno.wav", "length": 50}
    },
    "ghost": {"name": "Ghost"}
  }
}`

const sceneJSON = `{
  "id": "rooftop",
  "title": "Café on the roof",
  "background": {"name": "night", "glyph": "🌃"},
  "music": {"path": "music/theme.wav"},
  "start": {"left": {"character": "mira"}, "right": {"character": "juno", "emotion": "calm"}},
  "linger": true,
  "rate": 40,
  "lines": [
    {"speaker": "mira", "side": "left", "text": "Hi!"},
    {"speaker": "juno", "emotion": "calm", "side": "R", "text": "Café?", "rate": 10, "disappear": true},
    {"speaker": "mira", "emotion": "sad", "text": "Oh."},
    {"text": "(wind)"}
  ]
}`

func TestParseCast(t *testing.T) {
	cast, err := ParseCast([]byte(castJSON), "/content", quiet())
	if err != nil {
		t.Fatalf("ParseCast: %v", err)
	}
	if len(cast) != 3 {
		t.Fatalf("cast size = %d, want 3", len(cast))
	}

	mira := cast["mira"]
	if mira.Name != "Mira" {
		t.Errorf("name = %q", mira.Name)
	}
	if img, ok := mira.Portrait("happy"); !ok || img.Glyph != "😄" || img.Name != "mira-happy" {
		t.Errorf("happy portrait = %+v, %v", img, ok)
	}
	if img, ok := mira.Portrait("neutral"); !ok || img.Glyph != "🙂" {
		t.Errorf("neutral portrait = %+v, %v", img, ok)
	}
	v, ok := mira.DefaultVoice()
	if !ok || v.Tone != 880 || v.Length != 35*time.Millisecond {
		t.Errorf("mira voice = %+v, %v", v, ok)
	}

	juno := cast["juno"]
	if juno.Name != "juno" {
		t.Errorf("unnamed character should use its id, got %q", juno.Name)
	}
	jv, _ := juno.DefaultVoice()
	if jv.Path != filepath.Join("/content", "voice/juno.wav") {
		t.Errorf("voice path = %q", jv.Path)
	}
	if jv.Length != 50*time.Millisecond {
		t.Errorf("numeric length = %v, want 50ms", jv.Length)
	}
}

func TestParseCastWarnsWithoutExpressions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	if _, err := ParseCast([]byte(castJSON), "", logger); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "character=ghost") {
		t.Errorf("expected a warning for ghost, log:\n%s", buf.String())
	}
}

func TestParseInvalidJSON(t *testing.T) {
	if _, err := ParseCast([]byte(`{"characters":`), "", quiet()); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("ParseCast err = %v, want ErrInvalidJSON", err)
	}
	if _, err := ParseScene([]byte(`[`), nil, "", 30, quiet()); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("ParseScene err = %v, want ErrInvalidJSON", err)
	}
}

func TestParseScene(t *testing.T) {
	cast, err := ParseCast([]byte(castJSON), "", quiet())
	if err != nil {
		t.Fatal(err)
	}
	sc, err := ParseScene([]byte(sceneJSON), cast, "/content", 30, quiet())
	if err != nil {
		t.Fatalf("ParseScene: %v", err)
	}

	if sc.ID() != "rooftop" || sc.Len() != 4 || !sc.Linger() {
		t.Fatalf("scene = %q len %d linger %v", sc.ID(), sc.Len(), sc.Linger())
	}
	if sc.Title() != "Café on the roof" {
		t.Errorf("title not normalized: %q", sc.Title())
	}

	st := sc.Staging()
	if st.Background.Glyph != "🌃" {
		t.Errorf("background = %+v", st.Background)
	}
	if st.Music.Path != filepath.Join("/content", "music/theme.wav") {
		t.Errorf("music path = %q", st.Music.Path)
	}
	if st.Left.Glyph != "🙂" || st.LeftName != "Mira" {
		t.Errorf("left staging = %+v %q", st.Left, st.LeftName)
	}
	if st.Right.Glyph != "😐" {
		t.Errorf("right staging = %+v", st.Right)
	}

	tests := []struct {
		index   int
		speaker string
		emotion string
		side    scene.Side
		rate    float64
		text    string
	}{
		{0, "Mira", "neutral", scene.Left, 40, "Hi!"},
		{1, "juno", "calm", scene.Right, 10, "Café?"},
		{2, "Mira", "sad", scene.Left, 40, "Oh."},
		{3, "", "", scene.Left, 40, "(wind)"},
	}
	for _, tt := range tests {
		l, err := sc.LineAt(tt.index)
		if err != nil {
			t.Fatal(err)
		}
		name := ""
		if l.Speaker != nil {
			name = l.Speaker.Name
		}
		if name != tt.speaker || l.Emotion != tt.emotion || l.Side != tt.side || l.RevealRate != tt.rate || l.Text != tt.text {
			t.Errorf("line %d = {%q %q %v %v %q}, want {%q %q %v %v %q}",
				tt.index, name, l.Emotion, l.Side, l.RevealRate, l.Text,
				tt.speaker, tt.emotion, tt.side, tt.rate, tt.text)
		}
	}
	if l, _ := sc.LineAt(1); !l.DisappearAfter {
		t.Error("line 1 should disappear after")
	}
}

func TestParseSceneWarnsOnUnmappedEmotion(t *testing.T) {
	cast, _ := ParseCast([]byte(castJSON), "", quiet())
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	if _, err := ParseScene([]byte(sceneJSON), cast, "", 30, logger); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "emotion=sad") {
		t.Errorf("expected unmapped emotion warning, log:\n%s", buf.String())
	}
}

func TestParseSceneErrors(t *testing.T) {
	cast, _ := ParseCast([]byte(castJSON), "", quiet())
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown speaker", `{"lines":[{"speaker":"nobody","text":"x"}]}`, ErrUnknownCharacter},
		{"unknown start pose", `{"start":{"left":{"character":"nobody"}},"lines":[]}`, ErrUnknownCharacter},
		{"zero rate", `{"lines":[{"text":"x","rate":0}]}`, scene.ErrInvalidRevealRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScene([]byte(tt.doc), cast, "", 30, quiet())
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseSceneBadSide(t *testing.T) {
	_, err := ParseScene([]byte(`{"lines":[{"text":"x","side":"up"}]}`), Cast{}, "", 30, quiet())
	if err == nil {
		t.Fatal("expected an error for side \"up\"")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(CastFile, castJSON)
	write("b.scene.json", sceneJSON)
	write("a-intro.scene.json", `{"lines":[{"speaker":"mira","text":"Welcome."}]}`)
	write("notes.json", `not a scene`)

	lib, err := LoadDir(dir, 30, quiet())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(lib.Scenes) != 2 {
		t.Fatalf("scenes = %d, want 2", len(lib.Scenes))
	}
	if lib.Scenes[0].ID() != "a-intro" || lib.Scenes[1].ID() != "rooftop" {
		t.Errorf("order = %q, %q", lib.Scenes[0].ID(), lib.Scenes[1].ID())
	}
	if _, ok := lib.Find("rooftop"); !ok {
		t.Error("Find(rooftop) failed")
	}
	if _, ok := lib.Find("missing"); ok {
		t.Error("Find(missing) should fail")
	}
	l, _ := lib.Scenes[0].LineAt(0)
	if l.RevealRate != 30 {
		t.Errorf("default rate = %v, want 30", l.RevealRate)
	}
}

func TestLoadDirMissingCast(t *testing.T) {
	if _, err := LoadDir(t.TempDir(), 30, quiet()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestLoadDirNamesBadFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, CastFile), []byte(castJSON), 0o644)
	os.WriteFile(filepath.Join(dir, "broken.scene.json"), []byte(`{"lines":[{"speaker":"x"}]}`), 0o644)
	_, err := LoadDir(dir, 30, quiet())
	if err == nil || !strings.Contains(err.Error(), "broken.scene.json") {
		t.Errorf("err = %v, want it to name the file", err)
	}
}
