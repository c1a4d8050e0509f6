// Package loader reads authored casts and scenes from JSON files.
//
// A directory holds one cast.json and any number of *.scene.json files.
// Images may be written as a bare glyph string or as {"name", "glyph"};
// samples as {"name", "path", "tone", "length"}, where path is relative to
// the file that mentions it.
package loader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/character"
	"emoji-dialogue/internal/scene"

	"github.com/tidwall/gjson"
	"golang.org/x/text/unicode/norm"
)

// CastFile is the cast's file name inside a content directory.
const CastFile = "cast.json"

// SceneSuffix marks scene files inside a content directory.
const SceneSuffix = ".scene.json"

var (
	// ErrInvalidJSON means a file is not well-formed JSON.
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrUnknownCharacter means a scene names a speaker missing from the cast.
	ErrUnknownCharacter = errors.New("unknown character")
)

// Cast maps character ids to packs.
type Cast map[string]*character.Pack

// Library is everything loaded from one directory.
type Library struct {
	Cast   Cast
	Scenes []*scene.Scene
}

// Find returns the scene with the given id.
func (l Library) Find(id string) (*scene.Scene, bool) {
	for _, s := range l.Scenes {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// ParseCast reads a cast document.
func ParseCast(data []byte, baseDir string, logger *slog.Logger) (Cast, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("cast: %w", ErrInvalidJSON)
	}
	cast := make(Cast)
	gjson.GetBytes(data, "characters").ForEach(func(key, v gjson.Result) bool {
		id := key.String()
		name := v.Get("name").String()
		if name == "" {
			name = id
		}
		var emotions []string
		for _, e := range v.Get("emotions").Array() {
			emotions = append(emotions, e.String())
		}
		expressions := make(map[string]asset.Image)
		v.Get("expressions").ForEach(func(emotion, img gjson.Result) bool {
			expressions[emotion.String()] = parseImage(img)
			return true
		})
		if len(expressions) == 0 {
			logger.Warn("character has no expressions", "character", id)
		}
		voice := parseSample(v.Get("voice"), baseDir)
		cast[id] = character.NewPack(name, emotions, expressions, voice)
		return true
	})
	return cast, nil
}

// ParseScene reads one scene document. defaultRate applies to lines that do
// not set their own rate.
func ParseScene(data []byte, cast Cast, baseDir string, defaultRate float64, logger *slog.Logger) (*scene.Scene, error) {
	return parseScene(data, "", cast, baseDir, defaultRate, logger)
}

// parseScene uses fallbackID when the document has no id of its own.
func parseScene(data []byte, fallbackID string, cast Cast, baseDir string, defaultRate float64, logger *slog.Logger) (*scene.Scene, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("scene: %w", ErrInvalidJSON)
	}
	doc := gjson.ParseBytes(data)
	id := doc.Get("id").String()
	if id == "" {
		id = fallbackID
	}

	if r := doc.Get("rate"); r.Exists() {
		defaultRate = r.Float()
	}

	cfg := scene.Config{
		ID:         id,
		Title:      norm.NFC.String(doc.Get("title").String()),
		Background: parseImage(doc.Get("background")),
		Music:      parseSample(doc.Get("music"), baseDir),
		Linger:     doc.Get("linger").Bool(),
	}

	var err error
	if cfg.StartLeft, err = parsePose(doc.Get("start.left"), cast); err != nil {
		return nil, fmt.Errorf("scene %q start.left: %w", id, err)
	}
	if cfg.StartRight, err = parsePose(doc.Get("start.right"), cast); err != nil {
		return nil, fmt.Errorf("scene %q start.right: %w", id, err)
	}

	for i, l := range doc.Get("lines").Array() {
		line, err := parseLine(l, cast, baseDir, defaultRate)
		if err != nil {
			return nil, fmt.Errorf("scene %q line %d: %w", id, i, err)
		}
		if line.Speaker != nil {
			if _, ok := line.Speaker.Portrait(line.Emotion); !ok {
				logger.Warn("line emotion has no expression",
					"scene", id, "line", i, "speaker", line.Speaker.Name, "emotion", line.Emotion)
			}
		}
		cfg.Lines = append(cfg.Lines, line)
	}
	return scene.New(cfg)
}

// LoadDir loads cast.json and every scene file in dir, ordered by scene id.
func LoadDir(dir string, defaultRate float64, logger *slog.Logger) (Library, error) {
	data, err := os.ReadFile(filepath.Join(dir, CastFile))
	if err != nil {
		return Library{}, fmt.Errorf("read cast: %w", err)
	}
	cast, err := ParseCast(data, dir, logger)
	if err != nil {
		return Library{}, err
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*"+SceneSuffix))
	if err != nil {
		return Library{}, fmt.Errorf("list scenes: %w", err)
	}
	lib := Library{Cast: cast}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return Library{}, fmt.Errorf("read scene: %w", err)
		}
		base := filepath.Base(p)
		sc, err := parseScene(data, strings.TrimSuffix(base, SceneSuffix), cast, dir, defaultRate, logger)
		if err != nil {
			return Library{}, fmt.Errorf("%s: %w", base, err)
		}
		logger.Debug("loaded scene", "scene", sc.ID(), "lines", sc.Len())
		lib.Scenes = append(lib.Scenes, sc)
	}
	sort.SliceStable(lib.Scenes, func(i, j int) bool { return lib.Scenes[i].ID() < lib.Scenes[j].ID() })
	return lib, nil
}

func parseLine(v gjson.Result, cast Cast, baseDir string, defaultRate float64) (scene.Line, error) {
	line := scene.Line{
		Emotion:        v.Get("emotion").String(),
		DisappearAfter: v.Get("disappear").Bool(),
		Voice:          parseSample(v.Get("voice"), baseDir),
		Text:           norm.NFC.String(v.Get("text").String()),
		RevealRate:     defaultRate,
	}
	if r := v.Get("rate"); r.Exists() {
		line.RevealRate = r.Float()
	}
	if s := v.Get("side"); s.Exists() {
		side, err := scene.ParseSide(s.String())
		if err != nil {
			return scene.Line{}, err
		}
		line.Side = side
	}
	if id := v.Get("speaker").String(); id != "" {
		p, ok := cast[id]
		if !ok {
			return scene.Line{}, fmt.Errorf("speaker %q: %w", id, ErrUnknownCharacter)
		}
		line.Speaker = p
		if line.Emotion == "" {
			line.Emotion = p.DefaultEmotion()
		}
	}
	return line, nil
}

func parsePose(v gjson.Result, cast Cast) (scene.Pose, error) {
	if !v.Exists() {
		return scene.Pose{}, nil
	}
	id := v.Get("character").String()
	p, ok := cast[id]
	if !ok {
		return scene.Pose{}, fmt.Errorf("character %q: %w", id, ErrUnknownCharacter)
	}
	emotion := v.Get("emotion").String()
	if emotion == "" {
		emotion = p.DefaultEmotion()
	}
	return scene.Pose{Character: p, Emotion: emotion}, nil
}

func parseImage(v gjson.Result) asset.Image {
	switch {
	case v.Type == gjson.String:
		return asset.Image{Glyph: v.String()}
	case v.IsObject():
		return asset.Image{Name: v.Get("name").String(), Glyph: v.Get("glyph").String()}
	}
	return asset.Image{}
}

func parseSample(v gjson.Result, baseDir string) asset.Sample {
	if !v.IsObject() {
		return asset.Sample{}
	}
	s := asset.Sample{
		Name: v.Get("name").String(),
		Tone: v.Get("tone").Float(),
	}
	if p := v.Get("path").String(); p != "" {
		if !filepath.IsAbs(p) && baseDir != "" {
			p = filepath.Join(baseDir, p)
		}
		s.Path = p
	}
	if l := v.Get("length"); l.Exists() {
		s.Length = parseLength(l)
	}
	return s
}

// parseLength accepts "35ms" style strings or a number of milliseconds.
func parseLength(v gjson.Result) time.Duration {
	if v.Type == gjson.Number {
		return time.Duration(v.Float() * float64(time.Millisecond))
	}
	d, err := time.ParseDuration(v.String())
	if err != nil {
		return 0
	}
	return d
}
