// Package scene defines DialogueLine and DialogueScene: the ordered,
// read-only line sequence plus the scene-level staging data.
package scene

import (
	"errors"
	"fmt"
	"math"
	"time"

	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/character"
)

var (
	// ErrIndexOutOfRange means a caller asked for a line the scene does not have.
	ErrIndexOutOfRange = errors.New("line index out of range")
	// ErrInvalidRevealRate means a line's rate is not a positive finite
	// number, or is so small that one step overflows time.Duration.
	ErrInvalidRevealRate = errors.New("reveal rate must be positive and finite")
)

// FallbackBackdrop is staged when a scene has no background image.
var FallbackBackdrop = asset.Color{R: 0, G: 0, B: 0, A: 160}

// Side is one of the two on-screen speaker slots.
type Side uint8

const (
	Left Side = iota
	Right
)

// Other returns the opposite slot.
func (s Side) Other() Side {
	if s == Left {
		return Right
	}
	return Left
}

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// ParseSide accepts "left" or "right".
func ParseSide(s string) (Side, error) {
	switch s {
	case "left", "Left", "L", "l":
		return Left, nil
	case "right", "Right", "R", "r":
		return Right, nil
	}
	return Left, fmt.Errorf("unknown side %q", s)
}

// Line is one authored dialogue line.
type Line struct {
	Speaker        *character.Pack // nil: nobody shown in the slot
	Emotion        string
	Side           Side
	DisappearAfter bool         // vanish once a line on the other side follows
	Voice          asset.Sample // overrides the speaker's blip when valid
	Text           string
	RevealRate     float64 // runes per second
}

// Pose is a character shown in a slot before the first line.
type Pose struct {
	Character *character.Pack
	Emotion   string
}

// Portrait resolves the pose; a zero pose has none.
func (p Pose) Portrait() (asset.Image, bool) {
	return p.Character.Portrait(p.Emotion)
}

// Config is the authored form of a scene.
type Config struct {
	ID         string
	Title      string
	Lines      []Line
	Background asset.Image
	Music      asset.Sample
	StartLeft  Pose
	StartRight Pose
	Linger     bool // keep the last speaker on screen after the scene ends
}

// Staging describes the one-off setup applied when a scene starts.
type Staging struct {
	Left       asset.Image // zero: slot starts empty
	Right      asset.Image
	LeftName   string
	RightName  string
	Background asset.Image
	Backdrop   asset.Color // used when Background is not valid
	Music      asset.Sample
}

// HasMusic reports whether the staging starts background music.
func (s Staging) HasMusic() bool { return s.Music.Valid() }

// Scene is immutable after New and may be shared by concurrent players.
type Scene struct {
	id      string
	title   string
	lines   []Line
	linger  bool
	staging Staging
}

// New validates cfg and builds a Scene.
func New(cfg Config) (*Scene, error) {
	for i, l := range cfg.Lines {
		if !ValidRevealRate(l.RevealRate) {
			return nil, fmt.Errorf("scene %q line %d: %w (got %v)", cfg.ID, i, ErrInvalidRevealRate, l.RevealRate)
		}
	}
	s := &Scene{
		id:     cfg.ID,
		title:  cfg.Title,
		lines:  append([]Line(nil), cfg.Lines...),
		linger: cfg.Linger,
	}
	s.staging = stagingFor(cfg)
	return s, nil
}

// ValidRevealRate reports whether r runes per second gives a reveal step
// that time.Duration can hold.
func ValidRevealRate(r float64) bool {
	if !(r > 0) || math.IsInf(r, 1) {
		return false
	}
	return float64(time.Second)/r < math.MaxInt64
}

func stagingFor(cfg Config) Staging {
	st := Staging{
		Background: cfg.Background,
		Music:      cfg.Music,
	}
	if !cfg.Background.Valid() {
		st.Backdrop = FallbackBackdrop
	}
	if img, ok := cfg.StartLeft.Portrait(); ok {
		st.Left = img
		st.LeftName = cfg.StartLeft.Character.Name
	}
	if img, ok := cfg.StartRight.Portrait(); ok {
		st.Right = img
		st.RightName = cfg.StartRight.Character.Name
	}
	return st
}

// ID returns the scene identifier.
func (s *Scene) ID() string { return s.id }

// Title returns the display title, falling back to the ID.
func (s *Scene) Title() string {
	if s.title == "" {
		return s.id
	}
	return s.title
}

// Len is the number of lines.
func (s *Scene) Len() int { return len(s.lines) }

// Linger reports whether the last speaker stays on screen after the end.
func (s *Scene) Linger() bool { return s.linger }

// LineAt returns line i, or ErrIndexOutOfRange.
func (s *Scene) LineAt(i int) (Line, error) {
	if i < 0 || i >= len(s.lines) {
		return Line{}, fmt.Errorf("scene %q: line %d of %d: %w", s.id, i, len(s.lines), ErrIndexOutOfRange)
	}
	return s.lines[i], nil
}

// Staging returns the precomputed start-of-scene setup.
func (s *Scene) Staging() Staging { return s.staging }
