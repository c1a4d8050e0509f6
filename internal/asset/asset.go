// Package asset holds the resolved, in-memory media references that flow
// between authored content and the render/audio collaborators.
package asset

import (
	"fmt"
	"time"
)

// Image is a portrait or background. Terminals draw it as a single glyph
// (usually an emoji); Name identifies it in logs and mirror frames.
// The zero value means "no image".
type Image struct {
	Name  string `json:"name,omitempty"`
	Glyph string `json:"glyph,omitempty"`
}

// Valid reports whether the image refers to anything drawable.
func (i Image) Valid() bool { return i.Glyph != "" || i.Name != "" }

// Sample is an audio clip: either a wav file on disk (Path) or a synthesized
// tone of Length at Tone Hz. The zero value means "no sample".
type Sample struct {
	Name   string        `json:"name,omitempty"`
	Path   string        `json:"path,omitempty"`
	Tone   float64       `json:"tone,omitempty"`
	Length time.Duration `json:"length,omitempty"`
}

// Valid reports whether the sample can produce sound.
func (s Sample) Valid() bool { return s.Path != "" || s.Tone > 0 }

// Color is a straight-alpha RGBA colour.
type Color struct {
	R, G, B, A uint8
}

// Hex formats the colour as #rrggbb, dropping alpha.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Channel selects an audio output line. Starting a clip on a channel stops
// whatever was playing there.
type Channel uint8

const (
	Voice Channel = iota
	Music
)

func (c Channel) String() string {
	switch c {
	case Voice:
		return "voice"
	case Music:
		return "music"
	default:
		return "unknown"
	}
}
