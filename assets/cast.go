// Package assets holds the built-in demo content: a small cast and a few
// scenes set in Emberveil, at the foot of the Prismatic Spire.
package assets

import (
	"time"

	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/character"
)

// Character ids.
const (
	Mira  = "mira"
	Orrin = "orrin"
	Pell  = "pell"
)

// Voice blips are synthesized tones, one pitch per speaker.
const blipLength = 40 * time.Millisecond

// CharacterDef is one authored cast member.
type CharacterDef struct {
	ID       string
	Name     string
	Emotions []string // first is the default
	Faces    map[string]string
	Tone     float64 // voice blip pitch in Hz; 0 for a silent character
}

// Characters is the built-in cast.
var Characters = []CharacterDef{
	{
		ID:       Mira,
		Name:     "Mira",
		Emotions: []string{"neutral", "happy", "worried", "smug"},
		Faces: map[string]string{
			"neutral": "🧙",
			"happy":   "😄",
			"worried": "😟",
			"smug":    "😏",
		},
		Tone: 880,
	},
	{
		ID:       Orrin,
		Name:     "Orrin",
		Emotions: []string{"neutral", "stern", "laughing", "tired"},
		Faces: map[string]string{
			"neutral":  "🧔",
			"stern":    "😠",
			"laughing": "😂",
			// tired has no face yet; the slot goes blank
		},
		Tone: 440,
	},
	{
		// The Warden speaks through its own clip, never through blips.
		ID:       Pell,
		Name:     "Warden Pell",
		Emotions: []string{"idle", "alert"},
		Faces: map[string]string{
			"idle":  "🤖",
			"alert": "🚨",
		},
	},
}

// Cast builds a pack for every built-in character, keyed by id.
func Cast() map[string]*character.Pack {
	cast := make(map[string]*character.Pack, len(Characters))
	for _, c := range Characters {
		faces := make(map[string]asset.Image, len(c.Faces))
		for emotion, glyph := range c.Faces {
			faces[emotion] = asset.Image{Name: c.ID + "-" + emotion, Glyph: glyph}
		}
		var voice asset.Sample
		if c.Tone > 0 {
			voice = asset.Sample{Name: c.ID + "-blip", Tone: c.Tone, Length: blipLength}
		}
		cast[c.ID] = character.NewPack(c.Name, c.Emotions, faces, voice)
	}
	return cast
}
