package assets

import (
	"fmt"
	"time"

	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/character"
	"emoji-dialogue/internal/scene"
)

// DefaultRevealRate is the characters-per-second rate of the built-in scenes.
const DefaultRevealRate = 30

// LineDef is one authored line. Speaker is a character id or "" for narration.
type LineDef struct {
	Speaker   string
	Emotion   string
	Side      scene.Side
	Text      string
	Disappear bool
	Rate      float64 // 0: DefaultRevealRate
	Tone      float64 // >0: a one-off voice clip instead of blips
}

// SceneDef is one authored scene.
type SceneDef struct {
	ID, Title  string
	Background string // glyph; "" for the translucent backdrop
	MusicTone  float64
	StartLeft  [2]string // character id, emotion
	StartRight [2]string
	Linger     bool
	Lines      []LineDef
}

// SceneDefs is the built-in scene list, in menu order.
var SceneDefs = []SceneDef{
	{
		ID:         "gate",
		Title:      "The Emberveil Gate",
		Background: "🏮",
		StartLeft:  [2]string{Mira, ""},
		StartRight: [2]string{Orrin, "stern"},
		Lines: []LineDef{
			{Speaker: Orrin, Emotion: "stern", Side: scene.Right, Text: "Gate's shut after dusk. Spire orders."},
			{Speaker: Mira, Emotion: "smug", Side: scene.Left, Text: "Then it's lucky I arrived at dusk exactly."},
			{Speaker: Orrin, Emotion: "laughing", Side: scene.Right, Text: "Ha! That's a new one. Still no."},
			{Speaker: Mira, Emotion: "worried", Side: scene.Left, Text: "Orrin… the lanterns on the Spire went dark an hour ago."},
			{Speaker: Orrin, Emotion: "tired", Side: scene.Right, Text: "I know. I've been staring at them since.", Rate: 18},
			{Speaker: Orrin, Emotion: "neutral", Side: scene.Right, Text: "Go on, then. Quietly."},
		},
	},
	{
		ID:        "warden",
		Title:     "A Word with the Warden",
		MusicTone: 110,
		StartLeft: [2]string{Mira, "neutral"},
		Lines: []LineDef{
			{Speaker: Pell, Emotion: "alert", Side: scene.Right, Text: "HALT. STATE YOUR PURPOSE.", Tone: 220},
			{Speaker: Mira, Emotion: "happy", Side: scene.Left, Text: "Sightseeing!"},
			{Speaker: Pell, Emotion: "idle", Side: scene.Right, Text: "…PURPOSE ACCEPTED. ENJOY THE VIEW.", Tone: 180, Disappear: true},
			{Speaker: Mira, Emotion: "smug", Side: scene.Left, Text: "Works every time."},
			{Text: "Somewhere above, a lens turns toward the city.", Rate: 20},
		},
	},
	{
		ID:         "rooftop",
		Title:      "Rooftops, After",
		Background: "🌃",
		Linger:     true,
		Lines: []LineDef{
			{Speaker: Mira, Emotion: "neutral", Side: scene.Left, Text: "You came up here too?"},
			{Speaker: Orrin, Emotion: "neutral", Side: scene.Right, Text: "Best view of the Spire in Emberveil."},
			{Speaker: Mira, Emotion: "happy", Side: scene.Left, Text: "The lanterns are back. 🏮🏮🏮"},
			{Speaker: Orrin, Emotion: "laughing", Side: scene.Right, Text: "Told you. Nothing to worry about."},
		},
	},
}

// Scenes builds the built-in scenes against the built-in cast.
func Scenes() ([]*scene.Scene, error) {
	cast := Cast()
	out := make([]*scene.Scene, 0, len(SceneDefs))
	for _, def := range SceneDefs {
		cfg := scene.Config{
			ID:     def.ID,
			Title:  def.Title,
			Linger: def.Linger,
		}
		if def.Background != "" {
			cfg.Background = asset.Image{Name: def.ID + "-bg", Glyph: def.Background}
		}
		if def.MusicTone > 0 {
			cfg.Music = asset.Sample{Name: def.ID + "-theme", Tone: def.MusicTone}
		}
		cfg.StartLeft = pose(cast, def.StartLeft)
		cfg.StartRight = pose(cast, def.StartRight)

		for i, l := range def.Lines {
			line := scene.Line{
				Emotion:        l.Emotion,
				Side:           l.Side,
				DisappearAfter: l.Disappear,
				Text:           l.Text,
				RevealRate:     l.Rate,
			}
			if line.RevealRate == 0 {
				line.RevealRate = DefaultRevealRate
			}
			if l.Speaker != "" {
				p, ok := cast[l.Speaker]
				if !ok {
					return nil, fmt.Errorf("scene %q line %d: unknown speaker %q", def.ID, i, l.Speaker)
				}
				line.Speaker = p
			}
			if l.Tone > 0 {
				// The clip lasts as long as the reveal.
				secs := float64(len([]rune(l.Text))) / line.RevealRate
				line.Voice = asset.Sample{
					Name:   fmt.Sprintf("%s-%d", def.ID, i),
					Tone:   l.Tone,
					Length: time.Duration(secs * float64(time.Second)),
				}
			}
			cfg.Lines = append(cfg.Lines, line)
		}

		sc, err := scene.New(cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

func pose(cast map[string]*character.Pack, p [2]string) scene.Pose {
	if p[0] == "" {
		return scene.Pose{}
	}
	c := cast[p[0]]
	emotion := p[1]
	if emotion == "" {
		emotion = c.DefaultEmotion()
	}
	return scene.Pose{Character: c, Emotion: emotion}
}
