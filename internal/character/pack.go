// Package character defines CharacterPack: the emotion → portrait lookup and
// default voice blip for one speaker.
package character

import "emoji-dialogue/internal/asset"

// PlaceholderEmotion is the single emotion given to a pack authored without any.
const PlaceholderEmotion = "EMPTY"

// Pack is immutable once built and safe to share across scenes and sessions.
type Pack struct {
	Name string

	emotions    []string
	expressions map[string]asset.Image
	voice       asset.Sample
}

// NewPack builds a pack. emotions is the ordered authoring list; its first
// entry is the default. expressions need not cover every emotion.
func NewPack(name string, emotions []string, expressions map[string]asset.Image, voice asset.Sample) *Pack {
	p := &Pack{
		Name:        name,
		emotions:    append([]string(nil), emotions...),
		expressions: make(map[string]asset.Image, len(expressions)),
		voice:       voice,
	}
	if len(p.emotions) == 0 {
		p.emotions = []string{PlaceholderEmotion}
	}
	for emotion, img := range expressions {
		p.expressions[emotion] = img
	}
	return p
}

// Emotions returns a copy of the ordered emotion list.
func (p *Pack) Emotions() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.emotions...)
}

// DefaultEmotion is the first authored emotion.
func (p *Pack) DefaultEmotion() string {
	if p == nil {
		return PlaceholderEmotion
	}
	return p.emotions[0]
}

// HasEmotion reports whether emotion is in the authoring list.
func (p *Pack) HasEmotion(emotion string) bool {
	if p == nil {
		return false
	}
	for _, e := range p.emotions {
		if e == emotion {
			return true
		}
	}
	return false
}

// Portrait returns the expression for emotion. A miss (or a nil pack) is not
// an error: the caller treats it as "speaker not shown".
func (p *Pack) Portrait(emotion string) (asset.Image, bool) {
	if p == nil {
		return asset.Image{}, false
	}
	img, ok := p.expressions[emotion]
	if !ok || !img.Valid() {
		return asset.Image{}, false
	}
	return img, true
}

// DefaultVoice returns the pack's generic voice blip, if any.
func (p *Pack) DefaultVoice() (asset.Sample, bool) {
	if p == nil || !p.voice.Valid() {
		return asset.Sample{}, false
	}
	return p.voice, true
}

// Unmapped lists authored emotions that have no expression, in authoring order.
func (p *Pack) Unmapped() []string {
	if p == nil {
		return nil
	}
	var out []string
	for _, e := range p.emotions {
		if _, ok := p.Portrait(e); !ok {
			out = append(out, e)
		}
	}
	return out
}
