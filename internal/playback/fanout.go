package playback

import (
	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/scene"
)

// MultiDisplay duplicates every command to each display, in order.
func MultiDisplay(ds ...Display) Display {
	out := make(multiDisplay, 0, len(ds))
	for _, d := range ds {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

type multiDisplay []Display

func (m multiDisplay) SetBackground(img asset.Image, backdrop asset.Color) {
	for _, d := range m {
		d.SetBackground(img, backdrop)
	}
}

func (m multiDisplay) SetSlotPortrait(side scene.Side, img asset.Image) {
	for _, d := range m {
		d.SetSlotPortrait(side, img)
	}
}

func (m multiDisplay) SetSlotVisibility(side scene.Side, v Visibility) {
	for _, d := range m {
		d.SetSlotVisibility(side, v)
	}
}

func (m multiDisplay) SetNameplate(side scene.Side, name string) {
	for _, d := range m {
		d.SetNameplate(side, name)
	}
}

func (m multiDisplay) SetDisplayedText(text string, visible int) {
	for _, d := range m {
		d.SetDisplayedText(text, visible)
	}
}

// MultiAudio duplicates every command to each audio sink.
func MultiAudio(as ...Audio) Audio {
	out := make(multiAudio, 0, len(as))
	for _, a := range as {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

type multiAudio []Audio

func (m multiAudio) PlayAudio(ch asset.Channel, s asset.Sample) {
	for _, a := range m {
		a.PlayAudio(ch, s)
	}
}

func (m multiAudio) StopAudio(ch asset.Channel) {
	for _, a := range m {
		a.StopAudio(ch)
	}
}
