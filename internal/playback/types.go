package playback

import (
	"time"

	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/scene"
)

// Phase is the engine's session state.
type Phase uint8

const (
	Idle Phase = iota
	Presenting
	Ended
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "Idle"
	case Presenting:
		return "Presenting"
	case Ended:
		return "Ended"
	default:
		return "Unknown"
	}
}

// RevealState tracks the typewriter for the current line.
type RevealState uint8

const (
	RevealIdle RevealState = iota
	Revealing
	RevealComplete
)

func (r RevealState) String() string {
	switch r {
	case RevealIdle:
		return "Idle"
	case Revealing:
		return "Revealing"
	case RevealComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// Visibility is how a speaker slot is drawn.
type Visibility uint8

const (
	Transparent Visibility = iota
	Greyed
	Opaque
)

func (v Visibility) String() string {
	switch v {
	case Transparent:
		return "transparent"
	case Greyed:
		return "greyed"
	case Opaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Slot is the engine's view of one speaker position.
type Slot struct {
	Portrait   asset.Image
	Name       string
	Visibility Visibility
}

// Snapshot is a copy of the playback state, safe to keep.
type Snapshot struct {
	Phase   Phase
	Index   int
	Reveal  RevealState
	Visible int // runes shown of the current line
	Length  int // runes in the current line
	Left    Slot
	Right   Slot
}

// Slot returns the state of side.
func (s Snapshot) Slot(side scene.Side) Slot {
	if side == scene.Left {
		return s.Left
	}
	return s.Right
}

// Display receives the visual commands. Calls arrive in order, one at a
// time, and must not call back into the Engine.
type Display interface {
	SetBackground(img asset.Image, backdrop asset.Color)
	SetSlotPortrait(side scene.Side, img asset.Image)
	SetSlotVisibility(side scene.Side, v Visibility)
	SetNameplate(side scene.Side, name string)
	SetDisplayedText(text string, visible int)
}

// Audio receives the sound commands. Playing on a channel replaces whatever
// that channel was playing.
type Audio interface {
	PlayAudio(ch asset.Channel, s asset.Sample)
	StopAudio(ch asset.Channel)
}

// Hooks are the scene-start and scene-end signals. They run while the engine
// is locked; a hook that needs to drive the engine must do so asynchronously.
type Hooks struct {
	OnSceneStart func()
	OnSceneEnd   func()
}

// Timer is a cancellable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules the reveal ticks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// WallClock schedules on real time.
type WallClock struct{}

// AfterFunc wraps time.AfterFunc.
func (WallClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
