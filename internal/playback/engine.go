// Package playback is the dialogue state machine. An Engine walks a scene
// line by line, runs the timed text reveal with its voice blips, and works
// out which speaker slots are lit, greyed or gone. It is driven by two
// stimuli only: Advance calls and the reveal timer it schedules itself.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode"

	"emoji-dialogue/internal/asset"
	"emoji-dialogue/internal/scene"
)

// DefaultBlipStride is the number of letters between voice blips.
const DefaultBlipStride = 2

var (
	// ErrEmptyScene is returned by Start for a scene with no lines.
	ErrEmptyScene = errors.New("scene has no lines")
	// ErrSceneActive is returned by Start while another scene is presenting.
	ErrSceneActive = errors.New("a scene is already presenting")
)

// Options configures an Engine. Nil collaborators are replaced by no-ops and
// a nil Clock by WallClock.
type Options struct {
	Display    Display
	Audio      Audio
	Clock      Clock
	Hooks      Hooks
	BlipStride int
	Logger     *slog.Logger
}

// cadence is how the current line uses the voice channel.
type cadence uint8

const (
	cadenceSilent     cadence = iota
	cadenceSingleShot         // the line's own clip, played once
	cadenceBlip               // the speaker's blip every stride letters
)

// Engine owns one playback session at a time. All methods are safe to call
// from any goroutine; they and the timer callbacks are serialized.
type Engine struct {
	mu sync.Mutex

	display Display
	audio   Audio
	clock   Clock
	hooks   Hooks
	stride  int
	logger  *slog.Logger

	scene *scene.Scene
	phase Phase
	index int
	slots [2]Slot

	line     scene.Line
	runes    []rune
	visible  int
	reveal   RevealState
	interval time.Duration
	timer    Timer
	gen      uint64 // bumped on every new or cancelled reveal

	voice         cadence
	blip          asset.Sample
	sinceLastBlip int
}

// New creates an idle Engine.
func New(opts Options) *Engine {
	e := &Engine{
		display: opts.Display,
		audio:   opts.Audio,
		clock:   opts.Clock,
		hooks:   opts.Hooks,
		stride:  opts.BlipStride,
		logger:  opts.Logger,
	}
	if e.display == nil {
		e.display = MultiDisplay()
	}
	if e.audio == nil {
		e.audio = MultiAudio()
	}
	if e.clock == nil {
		e.clock = WallClock{}
	}
	if e.stride <= 0 {
		e.stride = DefaultBlipStride
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Start stages sc and presents its first line.
func (e *Engine) Start(sc *scene.Scene) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if sc == nil || sc.Len() == 0 {
		return ErrEmptyScene
	}
	if e.phase == Presenting {
		return fmt.Errorf("start %q: %w", sc.ID(), ErrSceneActive)
	}

	e.scene = sc
	e.index = 0
	e.reveal = RevealIdle
	e.stage(sc.Staging())
	e.phase = Presenting
	e.logger.Debug("scene start", "scene", sc.ID(), "lines", sc.Len())

	if e.hooks.OnSceneStart != nil {
		e.hooks.OnSceneStart()
	}
	return e.present(0)
}

// Advance is one distinct "next" press. While a line is revealing it
// finishes the reveal and reports true; once complete it moves to the next
// line or ends the scene. Outside a session it does nothing.
func (e *Engine) Advance() (interrupted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Presenting {
		return false
	}
	if e.reveal == Revealing {
		e.cancelReveal()
		e.visible = len(e.runes)
		e.reveal = RevealComplete
		e.display.SetDisplayedText(e.line.Text, e.visible)
		return true
	}

	e.index++
	if e.index >= e.scene.Len() {
		e.end()
		return false
	}
	if err := e.present(e.index); err != nil {
		e.logger.Error("present line", "scene", e.scene.ID(), "index", e.index, "error", err)
	}
	return false
}

// Stop abandons the current session without the scene-end signal, e.g. when
// the host quits mid-scene. The engine returns to Idle.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != Presenting {
		return
	}
	e.cancelReveal()
	e.audio.StopAudio(asset.Voice)
	e.audio.StopAudio(asset.Music)
	e.phase = Idle
	e.reveal = RevealIdle
	e.scene = nil
}

// State returns a copy of the current playback state.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Phase:   e.phase,
		Index:   e.index,
		Reveal:  e.reveal,
		Visible: e.visible,
		Length:  len(e.runes),
		Left:    e.slots[scene.Left],
		Right:   e.slots[scene.Right],
	}
}

// Scene returns the scene being presented, or nil.
func (e *Engine) Scene() *scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

// stage applies the scene's one-off setup. A staged portrait waits greyed
// for its first line; an empty slot starts transparent.
func (e *Engine) stage(st scene.Staging) {
	e.display.SetBackground(st.Background, st.Backdrop)
	e.stageSlot(scene.Left, st.Left, st.LeftName)
	e.stageSlot(scene.Right, st.Right, st.RightName)
	if st.HasMusic() {
		e.audio.PlayAudio(asset.Music, st.Music)
	}
}

func (e *Engine) stageSlot(side scene.Side, img asset.Image, name string) {
	v := Transparent
	if img.Valid() {
		v = Greyed
	}
	e.setPortrait(side, img, name)
	e.setVisibility(side, v)
}

// present shows line i: speaker slot, silent slot, voice, then the reveal.
func (e *Engine) present(i int) error {
	line, err := e.scene.LineAt(i)
	if err != nil {
		return err
	}
	e.line = line

	speaking, silent := line.Side, line.Side.Other()

	img, ok := line.Speaker.Portrait(line.Emotion)
	name := ""
	if line.Speaker != nil {
		name = line.Speaker.Name
	}
	e.setPortrait(speaking, img, name)
	if ok {
		e.setVisibility(speaking, Opaque)
	} else {
		e.setVisibility(speaking, Transparent)
	}

	quiet := Greyed
	if i > 0 {
		prev, err := e.scene.LineAt(i - 1)
		if err != nil {
			return err
		}
		if prev.DisappearAfter && prev.Side != line.Side {
			quiet = Transparent
		}
	}
	// A vanished character does not come back greyed.
	if e.slots[silent].Visibility == Transparent {
		quiet = Transparent
	}
	e.setVisibility(silent, quiet)

	e.audio.StopAudio(asset.Voice)
	e.voice = cadenceSilent
	e.blip = asset.Sample{}
	if line.Voice.Valid() {
		e.audio.PlayAudio(asset.Voice, line.Voice)
		e.voice = cadenceSingleShot
	} else if s, ok := line.Speaker.DefaultVoice(); ok {
		e.voice = cadenceBlip
		e.blip = s
	}

	e.beginReveal(line)
	return nil
}

func (e *Engine) beginReveal(line scene.Line) {
	e.cancelReveal()
	e.runes = []rune(line.Text)
	e.sinceLastBlip = 0
	e.interval = time.Duration(float64(time.Second) / line.RevealRate)

	if len(e.runes) == 0 {
		e.visible = 0
		e.reveal = RevealComplete
		e.display.SetDisplayedText(line.Text, 0)
		return
	}

	e.visible = 1
	e.reveal = Revealing
	e.display.SetDisplayedText(line.Text, 1)
	if e.voice == cadenceBlip && unicode.IsLetter(e.runes[0]) {
		e.audio.PlayAudio(asset.Voice, e.blip)
	}
	if e.visible == len(e.runes) {
		e.reveal = RevealComplete
		return
	}
	e.schedule()
}

func (e *Engine) schedule() {
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.interval, func() { e.tick(gen) })
}

// tick reveals one more rune. Callbacks from a cancelled reveal see a newer
// generation and do nothing.
func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen || e.reveal != Revealing {
		return
	}
	e.timer = nil
	e.visible++
	e.display.SetDisplayedText(e.line.Text, e.visible)

	if e.voice == cadenceBlip && unicode.IsLetter(e.runes[e.visible-1]) {
		e.sinceLastBlip++
		if e.sinceLastBlip >= e.stride {
			e.sinceLastBlip = 0
			e.audio.PlayAudio(asset.Voice, e.blip)
		}
	}

	if e.visible >= len(e.runes) {
		e.reveal = RevealComplete
		return
	}
	e.schedule()
}

func (e *Engine) cancelReveal() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) end() {
	e.cancelReveal()
	e.audio.StopAudio(asset.Voice)
	e.audio.StopAudio(asset.Music)
	if !e.scene.Linger() {
		for _, side := range []scene.Side{scene.Left, scene.Right} {
			e.setPortrait(side, asset.Image{}, "")
			e.setVisibility(side, Transparent)
		}
	}
	e.index = e.scene.Len()
	e.phase = Ended
	e.reveal = RevealIdle
	e.logger.Debug("scene end", "scene", e.scene.ID())

	if e.hooks.OnSceneEnd != nil {
		e.hooks.OnSceneEnd()
	}
}

func (e *Engine) setPortrait(side scene.Side, img asset.Image, name string) {
	e.slots[side].Portrait = img
	e.slots[side].Name = name
	e.display.SetSlotPortrait(side, img)
	e.display.SetNameplate(side, name)
}

func (e *Engine) setVisibility(side scene.Side, v Visibility) {
	e.slots[side].Visibility = v
	e.display.SetSlotVisibility(side, v)
}
