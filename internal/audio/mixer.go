// Package audio plays the Voice and Music channels through a beep mixer.
// Each channel holds at most one clip; playing a new one drops the old one.
package audio

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"emoji-dialogue/internal/asset"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const (
	DefaultSampleRate = 44100
	DefaultBufferSize = 2048
	// DefaultBlipLength applies to tone samples authored without a length.
	DefaultBlipLength = 40 * time.Millisecond

	resampleQuality = 4
)

// Options configures a Mixer.
type Options struct {
	SampleRate int
	BufferSize int     // speaker buffer, in samples
	Volume     float64 // base-2 exponent; 0 leaves levels unchanged
	Logger     *slog.Logger
}

// Mixer implements the engine's audio collaborator. It is itself a
// beep.Streamer: Attach feeds it to the speaker, tests pull from it directly.
type Mixer struct {
	mu       sync.Mutex
	rate     beep.SampleRate
	bufSize  int
	logger   *slog.Logger
	mix      *beep.Mixer
	out      beep.Streamer
	channels [2]*beep.Ctrl
	attached bool

	cacheMu sync.Mutex
	cache   map[string]*beep.Buffer
}

// NewMixer builds a silent mixer. Nothing reaches the speaker until Attach.
func NewMixer(opts Options) *Mixer {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Mixer{
		rate:    beep.SampleRate(opts.SampleRate),
		bufSize: opts.BufferSize,
		logger:  opts.Logger,
		mix:     &beep.Mixer{},
		cache:   make(map[string]*beep.Buffer),
	}
	m.out = m.mix
	if opts.Volume != 0 {
		m.out = &effects.Volume{Streamer: m.mix, Base: 2, Volume: opts.Volume}
	}
	return m
}

// SampleRate is the output rate every clip is resampled to.
func (m *Mixer) SampleRate() beep.SampleRate { return m.rate }

// Attach starts the hardware speaker and plays the mixer on it.
func (m *Mixer) Attach() error {
	if err := speaker.Init(m.rate, m.bufSize); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m)
	m.mu.Lock()
	m.attached = true
	m.mu.Unlock()
	return nil
}

// Close stops both channels and releases the speaker if attached.
func (m *Mixer) Close() {
	m.StopAudio(asset.Voice)
	m.StopAudio(asset.Music)
	m.mu.Lock()
	attached := m.attached
	m.attached = false
	m.mu.Unlock()
	if attached {
		speaker.Clear()
		speaker.Close()
	}
}

// PlayAudio replaces whatever ch is playing with s. A sample that cannot be
// loaded is logged and leaves the channel silent.
func (m *Mixer) PlayAudio(ch asset.Channel, s asset.Sample) {
	if int(ch) >= len(m.channels) {
		return
	}
	st, err := m.streamerFor(ch, s)
	if err != nil {
		m.logger.Warn("audio: cannot play sample", "channel", ch, "sample", s.Name, "error", err)
		m.StopAudio(ch)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(ch)
	ctrl := &beep.Ctrl{Streamer: st}
	m.channels[ch] = ctrl
	m.mix.Add(ctrl)
}

// StopAudio silences ch.
func (m *Mixer) StopAudio(ch asset.Channel) {
	if int(ch) >= len(m.channels) {
		return
	}
	m.mu.Lock()
	m.stopLocked(ch)
	m.mu.Unlock()
}

// A Ctrl without a streamer reports drained, so the beep mixer drops it on
// its next pass.
func (m *Mixer) stopLocked(ch asset.Channel) {
	if c := m.channels[ch]; c != nil {
		c.Streamer = nil
		m.channels[ch] = nil
	}
}

// Stream implements beep.Streamer.
func (m *Mixer) Stream(samples [][2]float64) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.Stream(samples)
}

// Err implements beep.Streamer.
func (m *Mixer) Err() error { return nil }

func (m *Mixer) streamerFor(ch asset.Channel, s asset.Sample) (beep.Streamer, error) {
	switch {
	case s.Path != "":
		buf, err := m.load(s.Path)
		if err != nil {
			return nil, err
		}
		clip := buf.Streamer(0, buf.Len())
		if ch == asset.Music {
			return beep.Loop2(clip)
		}
		return clip, nil
	case s.Tone > 0:
		tone, err := generators.SineTone(m.rate, s.Tone)
		if err != nil {
			return nil, fmt.Errorf("tone %vHz: %w", s.Tone, err)
		}
		if ch == asset.Music {
			return tone, nil
		}
		length := s.Length
		if length <= 0 {
			length = DefaultBlipLength
		}
		return beep.Take(m.rate.N(length), tone), nil
	}
	return nil, fmt.Errorf("sample %q has neither path nor tone", s.Name)
}

// load decodes a wav file once and keeps it resampled to the mixer rate.
func (m *Mixer) load(path string) (*beep.Buffer, error) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	if buf, ok := m.cache[path]; ok {
		return buf, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	dec, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer dec.Close()

	var src beep.Streamer = dec
	if format.SampleRate != m.rate {
		src = beep.Resample(resampleQuality, format.SampleRate, m.rate, dec)
	}
	buf := beep.NewBuffer(beep.Format{SampleRate: m.rate, NumChannels: 2, Precision: 2})
	buf.Append(src)
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	m.cache[path] = buf
	return buf, nil
}

// Discard accepts every command and plays nothing. SSH sessions use it.
type Discard struct{}

func (Discard) PlayAudio(asset.Channel, asset.Sample) {}
func (Discard) StopAudio(asset.Channel)               {}
