package audio

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"emoji-dialogue/internal/asset"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/wav"
)

const testRate = 8000

func newTestMixer() *Mixer {
	return NewMixer(Options{SampleRate: testRate, Logger: slog.Default()})
}

// pull streams n samples out of the mixer.
func pull(t *testing.T, m *Mixer, n int) [][2]float64 {
	t.Helper()
	buf := make([][2]float64, n)
	got, ok := m.Stream(buf)
	if !ok || got != n {
		t.Fatalf("Stream = %d, %v; want %d, true", got, ok, n)
	}
	return buf
}

func peak(samples [][2]float64) float64 {
	p := 0.0
	for _, s := range samples {
		p = math.Max(p, math.Max(math.Abs(s[0]), math.Abs(s[1])))
	}
	return p
}

func TestSilentWhenNothingPlays(t *testing.T) {
	m := newTestMixer()
	if p := peak(pull(t, m, 256)); p != 0 {
		t.Errorf("peak = %v; want silence", p)
	}
}

func TestToneBlipPlaysForItsLength(t *testing.T) {
	m := newTestMixer()
	m.PlayAudio(asset.Voice, asset.Sample{Name: "blip", Tone: 440, Length: 10 * time.Millisecond})

	out := pull(t, m, 200)
	n := beep.SampleRate(testRate).N(10 * time.Millisecond)
	if p := peak(out[:n]); p == 0 {
		t.Error("blip produced no signal")
	}
	if p := peak(out[n:]); p != 0 {
		t.Errorf("signal after blip end: peak %v", p)
	}
}

func TestStopSilencesChannel(t *testing.T) {
	m := newTestMixer()
	m.PlayAudio(asset.Music, asset.Sample{Name: "drone", Tone: 220})
	if p := peak(pull(t, m, 128)); p == 0 {
		t.Fatal("music produced no signal")
	}
	m.StopAudio(asset.Music)
	pull(t, m, 16) // lets the beep mixer drop the emptied ctrl
	if p := peak(pull(t, m, 128)); p != 0 {
		t.Errorf("peak after stop = %v; want 0", p)
	}
}

func TestPlayReplacesChannelClip(t *testing.T) {
	m := newTestMixer()
	m.PlayAudio(asset.Voice, asset.Sample{Tone: 440, Length: time.Second})
	m.PlayAudio(asset.Voice, asset.Sample{Tone: 660, Length: time.Second})
	m.PlayAudio(asset.Music, asset.Sample{Tone: 110})
	pull(t, m, 16)
	if n := m.mix.Len(); n != 2 {
		t.Errorf("live streamers = %d; want 2 (one per channel)", n)
	}
}

func TestMissingFileLeavesChannelSilent(t *testing.T) {
	m := newTestMixer()
	m.PlayAudio(asset.Voice, asset.Sample{Name: "ghost", Path: filepath.Join(t.TempDir(), "nope.wav")})
	if p := peak(pull(t, m, 64)); p != 0 {
		t.Errorf("peak = %v; want silence", p)
	}
}

func TestWavMusicLoops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.wav")
	writeTone(t, path, 4000, 400)

	m := newTestMixer()
	m.PlayAudio(asset.Music, asset.Sample{Name: "loop", Path: path})
	// 400 samples at 4kHz resample to ~800 at 8kHz; stream well past that.
	pull(t, m, 2000)
	if p := peak(pull(t, m, 400)); p == 0 {
		t.Error("music stopped instead of looping")
	}
	if _, ok := m.cache[path]; !ok {
		t.Error("decoded clip not cached")
	}
}

func TestDiscardAcceptsCommands(t *testing.T) {
	var d Discard
	d.PlayAudio(asset.Voice, asset.Sample{Tone: 1})
	d.StopAudio(asset.Music)
}

func writeTone(t *testing.T, path string, rate beep.SampleRate, n int) {
	t.Helper()
	tone, err := generators.SineTone(rate, 330)
	if err != nil {
		t.Fatalf("SineTone: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(f, beep.Take(n, tone), format); err != nil {
		t.Fatalf("wav.Encode: %v", err)
	}
}
