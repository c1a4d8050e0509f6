// Package config loads player and server settings: built-in defaults, then an
// optional ini file, then DIALOGUE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"emoji-dialogue/internal/scene"

	"github.com/caarlos0/env/v11"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/ini.v1"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the full settings tree. ini sections match the nested struct names.
type Config struct {
	Playback Playback `ini:"Playback"`
	Audio    Audio    `ini:"Audio"`
	Display  Display  `ini:"Display"`
	Content  Content  `ini:"Content"`
	Server   Server   `ini:"Server"`
}

type Playback struct {
	BlipStride int     `ini:"BlipStride" env:"DIALOGUE_BLIP_STRIDE"`
	RevealRate float64 `ini:"RevealRate" env:"DIALOGUE_REVEAL_RATE"`
	// AdvanceRepeat is the window in which a repeated key press is treated
	// as terminal auto-repeat.
	AdvanceRepeat time.Duration `ini:"AdvanceRepeat" env:"DIALOGUE_ADVANCE_REPEAT"`
}

type Audio struct {
	Enabled    bool    `ini:"Enabled" env:"DIALOGUE_AUDIO"`
	SampleRate int     `ini:"SampleRate" env:"DIALOGUE_SAMPLE_RATE"`
	BufferSize int     `ini:"BufferSize" env:"DIALOGUE_BUFFER_SIZE"`
	Volume     float64 `ini:"Volume" env:"DIALOGUE_VOLUME"`
}

type Display struct {
	TextColor string `ini:"TextColor" env:"DIALOGUE_TEXT_COLOR"`
	NameColor string `ini:"NameColor" env:"DIALOGUE_NAME_COLOR"`
}

type Content struct {
	// SceneDir holds cast.json and *.scene.json. Empty means the built-in scenes.
	SceneDir string `ini:"SceneDir" env:"DIALOGUE_SCENE_DIR"`
}

type Server struct {
	Port    int    `ini:"Port" env:"DIALOGUE_PORT"`
	HostKey string `ini:"HostKey" env:"DIALOGUE_HOST_KEY"`
	// Mirror is the listen address of the websocket spectator feed; empty disables it.
	Mirror string `ini:"Mirror" env:"DIALOGUE_MIRROR"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Playback: Playback{
			BlipStride:    2,
			RevealRate:    30,
			AdvanceRepeat: 120 * time.Millisecond,
		},
		Audio: Audio{
			Enabled:    true,
			SampleRate: 44100,
			BufferSize: 2048,
		},
		Display: Display{
			TextColor: "#e8e8e8",
			NameColor: "#ffd166",
		},
		Server: Server{
			Port:    2222,
			HostKey: "host_key",
		},
	}
}

// Load builds a Config from defaults, the ini file at path (skipped when
// path is empty or the file does not exist) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			f, err := ini.LoadSources(ini.LoadOptions{
				SkipUnrecognizableLines: true,
				IgnoreInlineComment:     false,
			}, path)
			if err != nil {
				return Config{}, fmt.Errorf("read %s: %w", path, err)
			}
			if err := f.MapTo(&cfg); err != nil {
				return Config{}, fmt.Errorf("map %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the player cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Playback.BlipStride < 1:
		return fmt.Errorf("%w: Playback.BlipStride must be at least 1, got %d", ErrInvalid, c.Playback.BlipStride)
	case !scene.ValidRevealRate(c.Playback.RevealRate):
		return fmt.Errorf("%w: Playback.RevealRate must be positive and finite, got %v", ErrInvalid, c.Playback.RevealRate)
	case c.Playback.AdvanceRepeat < 0:
		return fmt.Errorf("%w: Playback.AdvanceRepeat is negative", ErrInvalid)
	case c.Audio.SampleRate <= 0:
		return fmt.Errorf("%w: Audio.SampleRate must be positive, got %d", ErrInvalid, c.Audio.SampleRate)
	case c.Audio.BufferSize <= 0:
		return fmt.Errorf("%w: Audio.BufferSize must be positive, got %d", ErrInvalid, c.Audio.BufferSize)
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: Server.Port out of range: %d", ErrInvalid, c.Server.Port)
	}
	for name, hex := range map[string]string{
		"Display.TextColor": c.Display.TextColor,
		"Display.NameColor": c.Display.NameColor,
	} {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
		}
	}
	return nil
}

// TextColor parses Display.TextColor. Validate has already checked it.
func (c Config) TextColor() colorful.Color {
	col, _ := colorful.Hex(c.Display.TextColor)
	return col
}

// NameColor parses Display.NameColor.
func (c Config) NameColor() colorful.Color {
	col, _ := colorful.Hex(c.Display.NameColor)
	return col
}
