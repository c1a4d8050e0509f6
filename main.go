// emoji-dialogue plays dialogue scenes in the terminal.
//
// Usage:
//
//	emoji-dialogue [--config dialogue.ini] [--scenes dir] [--mute] [--mirror :8088] [--log file]
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"emoji-dialogue/internal/audio"
	"emoji-dialogue/internal/config"
	"emoji-dialogue/internal/game"
	"emoji-dialogue/internal/playback"
	"emoji-dialogue/internal/remote"
)

func main() {
	cfgPath := flag.String("config", "dialogue.ini", "Path to the ini config file (optional)")
	sceneDir := flag.String("scenes", "", "Directory with cast.json and *.scene.json (overrides config)")
	mute := flag.Bool("mute", false, "Disable audio")
	mirror := flag.String("mirror", "", "Serve a websocket spectator feed on this address (overrides config)")
	logPath := flag.String("log", "", "Write logs to this file")
	flag.Parse()

	if err := run(*cfgPath, *sceneDir, *mute, *mirror, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, sceneDir string, mute bool, mirror, logPath string) error {
	// The terminal belongs to the screen, so logs go to a file or nowhere.
	var out io.Writer = io.Discard
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if sceneDir != "" {
		cfg.Content.SceneDir = sceneDir
	}
	if mirror != "" {
		cfg.Server.Mirror = mirror
	}
	if mute {
		cfg.Audio.Enabled = false
	}

	scenes, err := game.LoadScenes(cfg, logger)
	if err != nil {
		return err
	}

	var sound playback.Audio = audio.Discard{}
	if cfg.Audio.Enabled {
		m := audio.NewMixer(audio.Options{
			SampleRate: cfg.Audio.SampleRate,
			BufferSize: cfg.Audio.BufferSize,
			Volume:     cfg.Audio.Volume,
			Logger:     logger,
		})
		if err := m.Attach(); err != nil {
			logger.Warn("no audio device, continuing muted", "error", err)
		} else {
			defer m.Close()
			sound = m
		}
	}

	opts := game.Options{
		Scenes:  scenes,
		Config:  cfg,
		Audio:   sound,
		PlayLog: game.DefaultPlayLog(),
		Player:  os.Getenv("USER"),
		Logger:  logger,
	}
	if cfg.Server.Mirror != "" {
		hub := remote.NewHub(logger)
		defer hub.Close()
		mux := http.NewServeMux()
		mux.Handle("GET /watch", hub)
		go func() {
			if err := http.ListenAndServe(cfg.Server.Mirror, mux); err != nil {
				logger.Error("spectator mirror stopped", "error", err)
			}
		}()
		opts.Spectator = hub
	}

	g, err := game.New(opts)
	if err != nil {
		return err
	}
	g.Run()
	return nil
}
