package game

import (
	"fmt"
	"log/slog"

	"emoji-dialogue/assets"
	"emoji-dialogue/internal/config"
	"emoji-dialogue/internal/loader"
	"emoji-dialogue/internal/scene"
)

// LoadScenes returns the scenes in cfg.Content.SceneDir, or the built-in
// scenes when no directory is configured.
func LoadScenes(cfg config.Config, logger *slog.Logger) ([]*scene.Scene, error) {
	if cfg.Content.SceneDir == "" {
		scenes, err := assets.Scenes()
		if err != nil {
			return nil, fmt.Errorf("built-in scenes: %w", err)
		}
		return scenes, nil
	}
	lib, err := loader.LoadDir(cfg.Content.SceneDir, cfg.Playback.RevealRate, logger)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Content.SceneDir, err)
	}
	if len(lib.Scenes) == 0 {
		return nil, fmt.Errorf("load %s: %w", cfg.Content.SceneDir, ErrNoScenes)
	}
	logger.Info("scenes loaded", "dir", cfg.Content.SceneDir, "scenes", len(lib.Scenes), "characters", len(lib.Cast))
	return lib.Scenes, nil
}
