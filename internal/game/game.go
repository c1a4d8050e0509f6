// Package game is the interactive host around the playback engine: it owns
// the screen, picks scenes, feeds key presses to the engine and keeps the
// play log.
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"emoji-dialogue/internal/config"
	"emoji-dialogue/internal/playback"
	"emoji-dialogue/internal/render"
	"emoji-dialogue/internal/scene"

	"github.com/gdamore/tcell/v2"
)

// ErrNoScenes is returned by New when there is nothing to play.
var ErrNoScenes = errors.New("no scenes to play")

// GameState tracks the host's state machine.
type GameState uint8

const (
	StateSceneSelect GameState = iota
	StatePlaying
	StateSummary
	StateQuit
)

// Spectator receives a copy of every engine command.
type Spectator interface {
	playback.Display
	playback.Audio
}

// Options configures a Game.
type Options struct {
	Screen    tcell.Screen // nil: a new terminal screen
	Scenes    []*scene.Scene
	Config    config.Config // zero value: config.Default()
	Audio     playback.Audio
	Spectator Spectator
	Clock     playback.Clock
	PlayLog   *PlayLog
	Player    string
	Logger    *slog.Logger
}

// Game is the top-level orchestrator for one player.
type Game struct {
	screen  tcell.Screen
	stage   *render.Stage
	engine  *playback.Engine
	scenes  []*scene.Scene
	plays   *PlayLog
	player  string
	logger  *slog.Logger
	repeat  *repeatFilter
	state   GameState
	now     func() time.Time
	pending int // scene index the select screen opens on

	events   chan tcell.Event
	renderCh chan struct{}
	endCh    chan struct{}
	inputOn  atomic.Bool
}

// New creates a Game. When opts.Screen is nil a terminal screen is created
// and initialized; a supplied screen must already be initialized.
func New(opts Options) (*Game, error) {
	if len(opts.Scenes) == 0 {
		return nil, ErrNoScenes
	}
	if opts.Config == (config.Config{}) {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	screen := opts.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return nil, fmt.Errorf("init screen: %w", err)
		}
	}

	g := &Game{
		screen:   screen,
		scenes:   opts.Scenes,
		plays:    opts.PlayLog,
		player:   opts.Player,
		logger:   opts.Logger,
		repeat:   newRepeatFilter(opts.Config.Playback.AdvanceRepeat),
		now:      time.Now,
		renderCh: make(chan struct{}, 1),
		endCh:    make(chan struct{}),
	}

	palette := render.DefaultPalette()
	palette.Text = opts.Config.TextColor()
	palette.Name = opts.Config.NameColor()
	g.stage = render.NewStage(screen, palette, g.requestRender)

	display := playback.MultiDisplay(g.stage)
	audio := opts.Audio
	if opts.Spectator != nil {
		display = playback.MultiDisplay(g.stage, opts.Spectator)
		audio = playback.MultiAudio(opts.Audio, opts.Spectator)
	}
	g.engine = playback.New(playback.Options{
		Display:    display,
		Audio:      audio,
		Clock:      opts.Clock,
		BlipStride: opts.Config.Playback.BlipStride,
		Logger:     opts.Logger,
		Hooks: playback.Hooks{
			// Hooks run inside engine calls; they only flip flags and
			// close channels.
			OnSceneStart: func() { g.inputOn.Store(true) },
			OnSceneEnd: func() {
				g.inputOn.Store(false)
				close(g.endCh)
			},
		},
	})
	return g, nil
}

// State returns the current host state.
func (g *Game) State() GameState { return g.state }

// Run is the main loop: choose a scene, play it, show the summary, repeat
// until the player quits or the screen goes away.
func (g *Game) Run() {
	defer g.screen.Fini()
	g.startInput()

	for g.state != StateQuit {
		idx, ok := g.runSceneSelect()
		if !ok {
			g.state = StateQuit
			break
		}
		g.pending = idx
		g.playScene(g.scenes[idx])
	}
	g.engine.Stop()
}

// startInput pumps screen events into g.events until the screen is finalized.
func (g *Game) startInput() {
	g.events = make(chan tcell.Event, 32)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(g.events)
				return
			}
			g.events <- ev
		}
	}()
}

// requestRender is the stage's notify callback. It may be called from timer
// goroutines and never blocks.
func (g *Game) requestRender() {
	select {
	case g.renderCh <- struct{}{}:
	default:
	}
}

// ─── scene playback ─────────────────────────────────────────────────────────

// sceneRun accumulates what the play log records about one scene.
type sceneRun struct {
	scene   *scene.Scene
	started time.Time
	skips   int
}

func (g *Game) playScene(sc *scene.Scene) {
	g.stage.Reset()
	g.stage.SetTitle(sc.Title())
	g.endCh = make(chan struct{})
	run := sceneRun{scene: sc, started: g.now()}

	if err := g.engine.Start(sc); err != nil {
		g.logger.Error("start scene", "scene", sc.ID(), "error", err)
		return
	}
	g.state = StatePlaying
	g.logger.Info("scene started", "scene", sc.ID(), "player", g.player)
	g.stage.Draw()

	for {
		select {
		case ev, ok := <-g.events:
			if !ok {
				g.engine.Stop()
				g.state = StateQuit
				return
			}
			if !g.handlePlayEvent(ev, &run) {
				g.engine.Stop()
				g.logger.Info("scene abandoned", "scene", sc.ID(), "player", g.player)
				g.state = StateSceneSelect
				return
			}
		case <-g.renderCh:
			g.stage.Draw()
		case <-g.endCh:
		}

		// The end signal fires inside Advance, so check it before taking
		// any more queued input.
		select {
		case <-g.endCh:
			g.finishScene(run)
			return
		default:
		}
	}
}

// handlePlayEvent applies one event during a scene. It returns false when
// the player leaves the scene.
func (g *Game) handlePlayEvent(ev tcell.Event, run *sceneRun) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		g.screen.Sync()
		g.requestRender()
	case *tcell.EventKey:
		switch keyToAction(ev) {
		case ActionQuit:
			return false
		case ActionAdvance:
			if !g.repeat.Allow(ev) || !g.inputOn.Load() {
				return true
			}
			if g.engine.Advance() {
				run.skips++
			}
		}
	}
	return true
}

func (g *Game) finishScene(run sceneRun) {
	g.stage.Draw()
	play := Play{
		Scene:    run.scene.ID(),
		Title:    run.scene.Title(),
		Player:   g.player,
		Lines:    run.scene.Len(),
		Skips:    run.skips,
		Seconds:  g.now().Sub(run.started).Seconds(),
		Finished: g.now(),
	}
	if err := g.plays.Record(play); err != nil {
		g.logger.Warn("record play", "scene", play.Scene, "error", err)
	}
	g.logger.Info("scene finished", "scene", play.Scene, "player", g.player, "skips", play.Skips)

	g.state = StateSummary
	if g.showSummary(play) {
		g.state = StateSceneSelect
	} else {
		g.state = StateQuit
	}
}
