package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/config"
	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/logger"
	"github.com/playmatatu/pegfall/internal/store"
	"github.com/playmatatu/pegfall/internal/term"
)

// pegfall-term plays a local game in the terminal with in-memory high
// scores.
func main() {
	var (
		tuningPath = flag.String("tuning", "", "tuning YAML file (defaults to the built-in table)")
		logPath    = flag.String("log", "pegfall-term.log", "log file")
		withSound  = flag.Bool("sound", false, "play sound cues")
	)
	flag.Parse()

	cfg := config.Load()
	log, err := logger.NewFile(cfg, *logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *tuningPath, *withSound, log); err != nil {
		log.Errorw("terminal client failed", "error", err)
		fmt.Fprintf(os.Stderr, "pegfall-term: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, tuningPath string, withSound bool, log *zap.SugaredLogger) error {
	tuning := game.DefaultTuning()
	if tuningPath != "" {
		t, err := game.LoadTuning(tuningPath)
		if err != nil {
			return err
		}
		tuning = t
	}
	if cfg.MaxFrameDelta > 0 {
		tuning.MaxFrameDelta = cfg.MaxFrameDelta
	}

	var sound term.Player
	if withSound {
		sm := term.NewSoundManager()
		if err := sm.Initialize(); err != nil {
			log.Warnw("audio unavailable; playing silently", "error", err)
		} else {
			defer sm.Cleanup()
			sound = sm
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	app, err := term.NewApp(screen, tuning, term.Stores{
		HighScores: store.NewMemoryHighScores(),
		Settings:   store.NewMemorySettings(),
	}, sound, log)
	if err != nil {
		return err
	}

	log.Infow("terminal client started", "tick", cfg.TickInterval(), "sound", sound != nil)
	return app.Run(ctx, cfg.TickInterval())
}
