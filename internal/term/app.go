package term

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/physics"
)

const (
	aimStep = 0.05
	// Terminals report key presses only, so a flipper drops after this long
	// without a repeat.
	flipperHold = 150 * time.Millisecond
)

// Player plays sound cues. SoundManager satisfies it.
type Player interface {
	Play(cue string)
}

type silentPlayer struct{}

func (silentPlayer) Play(string) {}

// App runs one local game in the terminal.
type App struct {
	screen tcell.Screen
	field  *physics.Playfield
	sess   *game.Session
	tuning game.Tuning
	sound  Player
	log    *zap.SugaredLogger

	banner   game.Banner
	entry    initialsEntry
	rank     int
	skipped  bool
	flippers map[game.Side]time.Time
	now      func() time.Time
	hasSound bool
}

// Stores are the leaderboard and settings backends of the local game.
type Stores struct {
	HighScores game.HighScoreStore
	Settings   game.SettingsStore
}

// NewApp builds the session and its playfield. A nil sound player plays
// nothing.
func NewApp(screen tcell.Screen, t game.Tuning, stores Stores, sound Player, log *zap.SugaredLogger) (*App, error) {
	a := &App{
		screen:   screen,
		tuning:   t,
		sound:    sound,
		hasSound: sound != nil,
		log:      log,
		flippers: make(map[game.Side]time.Time),
		now:      time.Now,
	}
	if a.sound == nil {
		a.sound = silentPlayer{}
	}

	a.field = physics.New(physics.NewStandardPlayfield(), t.MaxActiveBalls)
	sess, err := game.NewSession(t, a.field,
		game.WithNotifier(game.NotifierFunc(a.notify)),
		game.WithHighScores(stores.HighScores),
		game.WithSettings(stores.Settings),
		game.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	a.sess = sess
	return a, nil
}

func (a *App) notify(n game.Notification) {
	switch d := n.Data.(type) {
	case game.Banner:
		a.banner = d
	case game.Sound:
		a.sound.Play(d.Cue)
	case game.StateChanged:
		if d.To == game.StatePlaying {
			a.resetEntry()
		}
	case game.GameOver:
		a.log.Infow("game over", "score", d.FinalScore, "high_score", d.IsHighScore)
	}
}

// Run loads the session and drives input, simulation and drawing until the
// player quits or ctx is cancelled.
func (a *App) Run(ctx context.Context, interval time.Duration) error {
	a.sess.Load(ctx)

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go a.screen.ChannelEvents(events, quit)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := a.now()
	a.render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if a.handleKey(ctx, ev) {
					return nil
				}
			case *tcell.EventResize:
				a.screen.Sync()
			}
		case <-ticker.C:
			now := a.now()
			dt := now.Sub(last).Seconds()
			last = now
			a.step(now, dt)
			a.render()
		}
	}
}

func (a *App) step(now time.Time, dt float64) {
	for side, until := range a.flippers {
		if now.After(until) {
			a.sess.SetFlipper(side, false)
			delete(a.flippers, side)
		}
	}
	a.sess.Update(dt)
}

// handleKey applies one key press and reports whether the player quit.
func (a *App) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	snap := a.sess.Snapshot()
	if a.entering(snap) {
		if ev.Key() == tcell.KeyTab {
			a.skipped = true
			return false
		}
		consumed, submit := a.entry.handle(ev)
		if submit {
			a.submit(ctx)
		}
		if consumed {
			return false
		}
	}

	switch actionFor(ev) {
	case actQuit:
		return true
	case actStart:
		a.sess.Start()
	case actRestart:
		a.sess.Restart()
	case actFire:
		a.sess.FireCannon()
	case actAimLeft:
		a.sess.NudgeCannon(aimStep)
	case actAimRight:
		a.sess.NudgeCannon(-aimStep)
	case actLeftFlipper:
		a.flip(game.SideLeft)
	case actRightFlipper:
		a.flip(game.SideRight)
	case actJackpot:
		a.sess.TriggerJackpot()
	}
	return false
}

// entering reports whether key presses go to the initials prompt.
func (a *App) entering(snap game.Snapshot) bool {
	return snap.State == game.StateGameOver && snap.IsHighScore && !snap.Submitted && !a.skipped
}

func (a *App) resetEntry() {
	a.rank = 0
	a.skipped = false
	a.entry.reset()
}

func (a *App) flip(side game.Side) {
	if a.sess.SetFlipper(side, true) {
		a.flippers[side] = a.now().Add(flipperHold)
	}
}

func (a *App) submit(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	rank, ok, err := a.sess.SubmitHighScore(ctx, a.entry.String())
	if err != nil {
		a.log.Warnw("high score submit failed", "error", err)
		a.banner = game.Banner{Text: "SCORE NOT SAVED", Color: game.ColorWarn}
		return
	}
	if ok {
		a.rank = rank
	}
}

func (a *App) render() {
	snap := a.sess.Snapshot()
	draw(a.screen, view{
		layout:   a.field.Layout(),
		cannon:   a.tuning.Cannon,
		snap:     snap,
		balls:    a.field.Balls(),
		banner:   a.banner,
		initials: a.entry.String(),
		entering: a.entering(snap),
		rank:     a.rank,
		sound:    a.hasSound,
	})
	a.screen.Show()
}
