package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

const storeTimeout = 2 * time.Second

const eventNoBallsClear = "no_balls_clear"

// Session owns one game: the ball pool, scoring, the jackpot machine, the
// cannon and the top-level state. It is not safe for concurrent use; the
// caller drives it from a single goroutine.
type Session struct {
	tuning Tuning
	state  GameState
	clock  float64

	physics  Physics
	sched    *Scheduler
	pool     *BallPool
	scoring  *Scoring
	jackpot  *Jackpot
	cannon   *Cannon
	router   *Router
	flippers [2]bool

	notify     Notifier
	highScores HighScoreStore
	settings   SettingsStore
	log        *zap.SugaredLogger
	rng        RNG

	submitted    bool
	isHighScore  bool
	lastInitials string
}

type Option func(*Session)

func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notify = n }
}

// WithRNG sets the reel random source. Tests pass a seeded source.
func WithRNG(rng RNG) Option {
	return func(s *Session) { s.rng = rng }
}

func WithHighScores(store HighScoreStore) Option {
	return func(s *Session) { s.highScores = store }
}

func WithSettings(store SettingsStore) Option {
	return func(s *Session) { s.settings = store }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Session) { s.log = log }
}

// NewSession validates the tuning and builds a session in Loading. A
// malformed symbol table or payout table is an error here.
func NewSession(t Tuning, physics Physics, opts ...Option) (*Session, error) {
	if physics == nil {
		return nil, errors.New("physics collaborator is required")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	symbols, err := NewSymbolTable(t.Symbols)
	if err != nil {
		return nil, fmt.Errorf("symbol table: %w", err)
	}

	s := &Session{
		tuning:  t,
		state:   StateLoading,
		physics: physics,
		sched:   NewScheduler(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notify == nil {
		s.notify = nopNotifier{}
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	if s.rng == nil {
		now := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(now, now>>17|1))
	}

	s.pool = NewBallPool(t.MaxActiveBalls, t.InitialBalls, physics, s.notify)
	s.scoring = NewScoring(t, s.sched, s.notify)
	s.jackpot = NewJackpot(t, symbols, s.rng, s.sched, sessionRewards{s}, s.notify, s.log.Named("jackpot"))
	s.jackpot.onPhase = s.onJackpotPhase
	s.cannon = NewCannon(t.Cannon)
	s.router = NewRouter(t, s.pool, s.scoring, s.jackpot, s.sched, s.notify)
	return s, nil
}

// Load parks every ball handle and moves to Idle. Stored settings are read
// here; a failing settings store is logged and ignored.
func (s *Session) Load(ctx context.Context) {
	if s.state != StateLoading {
		return
	}
	s.pool.ParkAll()
	if s.settings != nil {
		ctx, cancel := context.WithTimeout(ctx, storeTimeout)
		v, ok, err := s.settings.Get(ctx, SettingLastInitials)
		cancel()
		switch {
		case err != nil:
			s.log.Warnw("read settings", "key", SettingLastInitials, "error", err)
		case ok:
			s.lastInitials = v
		}
	}
	s.setState(StateIdle)
}

// Start begins the first round from Idle.
func (s *Session) Start() bool {
	if s.state != StateIdle {
		return false
	}
	s.resetRound()
	s.setState(StatePlaying)
	return true
}

// Restart abandons the current round, including a spin in progress, and
// begins a new one.
func (s *Session) Restart() bool {
	if s.state == StateLoading {
		return false
	}
	s.resetRound()
	s.setState(StatePlaying)
	s.log.Infow("round restarted")
	return true
}

func (s *Session) resetRound() {
	s.sched.Clear()
	s.jackpot.Reset()
	s.pool.Reset(s.tuning.InitialBalls)
	s.scoring.Reset()
	s.cannon.Reset()
	s.router.Reset()
	for _, side := range []Side{SideLeft, SideRight} {
		s.setFlipper(side, false)
	}
	s.submitted = false
	s.isHighScore = false
	s.notify.Notify(Notification{Type: NoteBanner, Data: Banner{}})
}

// Update advances the session by one frame: combo window, physics,
// contacts, timers, scheduled events, then the game-over check.
func (s *Session) Update(dt float64) {
	if s.state == StateLoading || dt <= 0 {
		return
	}
	dt = min(dt, s.tuning.MaxFrameDelta)
	s.clock += dt
	s.sched.Advance(s.clock)

	// The combo window runs down before this frame's contacts so a streak
	// scored now lasts the full window from this frame.
	s.scoring.Tick(dt)

	contacts := s.physics.Step(dt)
	s.router.Dispatch(contacts)

	s.jackpot.Tick(dt)
	s.cannon.Tick(dt)
	s.sched.RunDue()

	s.checkGameOver()
}

func (s *Session) checkGameOver() {
	if s.state != StatePlaying || s.pool.Total() > 0 || s.pool.Active() > 0 {
		return
	}
	for _, side := range []Side{SideLeft, SideRight} {
		s.setFlipper(side, false)
	}
	s.setState(StateGameOver)

	final := s.scoring.Score()
	if s.highScores != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		ok, err := s.highScores.IsHighScore(ctx, final)
		cancel()
		if err != nil {
			s.log.Warnw("high score check", "score", final, "error", err)
		}
		s.isHighScore = ok
	}
	s.notify.Notify(Notification{Type: NoteGameOver, Data: GameOver{FinalScore: final, IsHighScore: s.isHighScore}})
	s.notify.Notify(Notification{Type: NoteSound, Data: Sound{Cue: CueGameOver}})
	s.log.Infow("game over", "score", final, "high_score", s.isHighScore)
}

// FireCannon launches a ball. Accepted in Playing and JackpotReady only.
func (s *Session) FireCannon() bool {
	if s.state != StatePlaying && s.state != StateJackpotReady {
		return false
	}
	if _, ok := s.cannon.Fire(s.pool); ok {
		s.notify.Notify(Notification{Type: NoteSound, Data: Sound{Cue: CueCannon}})
		return true
	}
	if s.cannon.Ready() && s.pool.Total() <= 0 {
		s.notify.Notify(Notification{Type: NoteBanner, Data: Banner{Text: "NO BALLS REMAINING", Color: ColorWarn}})
		s.sched.Cancel(eventNoBallsClear)
		s.sched.After(s.tuning.Achievements.BannerDuration, eventNoBallsClear, func() {
			s.notify.Notify(Notification{Type: NoteBanner, Data: Banner{}})
		})
	}
	return false
}

// AimCannon sets the cannon angle in radians and returns the clamped value.
func (s *Session) AimCannon(angle float64) (float64, bool) {
	if !s.state.inRound() {
		return s.cannon.Angle(), false
	}
	return s.cannon.Aim(angle), true
}

// NudgeCannon turns the cannon by delta radians.
func (s *Session) NudgeCannon(delta float64) (float64, bool) {
	if !s.state.inRound() {
		return s.cannon.Angle(), false
	}
	return s.cannon.Nudge(delta), true
}

// SetFlipper raises or lowers a flipper. Refused in Loading and GameOver.
func (s *Session) SetFlipper(side Side, active bool) bool {
	if s.state == StateLoading || s.state == StateGameOver {
		return false
	}
	s.setFlipper(side, active)
	return true
}

func (s *Session) setFlipper(side Side, active bool) {
	if s.flippers[side] == active {
		return
	}
	s.flippers[side] = active
	s.physics.SetFlipper(side, active)
	if active {
		s.notify.Notify(Notification{Type: NoteSound, Data: Sound{Cue: CueFlipper}})
	}
}

// TriggerJackpot spins the reels early. Accepted in JackpotReady only.
func (s *Session) TriggerJackpot() bool {
	if s.state != StateJackpotReady {
		return false
	}
	return s.jackpot.TriggerSpin()
}

// SubmitHighScore records the final score under initials. It is accepted
// once per game over and only for a score that places; the returned rank
// is 1-based. Invalid initials and store failures are errors.
func (s *Session) SubmitHighScore(ctx context.Context, initials string) (int, bool, error) {
	if s.state != StateGameOver || s.submitted || s.highScores == nil {
		return 0, false, nil
	}
	initials, err := NormalizeInitials(initials)
	if err != nil {
		return 0, false, err
	}
	score := s.scoring.Score()

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	ok, err := s.highScores.IsHighScore(ctx, score)
	if err != nil {
		return 0, false, fmt.Errorf("check high score: %w", err)
	}
	if !ok {
		return 0, false, nil
	}
	rank, err := s.highScores.AddHighScore(ctx, HighScoreEntry{
		Score:    score,
		Initials: initials,
		Date:     time.Now().UTC(),
	})
	if err != nil {
		return 0, false, fmt.Errorf("add high score: %w", err)
	}
	s.submitted = true
	s.lastInitials = initials
	if s.settings != nil {
		if err := s.settings.Set(ctx, SettingLastInitials, initials); err != nil {
			s.log.Warnw("save settings", "key", SettingLastInitials, "error", err)
		}
	}
	s.log.Infow("high score submitted", "initials", initials, "score", score, "rank", rank)
	return rank, rank > 0, nil
}

// onJackpotPhase mirrors jackpot phases onto the game state while a round
// is running.
func (s *Session) onJackpotPhase(_, to JackpotPhase) {
	if !s.state.inRound() {
		return
	}
	s.setState(gameStateFor(to))
}

func (s *Session) setState(to GameState) {
	if s.state == to {
		return
	}
	from := s.state
	s.state = to
	s.log.Debugw("state", "from", from, "to", to)
	s.notify.Notify(Notification{Type: NoteStateChanged, Data: StateChanged{From: from, To: to}})
}

// applyPayout credits a spin. Points are added as-is; the multiplier bonus
// goes through the ratchet and never lowers the multiplier.
func (s *Session) applyPayout(r PayoutResult) {
	s.scoring.AddPoints(r.Points)
	s.pool.AddBalls(int(r.FreeBalls))
	if r.MultiplierBonus > 0 {
		s.scoring.SetSessionMultiplier(r.MultiplierBonus)
	}
	if r.UnlockRapidFire {
		s.cannon.UnlockRapidFire()
	}

	var text, color, cue string
	switch {
	case r.IsMegaWin:
		text, color, cue = fmt.Sprintf("MEGA WIN! +%d", r.Points), ColorMega, CueMegaWin
	case r.IsWin:
		text, color, cue = fmt.Sprintf("WIN! +%d", r.Points), ColorReward, CueWin
	default:
		text, color, cue = fmt.Sprintf("+%d BALLS", r.FreeBalls), ColorInfo, CueReelStop
	}
	s.notify.Notify(Notification{Type: NoteBanner, Data: Banner{Text: text, Color: color}})
	s.notify.Notify(Notification{Type: NoteSound, Data: Sound{Cue: cue}})
}

type sessionRewards struct{ s *Session }

func (r sessionRewards) CurrentScore() uint64         { return r.s.scoring.Score() }
func (r sessionRewards) ApplyPayout(res PayoutResult) { r.s.applyPayout(res) }

// Snapshot is a copy of the session state for transports and renderers.
type Snapshot struct {
	State        GameState     `json:"state"`
	Clock        float64       `json:"clock"`
	Score        uint64        `json:"score"`
	Multiplier   uint32        `json:"multiplier"`
	Fever        bool          `json:"fever"`
	Combo        uint32        `json:"combo"`
	ComboTimer   float64       `json:"combo_timer"`
	TotalBalls   int           `json:"total_balls"`
	ActiveBalls  int           `json:"active_balls"`
	Jackpot      JackpotView   `json:"jackpot"`
	Cannon       CannonView    `json:"cannon"`
	LeftFlipper  bool          `json:"left_flipper"`
	RightFlipper bool          `json:"right_flipper"`
	TargetsHit   int           `json:"targets_hit"`
	Achievements []Achievement `json:"achievements"`
	IsHighScore  bool          `json:"is_high_score"`
	Submitted    bool          `json:"submitted"`
	LastInitials string        `json:"last_initials,omitempty"`
}

var achievementOrder = []Achievement{
	AchievementFirstBumper,
	AchievementFirstRamp,
	AchievementAllTargets,
	AchievementComboStreak,
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:        s.state,
		Clock:        s.clock,
		Score:        s.scoring.Score(),
		Multiplier:   s.scoring.Multiplier(),
		Fever:        s.scoring.Fever(),
		Combo:        s.scoring.Combo(),
		ComboTimer:   s.scoring.ComboTimer(),
		TotalBalls:   s.pool.Total(),
		ActiveBalls:  s.pool.Active(),
		Jackpot:      s.jackpot.View(),
		Cannon:       s.cannon.View(),
		LeftFlipper:  s.flippers[SideLeft],
		RightFlipper: s.flippers[SideRight],
		TargetsHit:   s.router.TargetsHit(),
		Achievements: []Achievement{},
		IsHighScore:  s.isHighScore,
		Submitted:    s.submitted,
		LastInitials: s.lastInitials,
	}
	for _, a := range achievementOrder {
		if s.scoring.Unlocked(a) {
			snap.Achievements = append(snap.Achievements, a)
		}
	}
	return snap
}

func (s *Session) State() GameState  { return s.state }
func (s *Session) Tuning() Tuning    { return s.tuning }
func (s *Session) Pool() *BallPool   { return s.pool }
func (s *Session) Scoring() *Scoring { return s.scoring }
func (s *Session) Jackpot() *Jackpot { return s.jackpot }
func (s *Session) Cannon() *Cannon   { return s.cannon }
