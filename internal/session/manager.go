package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/metrics"
	"github.com/playmatatu/pegfall/internal/physics"
	rediskeys "github.com/playmatatu/pegfall/internal/redis"
)

var ErrSessionNotFound = errors.New("session not found")

// Reasons a session ends.
const (
	ReasonEnded    = "ended"
	ReasonIdle     = "idle"
	ReasonEvicted  = "evicted"
	ReasonShutdown = "shutdown"
)

const summaryTTL = 24 * time.Hour

// Manager owns the live sessions. The registry is bounded; creating a
// session past the limit ends the least recently used one.
type Manager struct {
	tuning      game.Tuning
	layout      func() *physics.Layout
	highScores  game.HighScoreStore
	settings    game.SettingsStore
	rdb         *redis.Client
	broadcaster Broadcaster
	leaderboard LeaderboardPublisher
	interval    time.Duration
	idleTimeout time.Duration
	frameEvery  uint64
	maxSessions int
	log         *zap.SugaredLogger
	now         func() time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	sessions *lru.Cache[string, *Runner]
}

type Option func(*Manager)

func WithStores(highScores game.HighScoreStore, settings game.SettingsStore) Option {
	return func(m *Manager) {
		m.highScores = highScores
		m.settings = settings
	}
}

// WithRedis enables the idle index and end-of-session summaries.
func WithRedis(rdb *redis.Client) Option {
	return func(m *Manager) { m.rdb = rdb }
}

func WithBroadcaster(b Broadcaster) Option {
	return func(m *Manager) { m.broadcaster = b }
}

func WithLeaderboardPublisher(p LeaderboardPublisher) Option {
	return func(m *Manager) { m.leaderboard = p }
}

// WithTickInterval sets the fixed frame interval of every runner.
func WithTickInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithFrameBroadcastEvery sends a full frame every n ticks.
func WithFrameBroadcastEvery(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.frameEvery = uint64(n)
		}
	}
}

func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

func WithMaxSessions(n int) Option {
	return func(m *Manager) { m.maxSessions = n }
}

func WithLayout(layout func() *physics.Layout) Option {
	return func(m *Manager) { m.layout = layout }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager validates the tuning once so that a bad reel table stops the
// server at start instead of failing every session.
func NewManager(tuning game.Tuning, opts ...Option) (*Manager, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	if _, err := game.NewSymbolTable(tuning.Symbols); err != nil {
		return nil, fmt.Errorf("symbol table: %w", err)
	}

	m := &Manager{
		tuning:      tuning,
		layout:      physics.NewStandardPlayfield,
		interval:    time.Second / 60,
		idleTimeout: 5 * time.Minute,
		frameEvery:  6,
		maxSessions: 256,
		log:         zap.NewNop().Sugar(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.maxSessions <= 0 {
		return nil, fmt.Errorf("max sessions must be positive, got %d", m.maxSessions)
	}

	cache, err := lru.NewWithEvict(m.maxSessions, m.onEvict)
	if err != nil {
		return nil, err
	}
	m.sessions = cache
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m, nil
}

// Create starts a new session in Idle and returns its runner.
func (m *Manager) Create(ctx context.Context) (*Runner, error) {
	id := uuid.NewString()
	log := m.log.With("session_id", id)
	field := physics.New(m.layout(), m.tuning.MaxActiveBalls)

	r := newRunner(id, field, m.broadcaster, m.leaderboard, log)
	r.frameEvery = m.frameEvery
	sess, err := game.NewSession(m.tuning, field,
		game.WithNotifier(r),
		game.WithHighScores(m.highScores),
		game.WithSettings(m.settings),
		game.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	r.sess = sess
	sess.Load(ctx)
	r.refresh()

	metrics.SessionsActive.Inc()
	m.sessions.Add(id, r)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		r.Run(m.ctx, m.interval)
	}()
	m.touch(ctx, r)

	log.Infow("session created", "live", m.sessions.Len())
	return r, nil
}

// Get returns a live session and marks it recently used.
func (m *Manager) Get(id string) (*Runner, error) {
	r, ok := m.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r, nil
}

// Submit applies a command to a live session and refreshes its idle deadline.
func (m *Manager) Submit(ctx context.Context, id string, cmd Command) (Result, error) {
	r, err := m.Get(id)
	if err != nil {
		return Result{}, err
	}
	res, err := r.Submit(ctx, cmd)
	if err == nil {
		m.touch(ctx, r)
	}
	return res, err
}

// End stops a session, stores its summary and removes it from the registry.
func (m *Manager) End(ctx context.Context, id, reason string) error {
	r, ok := m.sessions.Peek(id)
	if !ok {
		return ErrSessionNotFound
	}
	stopped := r.Stop()
	m.sessions.Remove(id)
	if stopped {
		m.finish(ctx, r, reason)
	}
	return nil
}

func (m *Manager) onEvict(id string, r *Runner) {
	if !r.Stop() {
		return
	}
	go m.finish(context.Background(), r, ReasonEvicted)
}

func (m *Manager) finish(ctx context.Context, r *Runner, reason string) {
	select {
	case <-r.Done():
	case <-ctx.Done():
	}
	metrics.SessionsActive.Dec()
	metrics.SessionsEnded.WithLabelValues(reason).Inc()

	frame := r.Snapshot()
	if m.rdb != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if data, err := json.Marshal(frame.Snapshot); err == nil {
			if err := m.rdb.SetEx(ctx, rediskeys.SessionSummaryKey(r.id), data, summaryTTL).Err(); err != nil {
				r.log.Warnw("save session summary", "error", err)
			}
		}
		m.rdb.ZRem(ctx, rediskeys.IdleSessionsKey, r.id)
	}
	if m.broadcaster != nil {
		m.broadcaster.Broadcast(r.id, Message{Type: MsgSessionEnded, Data: map[string]any{
			"reason": reason,
			"score":  frame.Snapshot.Score,
		}})
	}
	r.log.Infow("session ended", "reason", reason, "score", frame.Snapshot.Score, "state", frame.Snapshot.State)
}

// Summary returns the final snapshot of an ended session.
func (m *Manager) Summary(ctx context.Context, id string) (game.Snapshot, error) {
	var snap game.Snapshot
	if m.rdb == nil {
		return snap, ErrSessionNotFound
	}
	data, err := m.rdb.Get(ctx, rediskeys.SessionSummaryKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return snap, ErrSessionNotFound
	}
	if err != nil {
		return snap, err
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("decode summary: %w", err)
	}
	return snap, nil
}

func (m *Manager) touch(ctx context.Context, r *Runner) {
	now := m.now()
	r.lastActive.Store(now.UnixNano())
	m.scheduleIdle(ctx, r, now)
}

// scheduleIdle records when the session becomes idle if nothing happens
// after last.
func (m *Manager) scheduleIdle(ctx context.Context, r *Runner, last time.Time) {
	if m.rdb == nil {
		return
	}
	deadline := last.Add(m.idleTimeout).Unix()
	if err := m.rdb.ZAdd(ctx, rediskeys.IdleSessionsKey, redis.Z{Score: float64(deadline), Member: r.id}).Err(); err != nil {
		r.log.Warnw("schedule idle check", "error", err)
	}
}

// Len is the number of live sessions.
func (m *Manager) Len() int { return m.sessions.Len() }

func (m *Manager) Tuning() game.Tuning { return m.tuning }

// Shutdown ends every live session and waits for their runners.
func (m *Manager) Shutdown(ctx context.Context) {
	for _, id := range m.sessions.Keys() {
		if err := m.End(ctx, id, ReasonShutdown); err != nil && !errors.Is(err, ErrSessionNotFound) {
			m.log.Warnw("end session", "session_id", id, "error", err)
		}
	}
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		m.log.Warnw("shutdown timed out waiting for runners")
	}
}
