package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/metrics"
	"github.com/playmatatu/pegfall/internal/physics"
)

var ErrSessionEnded = errors.New("session ended")

// Message types pushed to session subscribers.
const (
	MsgNotifications = "notifications"
	MsgFrame         = "frame"
	MsgSessionEnded  = "session_ended"
	MsgLeaderboard   = "leaderboard_updated"
)

// Message is one outbound envelope for a session's subscribers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Broadcaster delivers messages to everyone watching a session. It must not
// block the runner.
type Broadcaster interface {
	Broadcast(sessionID string, msg Message)
}

// LeaderboardPublisher announces a new leaderboard entry to every node.
type LeaderboardPublisher interface {
	PublishHighScore(ctx context.Context, entry game.HighScoreEntry) error
}

// Frame is the renderable state of a session.
type Frame struct {
	ID       string              `json:"id"`
	Snapshot game.Snapshot       `json:"snapshot"`
	Balls    []physics.BallState `json:"balls"`
}

type request struct {
	cmd   Command
	reply chan Result
}

// Runner drives one session on its own goroutine. Commands are queued and
// applied between frames; readers get a copy of the last frame.
type Runner struct {
	id      string
	created time.Time
	sess    *game.Session
	field   *physics.Playfield

	requests    chan request
	pending     []game.Notification
	broadcast   Broadcaster
	leaderboard LeaderboardPublisher
	frameEvery  uint64
	frames      uint64
	log         *zap.SugaredLogger

	mu    sync.RWMutex
	frame Frame

	lastActive atomic.Int64
	stopOnce   sync.Once
	stop       chan struct{}
	done       chan struct{}
}

func newRunner(id string, field *physics.Playfield, b Broadcaster, lb LeaderboardPublisher, log *zap.SugaredLogger) *Runner {
	r := &Runner{
		id:          id,
		created:     time.Now(),
		field:       field,
		requests:    make(chan request, 64),
		broadcast:   b,
		leaderboard: lb,
		frameEvery:  1,
		log:         log,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	r.lastActive.Store(r.created.UnixNano())
	return r
}

func (r *Runner) ID() string { return r.id }

// Notify buffers a notification raised during a frame or a command.
func (r *Runner) Notify(n game.Notification) {
	switch d := n.Data.(type) {
	case game.JackpotResult:
		metrics.Spins.WithLabelValues(string(d.Payout.Tier)).Inc()
	case game.GameOver:
		metrics.GamesOver.Inc()
	}
	r.pending = append(r.pending, n)
}

// Run steps the session every interval until ctx is done or Stop is called.
func (r *Runner) Run(ctx context.Context, interval time.Duration) {
	defer close(r.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case req := <-r.requests:
			req.reply <- r.apply(ctx, req.cmd)
			r.refresh()
			r.flush()
		case now := <-ticker.C:
			r.step(now.Sub(last).Seconds())
			last = now
		}
	}
}

func (r *Runner) step(dt float64) {
	r.sess.Update(dt)
	r.frames++
	metrics.Frames.Inc()
	r.refresh()
	r.flush()
	if r.broadcast != nil && r.frames%r.frameEvery == 0 {
		r.broadcast.Broadcast(r.id, Message{Type: MsgFrame, Data: r.Snapshot()})
	}
}

func (r *Runner) refresh() {
	f := Frame{ID: r.id, Snapshot: r.sess.Snapshot(), Balls: r.field.Balls()}
	r.mu.Lock()
	r.frame = f
	r.mu.Unlock()
}

func (r *Runner) flush() {
	if len(r.pending) == 0 {
		return
	}
	if r.broadcast != nil {
		notes := make([]game.Notification, len(r.pending))
		copy(notes, r.pending)
		r.broadcast.Broadcast(r.id, Message{Type: MsgNotifications, Data: notes})
	}
	r.pending = r.pending[:0]
}

func (r *Runner) apply(ctx context.Context, cmd Command) Result {
	var res Result
	switch cmd.Type {
	case CmdStart:
		res.Accepted = r.sess.Start()
	case CmdFireCannon:
		res.Accepted = r.sess.FireCannon()
		if res.Accepted {
			metrics.BallsSpawned.Inc()
		}
	case CmdAimCannon:
		res.Angle, res.Accepted = r.sess.AimCannon(cmd.Angle)
	case CmdNudgeCannon:
		res.Angle, res.Accepted = r.sess.NudgeCannon(cmd.Delta)
	case CmdFlipper:
		side, err := ParseSide(cmd.Side)
		if err != nil {
			res.Error = err.Error()
			break
		}
		res.Accepted = r.sess.SetFlipper(side, cmd.Active)
	case CmdTriggerJackpot:
		res.Accepted = r.sess.TriggerJackpot()
	case CmdRestart:
		res.Accepted = r.sess.Restart()
	case CmdSubmitHighScore:
		res = r.submitHighScore(ctx, cmd.Initials)
	default:
		res.Error = "unknown command " + strconv.Quote(string(cmd.Type))
	}
	metrics.Commands.WithLabelValues(string(cmd.Type), strconv.FormatBool(res.Accepted)).Inc()
	return res
}

func (r *Runner) submitHighScore(ctx context.Context, initials string) Result {
	rank, ok, err := r.sess.SubmitHighScore(ctx, initials)
	if err != nil {
		r.log.Warnw("submit high score", "error", err)
		return Result{Error: err.Error()}
	}
	if !ok {
		return Result{}
	}
	metrics.HighScores.Inc()
	if r.leaderboard != nil {
		snap := r.sess.Snapshot()
		entry := game.HighScoreEntry{Score: snap.Score, Initials: snap.LastInitials, Date: time.Now().UTC(), Rank: rank}
		if err := r.leaderboard.PublishHighScore(ctx, entry); err != nil {
			r.log.Warnw("publish high score", "error", err)
		}
	}
	return Result{Accepted: true, Rank: rank}
}

// Submit queues a command and waits for the runner to apply it.
func (r *Runner) Submit(ctx context.Context, cmd Command) (Result, error) {
	r.lastActive.Store(time.Now().UnixNano())
	req := request{cmd: cmd, reply: make(chan Result, 1)}
	select {
	case r.requests <- req:
	case <-r.done:
		return Result{}, ErrSessionEnded
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res, nil
	case <-r.done:
		return Result{}, ErrSessionEnded
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Snapshot returns the last published frame.
func (r *Runner) Snapshot() Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := r.frame
	f.Balls = append([]physics.BallState(nil), r.frame.Balls...)
	return f
}

// LastActive is the time of the last submitted command.
func (r *Runner) LastActive() time.Time {
	return time.Unix(0, r.lastActive.Load())
}

// Stop asks the runner to exit. It reports whether this call stopped it.
func (r *Runner) Stop() bool {
	stopped := false
	r.stopOnce.Do(func() {
		close(r.stop)
		stopped = true
	})
	return stopped
}

// Done is closed once the runner goroutine has exited.
func (r *Runner) Done() <-chan struct{} { return r.done }
