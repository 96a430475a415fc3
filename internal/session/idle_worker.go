package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	rediskeys "github.com/playmatatu/pegfall/internal/redis"
)

// StartIdleWorker ends sessions that received no command within the idle
// timeout. With redis the due sessions come from the session_idle sorted
// set; without it the registry is scanned.
func (m *Manager) StartIdleWorker(ctx context.Context, poll time.Duration) {
	if poll <= 0 {
		m.log.Warnw("idle worker not started", "poll", poll)
		return
	}
	m.log.Infow("idle worker started", "poll", poll, "timeout", m.idleTimeout)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				m.log.Infow("idle worker stopping")
				return
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				if n := m.reapIdle(ctx); n > 0 {
					m.log.Infow("reaped idle sessions", "count", n)
				}
			}
		}
	}()
}

func (m *Manager) reapIdle(ctx context.Context) int {
	if m.rdb != nil {
		return m.reapDue(ctx)
	}
	reaped := 0
	cutoff := m.now().Add(-m.idleTimeout)
	for _, id := range m.sessions.Keys() {
		r, ok := m.sessions.Peek(id)
		if !ok || r.LastActive().After(cutoff) {
			continue
		}
		if err := m.End(ctx, id, ReasonIdle); err == nil {
			reaped++
		}
	}
	return reaped
}

func (m *Manager) reapDue(ctx context.Context) int {
	now := m.now()
	members, err := m.rdb.ZRangeByScore(ctx, rediskeys.IdleSessionsKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.Unix(), 10),
	}).Result()
	if err != nil {
		m.log.Warnw("fetch idle sessions", "error", err)
		return 0
	}

	reaped := 0
	for _, id := range members {
		removed, err := m.rdb.ZRem(ctx, rediskeys.IdleSessionsKey, id).Result()
		if err != nil {
			m.log.Warnw("claim idle session", "session_id", id, "error", err)
			continue
		}
		// another node claimed it
		if removed == 0 {
			continue
		}
		r, ok := m.sessions.Peek(id)
		if !ok {
			continue
		}
		if last := r.LastActive(); now.Sub(last) < m.idleTimeout {
			m.scheduleIdle(ctx, r, last)
			continue
		}
		if err := m.End(ctx, id, ReasonIdle); err != nil && !errors.Is(err, ErrSessionNotFound) {
			m.log.Warnw("end idle session", "session_id", id, "error", err)
			continue
		}
		reaped++
	}
	return reaped
}
