package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRedis answers the idle worker's commands without a server.
type scriptedRedis struct {
	mu      sync.Mutex
	due     []string
	zremErr error
}

func (h *scriptedRedis) set(due []string, zremErr error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.due = due
	h.zremErr = zremErr
}

func (h *scriptedRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *scriptedRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *scriptedRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		h.mu.Lock()
		defer h.mu.Unlock()

		switch c := cmd.(type) {
		case *redis.StringSliceCmd:
			if c.Name() == "zrangebyscore" {
				c.SetVal(h.due)
			}
		case *redis.IntCmd:
			if c.Name() == "zrem" {
				if h.zremErr != nil {
					c.SetErr(h.zremErr)
					return h.zremErr
				}
				c.SetVal(1)
			}
		}
		return nil
	}
}

func TestReapDueKeepsSessionWhenClaimFails(t *testing.T) {
	hook := &scriptedRedis{}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(hook)
	t.Cleanup(func() { rdb.Close() })

	m, _ := newTestManager(t, WithRedis(rdb), WithIdleTimeout(time.Minute))
	ctx := context.Background()

	r, err := m.Create(ctx)
	require.NoError(t, err)
	later := time.Now().Add(2 * time.Minute)
	m.now = func() time.Time { return later }

	hook.set([]string{r.ID()}, errors.New("connection reset"))
	assert.Zero(t, m.reapIdle(ctx))
	_, err = m.Get(r.ID())
	assert.NoError(t, err, "a failed claim must not end the session")

	hook.set([]string{r.ID()}, nil)
	assert.Equal(t, 1, m.reapIdle(ctx))
	_, err = m.Get(r.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
