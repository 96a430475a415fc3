package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/game"
	rediskeys "github.com/playmatatu/pegfall/internal/redis"
	"github.com/playmatatu/pegfall/internal/session"
)

// Leaderboard event types carried on the events channel.
const (
	EventHighScore        = "high_score"
	EventLeaderboardReset = "leaderboard_reset"
)

type leaderboardEvent struct {
	Type  string               `json:"type"`
	Entry *game.HighScoreEntry `json:"entry,omitempty"`
}

// Fanout announces leaderboard changes to the clients of every server
// node. Without redis it only reaches the local hub.
type Fanout struct {
	rdb *redis.Client
	hub *Hub
	log *zap.SugaredLogger
}

var _ session.LeaderboardPublisher = (*Fanout)(nil)

func NewFanout(rdb *redis.Client, hub *Hub, log *zap.SugaredLogger) *Fanout {
	return &Fanout{rdb: rdb, hub: hub, log: log}
}

func (f *Fanout) PublishHighScore(ctx context.Context, entry game.HighScoreEntry) error {
	return f.publish(ctx, leaderboardEvent{Type: EventHighScore, Entry: &entry})
}

func (f *Fanout) PublishReset(ctx context.Context) error {
	return f.publish(ctx, leaderboardEvent{Type: EventLeaderboardReset})
}

func (f *Fanout) publish(ctx context.Context, ev leaderboardEvent) error {
	if f.rdb == nil {
		f.deliver(ev)
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	n, err := f.rdb.Publish(ctx, rediskeys.EventsChannel, b).Result()
	if err != nil {
		return err
	}
	f.log.Debugw("published leaderboard event", "type", ev.Type, "subscribers", n)
	return nil
}

// Start subscribes to the events channel and relays every event to the
// local hub until ctx is done.
func (f *Fanout) Start(ctx context.Context) {
	if f.rdb == nil {
		f.log.Infow("redis not configured; leaderboard events stay local")
		return
	}

	pubsub := f.rdb.Subscribe(ctx, rediskeys.EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		f.log.Infow("events subscriber started", "channel", rediskeys.EventsChannel)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev leaderboardEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					f.log.Warnw("invalid event payload", "error", err)
					continue
				}
				f.deliver(ev)
			}
		}
	}()
}

func (f *Fanout) deliver(ev leaderboardEvent) {
	switch ev.Type {
	case EventHighScore, EventLeaderboardReset:
		f.hub.BroadcastAll(session.Message{Type: session.MsgLeaderboard, Data: ev})
	default:
		f.log.Warnw("unknown event type", "type", ev.Type)
	}
}
