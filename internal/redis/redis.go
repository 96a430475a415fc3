package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Key names shared by the server components.
const (
	SettingsKey     = "pegfall:settings"
	AdminTokenKey   = "pegfall:admin:token_hash"
	IdleSessionsKey = "session_idle"
	EventsChannel   = "pegfall_events"
)

// SessionSummaryKey holds the final snapshot of an ended session.
func SessionSummaryKey(sessionID string) string {
	return fmt.Sprintf("session:%s:summary", sessionID)
}

// Connect establishes a connection to Redis
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
