// Package store holds the leaderboard and settings backends.
package store

import (
	"context"

	"github.com/playmatatu/pegfall/internal/game"
)

// Leaderboard is a high-score store that can also be listed and wiped.
type Leaderboard interface {
	game.HighScoreStore
	Reset(ctx context.Context, by string) (int, error)
}

// Settings is a settings store that can list every key.
type Settings interface {
	game.SettingsStore
	All(ctx context.Context) (map[string]string, error)
}

var (
	_ Leaderboard = (*HighScores)(nil)
	_ Leaderboard = (*MemoryHighScores)(nil)
	_ Settings    = (*RedisSettings)(nil)
	_ Settings    = (*MemorySettings)(nil)
)
