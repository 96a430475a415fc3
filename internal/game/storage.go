package game

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
)

// MaxHighScores is the length of the leaderboard.
const MaxHighScores = 10

// SettingLastInitials is the settings key holding the last submitted initials.
const SettingLastInitials = "last_initials"

var ErrInvalidInitials = errors.New("initials must be exactly 3 letters or digits")

// HighScoreEntry is one leaderboard row. Rank is assigned by position.
type HighScoreEntry struct {
	ID       int64     `json:"-" db:"id"`
	Score    uint64    `json:"score" db:"score"`
	Initials string    `json:"initials" db:"initials"`
	Date     time.Time `json:"date" db:"created_at"`
	Rank     int       `json:"rank" db:"-"`
}

// HighScoreStore persists the leaderboard: at most MaxHighScores entries,
// sorted by score descending.
type HighScoreStore interface {
	IsHighScore(ctx context.Context, score uint64) (bool, error)
	// AddHighScore stores the entry and returns its rank, or 0 when it did
	// not place.
	AddHighScore(ctx context.Context, entry HighScoreEntry) (int, error)
	TopScores(ctx context.Context, limit int) ([]HighScoreEntry, error)
}

// SettingsStore is an opaque key-value store.
type SettingsStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// NormalizeInitials upper-cases and validates 3-character initials.
func NormalizeInitials(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return "", ErrInvalidInitials
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return "", ErrInvalidInitials
		}
	}
	return s, nil
}

// Qualifies reports whether score would place on a board holding the given
// scores, sorted descending. Zero never places.
func Qualifies(board []uint64, score uint64) bool {
	if score == 0 {
		return false
	}
	if len(board) < MaxHighScores {
		return true
	}
	return score > board[len(board)-1]
}
