package store

import (
	"context"
	"slices"
	"sync"

	"github.com/playmatatu/pegfall/internal/game"
)

var (
	_ game.HighScoreStore = (*MemoryHighScores)(nil)
	_ game.SettingsStore  = (*MemorySettings)(nil)
)

// MemoryHighScores keeps the leaderboard in process. It backs the terminal
// front-end and servers started without a database.
type MemoryHighScores struct {
	mu      sync.Mutex
	entries []game.HighScoreEntry
	nextID  int64
}

func NewMemoryHighScores() *MemoryHighScores {
	return &MemoryHighScores{}
}

func (m *MemoryHighScores) IsHighScore(_ context.Context, score uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return game.Qualifies(m.board(), score), nil
}

func (m *MemoryHighScores) AddHighScore(_ context.Context, entry game.HighScoreEntry) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !game.Qualifies(m.board(), entry.Score) {
		return 0, nil
	}
	m.nextID++
	entry.ID = m.nextID

	// insert after every entry with an equal or higher score
	i, _ := slices.BinarySearchFunc(m.entries, entry.Score, func(e game.HighScoreEntry, s uint64) int {
		if e.Score >= s {
			return -1
		}
		return 1
	})
	m.entries = slices.Insert(m.entries, i, entry)
	if len(m.entries) > game.MaxHighScores {
		m.entries = m.entries[:game.MaxHighScores]
	}
	return i + 1, nil
}

func (m *MemoryHighScores) TopScores(_ context.Context, limit int) ([]game.HighScoreEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	out := make([]game.HighScoreEntry, limit)
	copy(out, m.entries)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

func (m *MemoryHighScores) Reset(_ context.Context, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	m.entries = nil
	return n, nil
}

func (m *MemoryHighScores) board() []uint64 {
	scores := make([]uint64, len(m.entries))
	for i, e := range m.entries {
		scores[i] = e.Score
	}
	return scores
}

type MemorySettings struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: make(map[string]string)}
}

func (m *MemorySettings) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemorySettings) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemorySettings) All(_ context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}
