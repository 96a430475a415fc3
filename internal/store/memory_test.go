package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatatu/pegfall/internal/game"
)

func entry(score uint64, initials string) game.HighScoreEntry {
	return game.HighScoreEntry{Score: score, Initials: initials, Date: time.Now()}
}

func TestMemoryHighScoresRanking(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryHighScores()

	rank, err := m.AddHighScore(ctx, entry(500, "AAA"))
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	rank, _ = m.AddHighScore(ctx, entry(900, "BBB"))
	assert.Equal(t, 1, rank)

	// equal scores rank below the older entry
	rank, _ = m.AddHighScore(ctx, entry(500, "CCC"))
	assert.Equal(t, 3, rank)

	top, err := m.TopScores(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"BBB", "AAA", "CCC"}, []string{top[0].Initials, top[1].Initials, top[2].Initials})
	assert.Equal(t, []int{1, 2, 3}, []int{top[0].Rank, top[1].Rank, top[2].Rank})
}

func TestMemoryHighScoresCapsAtTen(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryHighScores()
	for i := 1; i <= game.MaxHighScores; i++ {
		_, err := m.AddHighScore(ctx, entry(uint64(i*100), "ZZZ"))
		require.NoError(t, err)
	}

	ok, _ := m.IsHighScore(ctx, 100)
	assert.False(t, ok, "tying the lowest entry does not place on a full board")
	ok, _ = m.IsHighScore(ctx, 101)
	assert.True(t, ok)

	rank, err := m.AddHighScore(ctx, entry(50, "LOW"))
	require.NoError(t, err)
	assert.Zero(t, rank)

	rank, _ = m.AddHighScore(ctx, entry(550, "MID"))
	assert.Equal(t, 6, rank)

	top, _ := m.TopScores(ctx, 100)
	require.Len(t, top, game.MaxHighScores)
	assert.Equal(t, uint64(200), top[len(top)-1].Score)
}

func TestMemoryHighScoresRejectsZero(t *testing.T) {
	m := NewMemoryHighScores()
	ok, err := m.IsHighScore(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryHighScoresReset(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryHighScores()
	m.AddHighScore(ctx, entry(10, "AAA"))
	m.AddHighScore(ctx, entry(20, "BBB"))

	n, err := m.Reset(ctx, "test")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	top, _ := m.TopScores(ctx, 10)
	assert.Empty(t, top)
}

func TestMemorySettings(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySettings()

	_, ok, err := s.Get(ctx, game.SettingLastInitials)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, game.SettingLastInitials, "ABC"))
	v, ok, _ := s.Get(ctx, game.SettingLastInitials)
	assert.True(t, ok)
	assert.Equal(t, "ABC", v)

	all, _ := s.All(ctx)
	assert.Equal(t, map[string]string{game.SettingLastInitials: "ABC"}, all)
}
