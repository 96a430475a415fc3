package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/playmatatu/pegfall/internal/game"
)

var _ game.HighScoreStore = (*HighScores)(nil)

// leaderboardLock serializes leaderboard writers across server nodes.
const leaderboardLock = 0x7065676661 // "pegfa"

// HighScores is the postgres leaderboard. The table may briefly hold more
// than MaxHighScores rows inside a transaction; every committed write trims
// it back.
type HighScores struct {
	db *sqlx.DB
}

func NewHighScores(db *sqlx.DB) *HighScores {
	return &HighScores{db: db}
}

const topScoresQuery = `
	SELECT id, score, initials, created_at
	FROM high_scores
	ORDER BY score DESC, created_at ASC, id ASC
	LIMIT $1
`

func (h *HighScores) IsHighScore(ctx context.Context, score uint64) (bool, error) {
	var board []uint64
	err := h.db.SelectContext(ctx, &board, `SELECT score FROM high_scores ORDER BY score DESC LIMIT $1`, game.MaxHighScores)
	if err != nil {
		return false, fmt.Errorf("load leaderboard: %w", err)
	}
	return game.Qualifies(board, score), nil
}

// AddHighScore inserts the entry when it places and trims the table to the
// top MaxHighScores. Ties rank below older entries.
func (h *HighScores) AddHighScore(ctx context.Context, entry game.HighScoreEntry) (int, error) {
	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, leaderboardLock); err != nil {
		return 0, fmt.Errorf("lock leaderboard: %w", err)
	}

	var board []uint64
	if err := tx.SelectContext(ctx, &board, `SELECT score FROM high_scores ORDER BY score DESC LIMIT $1`, game.MaxHighScores); err != nil {
		return 0, fmt.Errorf("load leaderboard: %w", err)
	}
	if !game.Qualifies(board, entry.Score) {
		return 0, nil
	}

	var id int64
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO high_scores (score, initials, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, entry.Score, entry.Initials, entry.Date).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert high score: %w", err)
	}

	var top []game.HighScoreEntry
	if err := tx.SelectContext(ctx, &top, topScoresQuery, game.MaxHighScores); err != nil {
		return 0, fmt.Errorf("load leaderboard: %w", err)
	}
	rank := 0
	keep := make([]int64, 0, len(top))
	for i, e := range top {
		keep = append(keep, e.ID)
		if e.ID == id {
			rank = i + 1
		}
	}

	query, args, err := sqlx.In(`DELETE FROM high_scores WHERE id NOT IN (?)`, keep)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("trim leaderboard: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return rank, nil
}

func (h *HighScores) TopScores(ctx context.Context, limit int) ([]game.HighScoreEntry, error) {
	if limit <= 0 || limit > game.MaxHighScores {
		limit = game.MaxHighScores
	}
	var entries []game.HighScoreEntry
	if err := h.db.SelectContext(ctx, &entries, topScoresQuery, limit); err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Reset empties the leaderboard and records who did it.
func (h *HighScores) Reset(ctx context.Context, by string) (int, error) {
	tx, err := h.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, leaderboardLock); err != nil {
		return 0, fmt.Errorf("lock leaderboard: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM high_scores`)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count removed scores: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO leaderboard_resets (removed, reset_by, created_at)
		VALUES ($1, $2, NOW())
	`, removed, by); err != nil {
		return 0, fmt.Errorf("record reset: %w", err)
	}
	return int(removed), tx.Commit()
}
