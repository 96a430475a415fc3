package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/store"
)

// GetHighScores lists the leaderboard, best first.
func GetHighScores(board store.Leaderboard, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := game.MaxHighScores
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, game.MaxHighScores)
		}

		entries, err := board.TopScores(c.Request.Context(), limit)
		if err != nil {
			log.Errorw("load leaderboard", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if entries == nil {
			entries = []game.HighScoreEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"high_scores": entries})
	}
}

// CheckHighScore reports whether a score would place.
func CheckHighScore(board store.Leaderboard) gin.HandlerFunc {
	return func(c *gin.Context) {
		score, err := strconv.ParseUint(c.Query("score"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "score must be a non-negative integer"})
			return
		}
		ok, err := board.IsHighScore(c.Request.Context(), score)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"score": score, "is_high_score": ok})
	}
}
