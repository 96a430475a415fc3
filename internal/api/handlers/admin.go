package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/store"
	"github.com/playmatatu/pegfall/internal/ws"
)

// ResetLeaderboard wipes the high-score table and tells every client.
func ResetLeaderboard(board store.Leaderboard, fanout *ws.Fanout, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		removed, err := board.Reset(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Errorw("reset leaderboard", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if err := fanout.PublishReset(c.Request.Context()); err != nil {
			log.Warnw("publish leaderboard reset", "error", err)
		}
		log.Infow("leaderboard reset", "removed", removed, "ip", c.ClientIP())
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	}
}
