package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playmatatu/pegfall/internal/physics"
	"github.com/playmatatu/pegfall/internal/session"
)

// GetConfig returns the game tuning a front-end needs to draw the machine
// and the playfield.
func GetConfig(m *session.Manager) gin.HandlerFunc {
	layout := physics.NewStandardPlayfield()
	return func(c *gin.Context) {
		t := m.Tuning()
		c.JSON(http.StatusOK, gin.H{
			"initial_balls":    t.InitialBalls,
			"max_active_balls": t.MaxActiveBalls,
			"chute_threshold":  t.ChuteThreshold,
			"auto_spin_delay":  t.AutoSpinDelay,
			"spin_duration":    t.SpinDuration,
			"symbols":          t.Symbols,
			"cannon":           t.Cannon,
			"playfield":        layout,
		})
	}
}
