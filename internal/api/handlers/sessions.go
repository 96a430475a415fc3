package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/config"
	"github.com/playmatatu/pegfall/internal/middleware"
	"github.com/playmatatu/pegfall/internal/session"
)

const commandTimeout = 3 * time.Second

// CreateSession starts a session and returns a bearer token bound to it.
func CreateSession(m *session.Manager, cfg *config.Config, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := m.Create(c.Request.Context())
		if err != nil {
			log.Errorw("create session", "error", err)
			abortWithError(c, err)
			return
		}

		token, exp, err := middleware.IssueSessionToken(cfg.JWTSecret, r.ID(), cfg.SessionTokenTTL())
		if err != nil {
			log.Errorw("sign session token", "error", err)
			m.End(c.Request.Context(), r.ID(), session.ReasonEnded)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.Header("X-Session-ID", r.ID())
		c.JSON(http.StatusCreated, gin.H{
			"session_id": r.ID(),
			"token":      token,
			"expires_at": exp.UTC().Format(time.RFC3339),
			"frame":      r.Snapshot(),
		})
	}
}

// GetSession returns the live frame, or the stored summary of a session
// that has ended.
func GetSession(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetString(middleware.SessionIDKey)
		r, err := m.Get(id)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"ended": false, "frame": r.Snapshot()})
			return
		}

		snap, err := m.Summary(c.Request.Context(), id)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ended": true, "summary": snap})
	}
}

// SubmitCommand applies one command. A command refused by the game state is
// still a 200 with accepted=false.
func SubmitCommand(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd session.Command
		if err := c.ShouldBindJSON(&cmd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command body"})
			return
		}
		if err := cmd.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
		defer cancel()
		res, err := m.Submit(ctx, c.GetString(middleware.SessionIDKey), cmd)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// EndSession stops the session; its summary stays readable for a day.
func EndSession(m *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := m.End(c.Request.Context(), c.GetString(middleware.SessionIDKey), session.ReasonEnded)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
