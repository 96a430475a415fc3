package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/admin"
	"github.com/playmatatu/pegfall/internal/api/handlers"
	"github.com/playmatatu/pegfall/internal/config"
	"github.com/playmatatu/pegfall/internal/middleware"
	"github.com/playmatatu/pegfall/internal/session"
	"github.com/playmatatu/pegfall/internal/store"
	"github.com/playmatatu/pegfall/internal/ws"
)

// Deps are the server components the routes are wired to.
type Deps struct {
	Config      *config.Config
	Manager     *session.Manager
	Leaderboard store.Leaderboard
	Settings    store.Settings
	Hub         *ws.Hub
	Fanout      *ws.Fanout
	Admin       *admin.Verifier
	Log         *zap.SugaredLogger
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, d Deps) {
	cfg := d.Config
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(d.Manager))
		v1.GET("/config", handlers.GetConfig(d.Manager))

		v1.POST("/sessions", handlers.CreateSession(d.Manager, cfg, d.Log))
		sessions := v1.Group("/sessions/:id", middleware.RequireSessionToken(cfg.JWTSecret))
		{
			sessions.GET("", handlers.GetSession(d.Manager))
			sessions.POST("/commands", handlers.SubmitCommand(d.Manager))
			sessions.DELETE("", handlers.EndSession(d.Manager))
			sessions.GET("/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleWebSocket(d.Hub, d.Manager))
		}

		v1.GET("/highscores", handlers.GetHighScores(d.Leaderboard, d.Log))
		v1.GET("/highscores/check", handlers.CheckHighScore(d.Leaderboard))

		settings := v1.Group("/settings")
		{
			settings.GET("", handlers.GetSettings(d.Settings, d.Log))
			settings.GET("/:key", handlers.GetSetting(d.Settings))
			settings.PUT("", handlers.PutSetting(d.Settings, d.Log))
		}

		adminGroup := v1.Group("/admin", middleware.RequireAdmin(d.Admin))
		{
			adminGroup.POST("/leaderboard/reset", handlers.ResetLeaderboard(d.Leaderboard, d.Fanout, d.Log))
		}
	}
}
