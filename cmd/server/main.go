package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/admin"
	"github.com/playmatatu/pegfall/internal/api"
	"github.com/playmatatu/pegfall/internal/config"
	"github.com/playmatatu/pegfall/internal/database"
	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/logger"
	"github.com/playmatatu/pegfall/internal/migrations"
	"github.com/playmatatu/pegfall/internal/redis"
	"github.com/playmatatu/pegfall/internal/session"
	"github.com/playmatatu/pegfall/internal/store"
	"github.com/playmatatu/pegfall/internal/ws"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if _, err := maxprocs.Set(maxprocs.Logger(log.Infof)); err != nil {
		log.Warnw("set GOMAXPROCS", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	tuning := game.DefaultTuning()
	if cfg.ReelTablePath != "" {
		t, err := game.LoadTuning(cfg.ReelTablePath)
		if err != nil {
			return err
		}
		tuning = t
		log.Infow("loaded tuning", "path", cfg.ReelTablePath)
	}
	if cfg.MaxFrameDelta > 0 {
		tuning.MaxFrameDelta = cfg.MaxFrameDelta
	}

	var (
		board    store.Leaderboard = store.NewMemoryHighScores()
		settings store.Settings    = store.NewMemorySettings()
		rdb      *goredis.Client
	)

	if cfg.DatabaseURL != "" {
		if cfg.MigrateOnStart {
			log.Infow("running DB migrations on startup")
			if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations", log.Named("migrate")); err != nil {
				return err
			}
		}
		db, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		board = store.NewHighScores(db)
	} else {
		log.Warnw("DATABASE_URL not set; high scores are kept in memory")
	}

	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
		settings = store.NewRedisSettings(rdb)
	} else {
		log.Warnw("REDIS_URL not set; settings are kept in memory")
	}

	hub := ws.NewHub(log.Named("ws"))
	go hub.Run(ctx)
	fanout := ws.NewFanout(rdb, hub, log.Named("events"))
	fanout.Start(ctx)

	manager, err := session.NewManager(tuning,
		session.WithStores(board, settings),
		session.WithRedis(rdb),
		session.WithBroadcaster(hub),
		session.WithLeaderboardPublisher(fanout),
		session.WithTickInterval(cfg.TickInterval()),
		session.WithIdleTimeout(cfg.SessionIdleTimeout()),
		session.WithMaxSessions(cfg.MaxSessions),
		session.WithLogger(log.Named("session")),
	)
	if err != nil {
		return err
	}
	manager.StartIdleWorker(ctx, cfg.IdlePollInterval())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, api.Deps{
		Config:      cfg,
		Manager:     manager,
		Leaderboard: board,
		Settings:    settings,
		Hub:         hub,
		Fanout:      fanout,
		Admin:       admin.NewVerifier(rdb, cfg.AdminTokenHash, log.Named("admin")),
		Log:         log.Named("api"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Infow("starting pegfall server", "port", cfg.Port, "env", cfg.Environment, "tick_hz", cfg.TickRateHz)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	manager.Shutdown(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}
