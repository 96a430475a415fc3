package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/playmatatu/pegfall/internal/admin"
	"github.com/playmatatu/pegfall/internal/config"
	"github.com/playmatatu/pegfall/internal/logger"
	"github.com/playmatatu/pegfall/internal/redis"
)

// seed-admin hashes ADMIN_TOKEN and stores it where every server node reads
// it. Without redis it prints an ADMIN_TOKEN_HASH line for the environment.
func main() {
	cfg := config.Load()
	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		adminToken = "change-me-in-production"
		log.Warnw("using default admin token; set ADMIN_TOKEN in production")
	}

	hash, err := admin.HashToken(adminToken)
	if err != nil {
		log.Fatalw("hash admin token", "error", err)
	}

	if cfg.RedisURL == "" {
		fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := redis.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalw("connect to redis", "error", err)
	}
	defer rdb.Close()

	if err := admin.StoreTokenHash(ctx, rdb, hash); err != nil {
		log.Fatalw("store admin token hash", "error", err)
	}
	log.Infow("admin token stored", "key", redis.AdminTokenKey)
}
