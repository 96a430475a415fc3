package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	rediskeys "github.com/playmatatu/pegfall/internal/redis"
)

var (
	ErrNoAdminToken      = errors.New("admin token not configured")
	ErrInvalidAdminToken = errors.New("invalid admin token")
)

// HashToken bcrypt-hashes a plain admin token.
func HashToken(plainToken string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainToken), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hashed), nil
}

// VerifyAdminToken checks if the provided token matches the stored hash
func VerifyAdminToken(hashedToken, plainToken string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedToken), []byte(plainToken))
	return err == nil
}

// Verifier checks admin tokens. A hash stored in redis by seed-admin takes
// precedence over the one from the environment.
type Verifier struct {
	rdb        *redis.Client
	staticHash string
	log        *zap.SugaredLogger
}

func NewVerifier(rdb *redis.Client, staticHash string, log *zap.SugaredLogger) *Verifier {
	return &Verifier{rdb: rdb, staticHash: staticHash, log: log}
}

func (v *Verifier) Verify(ctx context.Context, token string) error {
	hash := v.currentHash(ctx)
	if hash == "" {
		return ErrNoAdminToken
	}
	if token == "" || !VerifyAdminToken(hash, token) {
		v.log.Warnw("admin token rejected")
		return ErrInvalidAdminToken
	}
	return nil
}

func (v *Verifier) currentHash(ctx context.Context) string {
	if v.rdb != nil {
		h, err := v.rdb.Get(ctx, rediskeys.AdminTokenKey).Result()
		switch {
		case err == nil && h != "":
			return h
		case err != nil && !errors.Is(err, redis.Nil):
			v.log.Warnw("read admin token hash", "error", err)
		}
	}
	return v.staticHash
}

// StoreTokenHash saves a token hash where every server node will pick it up.
func StoreTokenHash(ctx context.Context, rdb *redis.Client, hash string) error {
	return rdb.Set(ctx, rediskeys.AdminTokenKey, hash, 0).Err()
}
