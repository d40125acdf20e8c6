// Package auth validates the API keys presented by instrumented app builds
// on the HTTP surface. Keys are stored hashed in Postgres and validated
// results are cached in Redis.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/upliftapps/pulse/internal/config"
)

// ErrInvalidKey is returned for unknown, expired, or malformed API keys.
var ErrInvalidKey = errors.New("invalid API key")

const cacheTTL = 5 * time.Minute

// Validator checks API keys against the accounts database.
type Validator struct {
	db    *pgxpool.Pool
	cache *redis.Client
}

// NewValidator connects to Postgres and (optionally) Redis for caching. A
// nil redis config is fine; validation just skips the cache.
func NewValidator(pgCfg config.PostgresConfig, redisCfg config.RedisConfig) (*Validator, error) {
	db, err := pgxpool.New(context.Background(), pgCfg.DSN)
	if err != nil {
		return nil, err
	}

	v := &Validator{db: db}
	if redisCfg.Addr != "" {
		v.cache = redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
	}
	return v, nil
}

// ValidateKey resolves an API key to its account ID.
func (v *Validator) ValidateKey(ctx context.Context, apiKey string) (string, error) {
	if len(apiKey) < 12 {
		return "", ErrInvalidKey
	}

	cacheKey := "apikey:" + apiKey[:12]
	if v.cache != nil {
		if accountID, err := v.cache.Get(ctx, cacheKey).Result(); err == nil {
			return accountID, nil
		}
	}

	hash := sha256.Sum256([]byte(apiKey))
	keyHash := hex.EncodeToString(hash[:])

	var accountID string
	err := v.db.QueryRow(ctx, `
		SELECT account_id::text FROM api_keys
		WHERE key_hash = $1 AND is_active = true
		AND (expires_at IS NULL OR expires_at > NOW())
	`, keyHash).Scan(&accountID)
	if err != nil {
		return "", ErrInvalidKey
	}

	if v.cache != nil {
		v.cache.Set(ctx, cacheKey, accountID, cacheTTL)
	}

	go v.db.Exec(context.Background(), `
		UPDATE api_keys
		SET last_used_at = NOW(), request_count = request_count + 1
		WHERE key_hash = $1
	`, keyHash)

	return accountID, nil
}

// Close releases the database and cache connections.
func (v *Validator) Close() {
	if v.db != nil {
		v.db.Close()
	}
	if v.cache != nil {
		v.cache.Close()
	}
}
