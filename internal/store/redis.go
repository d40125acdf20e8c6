package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/upliftapps/pulse/internal/schema"
)

// Redis is an externalized event store backed by a Redis list. RPUSH gives
// the atomic-append write path; LRANGE gives consistent ordered reads.
// Reads run under an explicit deadline and surface ErrQueryTimeout instead
// of blocking a dashboard query indefinitely.
type Redis struct {
	client       *redis.Client
	key          string
	queryTimeout time.Duration
}

// RedisOptions configures a Redis event store.
type RedisOptions struct {
	Addr         string
	Password     string
	DB           int
	Key          string
	QueryTimeout time.Duration
}

// NewRedis connects to Redis and returns the store.
func NewRedis(opts RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	key := opts.Key
	if key == "" {
		key = "pulse:events"
	}
	timeout := opts.QueryTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Redis{client: client, key: key, queryTimeout: timeout}
}

// Append serializes e and pushes it onto the tail of the event list.
func (r *Redis) Append(ctx context.Context, e schema.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", e.ID, err)
	}
	if err := r.client.RPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("appending event %s: %w", e.ID, err)
	}
	return nil
}

// Snapshot reads the whole event list in ingestion order. Events that fail
// to decode are skipped and logged rather than failing the query.
func (r *Redis) Snapshot(ctx context.Context) ([]schema.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, r.mapErr(err)
	}

	out := make([]schema.Event, 0, len(raw))
	for _, item := range raw {
		var e schema.Event
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			log.Warn().Err(err).Msg("Skipping undecodable event in redis store")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Len returns the event list length.
func (r *Redis) Len(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	n, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return 0, r.mapErr(err)
	}
	return int(n), nil
}

// Close releases the client connection.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) mapErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return err
}
