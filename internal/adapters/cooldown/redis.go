package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis keeps bot action cooldowns as expiring keys so they survive restarts and are shared between instances.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server at url, e.g. redis://localhost:6379/0.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("connected to redis")

	return &Redis{client: client}, nil
}

func (r *Redis) Active(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("error checking cooldown %s: %w", key, err)
	}

	return n > 0, nil
}

func (r *Redis) Start(ctx context.Context, key string, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, key, time.Now().Add(d).Unix(), d).Err(); err != nil {
		return fmt.Errorf("error starting cooldown %s: %w", key, err)
	}

	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
