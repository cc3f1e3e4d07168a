package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/flashmac/repair-tracker/internal/config"
)

const lastSweepKey = "repair-tracker:last_stale_sweep"

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// RecordStaleSweep stores the time of the latest stale-ticket sweep.
// Best effort: sweep outcome does not depend on this write.
func (r *Redis) RecordStaleSweep(ctx context.Context, at time.Time) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Set(ctx, lastSweepKey, at.UTC().Format(time.RFC3339), 0).Err()
}

// LastStaleSweep returns the time of the latest recorded sweep, zero when none.
func (r *Redis) LastStaleSweep(ctx context.Context) (time.Time, error) {
	if r == nil || r.Client == nil {
		return time.Time{}, errors.New("redis client not configured")
	}
	val, err := r.Client.Get(ctx, lastSweepKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, val)
}
