package infra

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a redis client from REDIS_URL. Redis backs only the
// duplicate-submission guard, so a missing URL returns a nil client and the
// guard degrades to a no-op.
func NewRedisClient(cfg *Config) (*redis.Client, error) {
	if cfg == nil || cfg.RedisURL == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opt), nil
}
