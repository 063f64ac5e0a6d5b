package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard rejects resubmission of the same asset by the same owner while a job
// for it is in flight. It is a best-effort dedupe convenience, not a
// correctness mechanism: the TTL releases the key on its own and a nil guard
// admits everything.
type Guard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewGuard(rdb *redis.Client, ttl time.Duration) *Guard {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Guard{rdb: rdb, ttl: ttl}
}

// Acquire reports false when a submission for (owner, assetURL) is already
// in flight.
func (g *Guard) Acquire(ctx context.Context, owner, assetURL string) (bool, error) {
	if g == nil || g.rdb == nil {
		return true, nil
	}
	ok, err := g.rdb.SetNX(ctx, submitKey(owner, assetURL), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency: acquire: %w", err)
	}
	return ok, nil
}

// Release drops the guard early, e.g. when the provider rejects the
// submission and the user should be free to retry immediately.
func (g *Guard) Release(ctx context.Context, owner, assetURL string) error {
	if g == nil || g.rdb == nil {
		return nil
	}
	return g.rdb.Del(ctx, submitKey(owner, assetURL)).Err()
}

func submitKey(owner, assetURL string) string {
	sum := sha256.Sum256([]byte(assetURL))
	return fmt.Sprintf("submit:%s:%s", owner, hex.EncodeToString(sum[:]))
}
