package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
)

// FixedWindowConfig tunes key naming.
type FixedWindowConfig struct {
	KeyPrefix string
}

// RateLimitStore persists fixed-window counters in Redis. INCR is atomic on
// the server, and the expiry set on the first increment anchors the window
// at the first call for the key. Key expiry doubles as bucket eviction, so
// stale buckets never accumulate.
type RateLimitStore struct {
	client *redis.Client
	cfg    FixedWindowConfig
}

// NewRateLimitStore constructs a Redis-backed rate-limit store.
func NewRateLimitStore(client *redis.Client, cfg FixedWindowConfig) *RateLimitStore {
	return &RateLimitStore{client: client, cfg: cfg}
}

// Incr increments the counter for the key inside the current fixed window.
func (s *RateLimitStore) Incr(ctx context.Context, key string, window time.Duration, _ time.Time) (int, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}

	full := key
	if s.cfg.KeyPrefix != "" {
		full = fmt.Sprintf("%s:%s", s.cfg.KeyPrefix, key)
	}

	count, err := s.client.Incr(ctx, full).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr: %w", err)
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, full, window).Err(); err != nil {
			return 0, fmt.Errorf("redis pexpire: %w", err)
		}
	}

	return int(count), nil
}

var _ port.RateLimitStore = (*RateLimitStore)(nil)
