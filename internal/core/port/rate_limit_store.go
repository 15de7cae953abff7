package port

import (
	"context"
	"time"
)

// RateLimitStore maintains fixed-window counters. Incr starts a fresh window
// on the first call for a key (or after the previous window elapsed),
// increments the counter, and returns the post-increment count. The
// read-and-increment must be atomic with respect to concurrent callers for
// the same key.
type RateLimitStore interface {
	Incr(ctx context.Context, key string, window time.Duration, now time.Time) (count int, err error)
}
