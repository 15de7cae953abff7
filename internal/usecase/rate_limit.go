package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
)

// ErrRateLimitExceeded indicates the fixed-window quota for an admin/action
// pair is exhausted. The transport layer translates this into a 429.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// RateLimitResult reports the outcome of one quota check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
}

// RateLimitService bounds the call rate of sensitive admin actions with a
// fixed-window counter per (admin, action) key. Every invocation counts,
// whether or not the guarded action later succeeds.
type RateLimitService struct {
	store port.RateLimitStore
	now   func() time.Time
}

// NewRateLimitService constructs a RateLimitService.
func NewRateLimitService(store port.RateLimitStore) *RateLimitService {
	return &RateLimitService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *RateLimitService) WithClock(clock func() time.Time) *RateLimitService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Check records one invocation for the admin/action pair and reports whether
// it fits the limit. The first through limit-th calls in a window are
// allowed with strictly decreasing remaining; later calls in the same window
// are rejected with remaining zero. Once the window has elapsed the next
// call starts a fresh one.
func (s *RateLimitService) Check(ctx context.Context, adminID, action string, limit int, window time.Duration) (RateLimitResult, error) {
	if strings.TrimSpace(adminID) == "" {
		return RateLimitResult{}, fmt.Errorf("admin id is required")
	}
	if strings.TrimSpace(action) == "" {
		return RateLimitResult{}, fmt.Errorf("action is required")
	}
	if limit <= 0 || window <= 0 {
		return RateLimitResult{}, fmt.Errorf("limit and window must be positive")
	}

	key := fmt.Sprintf("%s:%s", adminID, action)

	count, err := s.store.Incr(ctx, key, window, s.now())
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("increment rate limit: %w", err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Allowed:   count <= limit,
		Remaining: remaining,
	}, nil
}
