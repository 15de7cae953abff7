package memory

import (
	"context"
	"sync"
	"time"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
)

type bucket struct {
	windowStart time.Time
	count       int
}

// RateLimitStore keeps fixed-window counters in process memory. The window
// is anchored at the first call for a key and resets once the window
// duration has elapsed.
type RateLimitStore struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	stopOnce sync.Once
	stop     chan struct{}
	now      func() time.Time
}

// NewRateLimitStore constructs an empty in-memory rate-limit store.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Incr advances the counter for the key inside one critical section: window
// reset check and increment never interleave with another caller's.
func (s *RateLimitStore) Incr(_ context.Context, key string, window time.Duration, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]
	if !ok || now.Sub(b.windowStart) >= window {
		b = &bucket{windowStart: now}
		s.buckets[key] = b
	}

	b.count++
	return b.count, nil
}

// Sweep drops buckets whose window started before the cutoff and returns how
// many were removed.
func (s *RateLimitStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, b := range s.buckets {
		if b.windowStart.Before(cutoff) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps stale buckets in the background. maxWindow should be
// at least as long as the largest window in use.
func (s *RateLimitStore) StartJanitor(interval, maxWindow time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(s.now().Add(-maxWindow))
			case <-s.stop:
				return
			}
		}
	}()
}

// Close stops the janitor goroutine.
func (s *RateLimitStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

var _ port.RateLimitStore = (*RateLimitStore)(nil)
