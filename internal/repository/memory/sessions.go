package memory

import (
	"context"
	"sync"
	"time"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository"
)

// SessionStore keeps administrator sessions in process memory. Suitable for
// a single-instance deployment and for tests; multi-instance deployments use
// the Redis implementation instead.
//
// All read-modify-write sequences happen under one mutex so the
// single-active-session invariant holds even with concurrent handlers.
type SessionStore struct {
	mu       sync.Mutex
	byAdmin  map[string]*storedSession
	byID     map[string]*storedSession
	now      func() time.Time
	stopOnce sync.Once
	stop     chan struct{}
}

// storedSession pairs a session with the moment it stopped being active, so
// the sweep can honor the retention window for ended sessions.
type storedSession struct {
	session domain.AdminSession
	endedAt time.Time
}

// NewSessionStore constructs an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byAdmin: make(map[string]*storedSession),
		byID:    make(map[string]*storedSession),
		now:     func() time.Time { return time.Now().UTC() },
		stop:    make(chan struct{}),
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (s *SessionStore) WithClock(clock func() time.Time) *SessionStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Swap installs the session as the sole active session for its admin and
// returns the previously active one, if any.
func (s *SessionStore) Swap(_ context.Context, session domain.AdminSession) (*domain.AdminSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prior *domain.AdminSession
	if existing, ok := s.byAdmin[session.AdminID]; ok && existing.session.IsActive {
		existing.session.IsActive = false
		existing.endedAt = s.now()
		snapshot := existing.session
		prior = &snapshot
	}

	stored := &storedSession{session: session}
	stored.session.IsActive = true
	s.byAdmin[session.AdminID] = stored
	s.byID[session.ID] = stored

	return prior, nil
}

// GetActive returns the active session for the admin.
func (s *SessionStore) GetActive(_ context.Context, adminID string) (*domain.AdminSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byAdmin[adminID]
	if !ok || !stored.session.IsActive {
		return nil, repository.ErrNotFound
	}

	snapshot := stored.session
	return &snapshot, nil
}

// GetByID returns a session by id regardless of activity state.
func (s *SessionStore) GetByID(_ context.Context, sessionID string) (*domain.AdminSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	snapshot := stored.session
	return &snapshot, nil
}

// Invalidate deactivates the admin's active session. Idempotent.
func (s *SessionStore) Invalidate(_ context.Context, adminID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.byAdmin[adminID]; ok && stored.session.IsActive {
		stored.session.IsActive = false
		stored.endedAt = s.now()
	}
	return nil
}

// Touch updates last-seen metadata on the admin's active session.
func (s *SessionStore) Touch(_ context.Context, adminID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byAdmin[adminID]
	if !ok || !stored.session.IsActive {
		return repository.ErrNotFound
	}
	stored.session.Touch(at)
	return nil
}

// Sweep removes sessions that expired or ended before the cutoff and returns
// how many were dropped. Ended sessions newer than the cutoff stay readable
// by id. Keeps memory bounded for administrators who never return.
func (s *SessionStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, stored := range s.byID {
		ended := !stored.session.IsActive && stored.endedAt.Before(cutoff)
		expired := !stored.session.ExpiresAt.IsZero() && stored.session.ExpiresAt.Before(cutoff)
		if !ended && !expired {
			continue
		}

		delete(s.byID, id)
		if current, ok := s.byAdmin[stored.session.AdminID]; ok && current.session.ID == id {
			delete(s.byAdmin, stored.session.AdminID)
		}
		removed++
	}
	return removed
}

// StartJanitor runs a background sweep at the supplied interval. Invalidated
// sessions are retained for the retention window so recent logouts stay
// inspectable by id.
func (s *SessionStore) StartJanitor(interval, retention time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep(s.now().Add(-retention))
			case <-s.stop:
				return
			}
		}
	}()
}

// Close stops the janitor goroutine.
func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

var _ port.SessionStore = (*SessionStore)(nil)
