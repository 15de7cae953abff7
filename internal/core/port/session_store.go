package port

import (
	"context"
	"time"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
)

// SessionStore persists administrator sessions and enforces the
// single-active-session invariant at the storage level: Swap installs the
// supplied session as the sole active one for its admin and deactivates any
// predecessor in the same atomic step.
type SessionStore interface {
	// Swap stores the session as the only active session for
	// session.AdminID and returns the previously active session, if any.
	Swap(ctx context.Context, session domain.AdminSession) (prior *domain.AdminSession, err error)

	// GetActive returns the active session for the admin, or
	// repository.ErrNotFound when none exists.
	GetActive(ctx context.Context, adminID string) (*domain.AdminSession, error)

	// GetByID returns a session by its id regardless of activity state, or
	// repository.ErrNotFound.
	GetByID(ctx context.Context, sessionID string) (*domain.AdminSession, error)

	// Invalidate deactivates the admin's active session. Invalidating an
	// absent or already-inactive session is not an error.
	Invalidate(ctx context.Context, adminID string) error

	// Touch updates last-seen metadata on the admin's active session.
	Touch(ctx context.Context, adminID string, at time.Time) error
}
