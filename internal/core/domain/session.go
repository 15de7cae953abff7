package domain

import "time"

// AdminSession represents one logical administrator login. The platform
// enforces a single active session per administrator: creating a new session
// invalidates the previous one atomically at the store level.
type AdminSession struct {
	ID         string
	AdminID    string
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
	IPAddress  string
	UserAgent  string
	IsActive   bool
}

// Alive reports whether the session is active and unexpired at the supplied
// moment. A zero ExpiresAt means the session never expires.
func (s AdminSession) Alive(at time.Time) bool {
	if !s.IsActive {
		return false
	}
	if s.ExpiresAt.IsZero() {
		return true
	}
	return s.ExpiresAt.After(at)
}

// Touch records activity on the session.
func (s *AdminSession) Touch(at time.Time) {
	s.LastSeenAt = at
}
