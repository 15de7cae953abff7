package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository"
)

// ErrSessionNotFound indicates that the requested session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// SessionMetadata captures request context recorded on a new session.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
}

// SessionService enforces the single-active-session policy on top of the
// injected store and announces lifecycle changes on the event bus.
type SessionService struct {
	sessions port.SessionStore
	events   port.EventPublisher
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions port.SessionStore, events port.EventPublisher, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		sessions: sessions,
		events:   events,
		logger:   logger,
		ttl:      12 * time.Hour,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithTTL overrides the session lifetime.
func (s *SessionService) WithTTL(ttl time.Duration) *SessionService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithClock overrides the internal clock for deterministic tests.
func (s *SessionService) WithClock(clock func() time.Time) *SessionService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Create starts a new session for the administrator. Any previously active
// session for the same admin is invalidated by the store in the same atomic
// step; the swap guarantees no two lookups ever observe two active sessions.
func (s *SessionService) Create(ctx context.Context, admin domain.AdministratorIdentity, meta SessionMetadata) (*domain.AdminSession, error) {
	if strings.TrimSpace(admin.SubjectID) == "" {
		return nil, fmt.Errorf("admin subject id is required")
	}

	now := s.now()
	session := domain.AdminSession{
		ID:         uuid.NewString(),
		AdminID:    admin.SubjectID,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(s.ttl),
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		IsActive:   true,
	}

	prior, err := s.sessions.Swap(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	replaced := ""
	if prior != nil {
		replaced = prior.ID
	}

	s.publishStarted(ctx, admin, session, replaced)

	return &session, nil
}

// GetActive returns the administrator's current session, or nil when none
// exists. A stored session past its expiry is treated as absent and cleaned
// up lazily.
func (s *SessionService) GetActive(ctx context.Context, adminID string) (*domain.AdminSession, error) {
	if strings.TrimSpace(adminID) == "" {
		return nil, fmt.Errorf("admin id is required")
	}

	session, err := s.sessions.GetActive(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active session: %w", err)
	}

	if !session.Alive(s.now()) {
		if err := s.sessions.Invalidate(ctx, adminID); err != nil {
			s.logger.Warn("failed to invalidate expired session",
				zap.String("admin_id", adminID),
				zap.Error(err),
			)
		}
		return nil, nil
	}

	return session, nil
}

// GetByID returns a session by id, active or not.
func (s *SessionService) GetByID(ctx context.Context, sessionID string) (*domain.AdminSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

// Touch records activity on the administrator's active session.
func (s *SessionService) Touch(ctx context.Context, adminID string) {
	if err := s.sessions.Touch(ctx, adminID, s.now()); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to touch session",
			zap.String("admin_id", adminID),
			zap.Error(err),
		)
	}
}

// Invalidate ends the administrator's active session. Idempotent:
// invalidating an absent or inactive session is not an error.
func (s *SessionService) Invalidate(ctx context.Context, adminID string, reason string) error {
	if strings.TrimSpace(adminID) == "" {
		return fmt.Errorf("admin id is required")
	}

	session, err := s.sessions.GetActive(ctx, adminID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("get active session: %w", err)
	}

	if err := s.sessions.Invalidate(ctx, adminID); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}

	if session != nil {
		s.publishEnded(ctx, adminID, session.ID, reason)
	}

	return nil
}

func (s *SessionService) publishStarted(ctx context.Context, admin domain.AdministratorIdentity, session domain.AdminSession, replaced string) {
	if s.events == nil {
		return
	}

	event := domain.AdminSessionStartedEvent{
		EventID:         uuid.NewString(),
		SessionID:       session.ID,
		AdminID:         admin.SubjectID,
		SocietyID:       admin.SocietyID,
		Role:            admin.Role,
		IPAddress:       session.IPAddress,
		UserAgent:       session.UserAgent,
		StartedAt:       session.CreatedAt,
		ReplacedSession: replaced,
	}
	if err := s.events.PublishSessionStarted(ctx, event); err != nil {
		s.logger.Warn("failed to publish session started event",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}
}

func (s *SessionService) publishEnded(ctx context.Context, adminID, sessionID, reason string) {
	if s.events == nil {
		return
	}

	event := domain.AdminSessionEndedEvent{
		EventID:   uuid.NewString(),
		SessionID: sessionID,
		AdminID:   adminID,
		Reason:    reason,
		EndedAt:   s.now(),
	}
	if err := s.events.PublishSessionEnded(ctx, event); err != nil {
		s.logger.Warn("failed to publish session ended event",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}
