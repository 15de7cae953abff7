package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository"
)

// SessionStoreConfig tunes key naming and retention.
type SessionStoreConfig struct {
	KeyPrefix string
	// TTL bounds how long session records live in Redis. Applied to both
	// the per-admin active pointer and the per-session record.
	TTL time.Duration
}

// SessionStore persists administrator sessions in Redis so every service
// instance observes the same single-active-session state. The per-admin
// pointer is a single key overwritten on every swap, so GetActive is always
// single-valued. The swap's writes are batched in a transaction pipeline,
// but the preceding read is not part of it: two instances swapping the same
// admin at once can leave the loser's per-id record still marked active
// until the next invalidate or the TTL clears it.
type SessionStore struct {
	client *redis.Client
	cfg    SessionStoreConfig
}

// NewSessionStore constructs a Redis-backed session store.
func NewSessionStore(client *redis.Client, cfg SessionStoreConfig) *SessionStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &SessionStore{client: client, cfg: cfg}
}

type sessionRecord struct {
	ID         string    `json:"id"`
	AdminID    string    `json:"admin_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IsActive   bool      `json:"is_active"`
}

func toRecord(s domain.AdminSession) sessionRecord {
	return sessionRecord{
		ID:         s.ID,
		AdminID:    s.AdminID,
		CreatedAt:  s.CreatedAt,
		LastSeenAt: s.LastSeenAt,
		ExpiresAt:  s.ExpiresAt,
		IPAddress:  s.IPAddress,
		UserAgent:  s.UserAgent,
		IsActive:   s.IsActive,
	}
}

func (r sessionRecord) toDomain() domain.AdminSession {
	return domain.AdminSession{
		ID:         r.ID,
		AdminID:    r.AdminID,
		CreatedAt:  r.CreatedAt,
		LastSeenAt: r.LastSeenAt,
		ExpiresAt:  r.ExpiresAt,
		IPAddress:  r.IPAddress,
		UserAgent:  r.UserAgent,
		IsActive:   r.IsActive,
	}
}

func (s *SessionStore) adminKey(adminID string) string {
	return fmt.Sprintf("%s:admin:%s", s.cfg.KeyPrefix, adminID)
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:id:%s", s.cfg.KeyPrefix, sessionID)
}

// Swap installs the session as the sole active one for its admin.
func (s *SessionStore) Swap(ctx context.Context, session domain.AdminSession) (*domain.AdminSession, error) {
	prior, err := s.loadActive(ctx, session.AdminID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	record := toRecord(session)
	record.IsActive = true

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	if prior != nil {
		deactivated := toRecord(*prior)
		deactivated.IsActive = false
		if priorPayload, merr := json.Marshal(deactivated); merr == nil {
			pipe.Set(ctx, s.sessionKey(prior.ID), priorPayload, s.cfg.TTL)
		}
	}
	pipe.Set(ctx, s.adminKey(session.AdminID), payload, s.cfg.TTL)
	pipe.Set(ctx, s.sessionKey(session.ID), payload, s.cfg.TTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis session swap: %w", err)
	}

	if prior == nil {
		return nil, nil
	}
	deactivated := *prior
	deactivated.IsActive = false
	return &deactivated, nil
}

func (s *SessionStore) loadActive(ctx context.Context, adminID string) (*domain.AdminSession, error) {
	payload, err := s.client.Get(ctx, s.adminKey(adminID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get active session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	session := record.toDomain()
	return &session, nil
}

// GetActive returns the active session for the admin.
func (s *SessionStore) GetActive(ctx context.Context, adminID string) (*domain.AdminSession, error) {
	session, err := s.loadActive(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, repository.ErrNotFound
	}
	return session, nil
}

// GetByID returns a session by id regardless of activity state.
func (s *SessionStore) GetByID(ctx context.Context, sessionID string) (*domain.AdminSession, error) {
	payload, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	session := record.toDomain()
	return &session, nil
}

// Invalidate deactivates the admin's active session. Idempotent.
func (s *SessionStore) Invalidate(ctx context.Context, adminID string) error {
	session, err := s.loadActive(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}
	if !session.IsActive {
		return nil
	}

	record := toRecord(*session)
	record.IsActive = false
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.adminKey(adminID), payload, s.cfg.TTL)
	pipe.Set(ctx, s.sessionKey(session.ID), payload, s.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session invalidate: %w", err)
	}

	return nil
}

// Touch updates last-seen metadata on the admin's active session.
func (s *SessionStore) Touch(ctx context.Context, adminID string, at time.Time) error {
	session, err := s.GetActive(ctx, adminID)
	if err != nil {
		return err
	}

	session.Touch(at)
	record := toRecord(*session)
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.adminKey(adminID), payload, s.cfg.TTL)
	pipe.Set(ctx, s.sessionKey(session.ID), payload, s.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis session touch: %w", err)
	}

	return nil
}

var _ port.SessionStore = (*SessionStore)(nil)
