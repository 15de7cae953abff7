package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without a broker.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, adminID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("admin_id", adminID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishSessionStarted logs session.started events.
func (p *StubPublisher) PublishSessionStarted(_ context.Context, event domain.AdminSessionStartedEvent) error {
	payload := map[string]any{
		"session_id":       event.SessionID,
		"society_id":       event.SocietyID,
		"role":             event.Role,
		"ip_address":       event.IPAddress,
		"replaced_session": event.ReplacedSession,
	}
	p.logEvent("session.started", event.AdminID, event.StartedAt, payload)
	return nil
}

// PublishSessionEnded logs session.ended events.
func (p *StubPublisher) PublishSessionEnded(_ context.Context, event domain.AdminSessionEndedEvent) error {
	payload := map[string]any{
		"session_id": event.SessionID,
		"reason":     event.Reason,
	}
	p.logEvent("session.ended", event.AdminID, event.EndedAt, payload)
	return nil
}

// PublishActionRecorded logs action.recorded events.
func (p *StubPublisher) PublishActionRecorded(_ context.Context, event domain.AdminActionRecordedEvent) error {
	payload := map[string]any{
		"entry_id":   event.EntryID,
		"society_id": event.SocietyID,
		"role":       event.Role,
		"action":     event.Action,
		"resource":   event.Resource,
	}
	p.logEvent("action.recorded", event.AdminID, event.RecordedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
