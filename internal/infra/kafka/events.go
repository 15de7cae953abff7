package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	AdminID   string           `json:"admin_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, adminID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AdminID:   adminID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishSessionStarted publishes society.admin.session.started events.
func (p *EventPublisher) PublishSessionStarted(ctx context.Context, event domain.AdminSessionStartedEvent) error {
	payload := struct {
		SessionID       string         `json:"session_id"`
		AdminID         string         `json:"admin_id"`
		SocietyID       string         `json:"society_id"`
		Role            string         `json:"role"`
		IPAddress       string         `json:"ip_address,omitempty"`
		UserAgent       string         `json:"user_agent,omitempty"`
		StartedAt       time.Time      `json:"started_at"`
		ReplacedSession string         `json:"replaced_session,omitempty"`
		Metadata        map[string]any `json:"metadata,omitempty"`
	}{
		SessionID:       event.SessionID,
		AdminID:         event.AdminID,
		SocietyID:       event.SocietyID,
		Role:            string(event.Role),
		IPAddress:       event.IPAddress,
		UserAgent:       event.UserAgent,
		StartedAt:       event.StartedAt.UTC(),
		ReplacedSession: event.ReplacedSession,
		Metadata:        event.Metadata,
	}

	return p.publish(ctx, event.EventID, "session.started", event.AdminID, event.StartedAt, payload)
}

// PublishSessionEnded publishes society.admin.session.ended events.
func (p *EventPublisher) PublishSessionEnded(ctx context.Context, event domain.AdminSessionEndedEvent) error {
	payload := struct {
		SessionID string         `json:"session_id"`
		AdminID   string         `json:"admin_id"`
		Reason    string         `json:"reason"`
		EndedAt   time.Time      `json:"ended_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		SessionID: event.SessionID,
		AdminID:   event.AdminID,
		Reason:    event.Reason,
		EndedAt:   event.EndedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "session.ended", event.AdminID, event.EndedAt, payload)
}

// PublishActionRecorded publishes society.admin.action.recorded events.
func (p *EventPublisher) PublishActionRecorded(ctx context.Context, event domain.AdminActionRecordedEvent) error {
	payload := struct {
		EntryID    string         `json:"entry_id"`
		AdminID    string         `json:"admin_id"`
		SocietyID  string         `json:"society_id"`
		Role       string         `json:"role"`
		Action     string         `json:"action"`
		Resource   string         `json:"resource"`
		RecordedAt time.Time      `json:"recorded_at"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}{
		EntryID:    event.EntryID,
		AdminID:    event.AdminID,
		SocietyID:  event.SocietyID,
		Role:       string(event.Role),
		Action:     event.Action,
		Resource:   string(event.Resource),
		RecordedAt: event.RecordedAt.UTC(),
		Metadata:   event.Metadata,
	}

	return p.publish(ctx, event.EventID, "action.recorded", event.AdminID, event.RecordedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
