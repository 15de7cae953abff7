package port

import (
	"context"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
)

// EventPublisher delivers admin lifecycle events to the platform event bus.
type EventPublisher interface {
	PublishSessionStarted(ctx context.Context, event domain.AdminSessionStartedEvent) error
	PublishSessionEnded(ctx context.Context, event domain.AdminSessionEndedEvent) error
	PublishActionRecorded(ctx context.Context, event domain.AdminActionRecordedEvent) error
}
