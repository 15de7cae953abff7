package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
)

// RequestMeta carries request context copied onto audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// FailureCounter observes audit persistence failures (prometheus counter in
// production, nil-safe no-op otherwise).
type FailureCounter interface {
	Inc()
}

// AuditService records privileged actions asynchronously. Record snapshots
// actor context at call time, queues the entry, and returns immediately; a
// background writer persists entries and mirrors them to the event bus.
// Persistence failures are logged on the operational channel and never
// surface to the caller: audit logging is observability, not a transactional
// guard on the action it records.
type AuditService struct {
	store        port.AuditStore
	events       port.EventPublisher
	logger       *zap.Logger
	failures     FailureCounter
	queue        chan domain.AuditEntry
	writeTimeout time.Duration
	wg           sync.WaitGroup
	closeOnce    sync.Once
	now          func() time.Time
}

// AuditConfig tunes the asynchronous writer.
type AuditConfig struct {
	QueueSize    int
	WriteTimeout time.Duration
}

// NewAuditService constructs the service and starts its writer goroutine.
func NewAuditService(store port.AuditStore, events port.EventPublisher, logger *zap.Logger, cfg AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	s := &AuditService{
		store:        store,
		events:       events,
		logger:       logger,
		queue:        make(chan domain.AuditEntry, cfg.QueueSize),
		writeTimeout: cfg.WriteTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}

	s.wg.Add(1)
	go s.writer()

	return s
}

// WithClock overrides the internal clock for deterministic tests.
func (s *AuditService) WithClock(clock func() time.Time) *AuditService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// WithFailureCounter wires a metric incremented on persistence failures.
func (s *AuditService) WithFailureCounter(counter FailureCounter) *AuditService {
	s.failures = counter
	return s
}

// Record builds an entry from the acting administrator and queues it for
// persistence. The actor fields are copied now so a later role change never
// rewrites history. Never blocks the hot path: when the queue is full the
// entry is dropped and the drop is logged as an operational error.
func (s *AuditService) Record(admin domain.AdministratorIdentity, action string, resource domain.Resource, details map[string]any, meta RequestMeta) {
	if strings.TrimSpace(action) == "" {
		s.logger.Warn("audit record skipped: empty action",
			zap.String("admin_id", admin.SubjectID),
		)
		return
	}

	detailsCopy := make(map[string]any, len(details))
	for k, v := range details {
		detailsCopy[k] = v
	}

	entry := domain.AuditEntry{
		ID:        uuid.NewString(),
		AdminID:   admin.SubjectID,
		AdminName: admin.Name,
		AdminRole: admin.Role,
		SocietyID: admin.SocietyID,
		Action:    action,
		Resource:  resource,
		Details:   detailsCopy,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: s.now(),
	}

	select {
	case s.queue <- entry:
	default:
		if s.failures != nil {
			s.failures.Inc()
		}
		s.logger.Error("audit queue full, dropping entry",
			zap.String("admin_id", entry.AdminID),
			zap.String("action", entry.Action),
		)
	}
}

// List exposes the audit trail for inspection endpoints.
func (s *AuditService) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	entries, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, nil
}

func (s *AuditService) writer() {
	defer s.wg.Done()

	for entry := range s.queue {
		s.persist(entry)
	}
}

func (s *AuditService) persist(entry domain.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := s.store.Append(ctx, entry); err != nil {
		if s.failures != nil {
			s.failures.Inc()
		}
		s.logger.Error("audit entry persist failed",
			zap.String("entry_id", entry.ID),
			zap.String("admin_id", entry.AdminID),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
		return
	}

	if s.events == nil {
		return
	}

	event := domain.AdminActionRecordedEvent{
		EventID:    uuid.NewString(),
		EntryID:    entry.ID,
		AdminID:    entry.AdminID,
		SocietyID:  entry.SocietyID,
		Role:       entry.AdminRole,
		Action:     entry.Action,
		Resource:   entry.Resource,
		RecordedAt: entry.CreatedAt,
	}
	if err := s.events.PublishActionRecorded(ctx, event); err != nil {
		s.logger.Warn("failed to publish action recorded event",
			zap.String("entry_id", entry.ID),
			zap.Error(err),
		)
	}
}

// Close stops accepting entries and drains the queue. Returns the context
// error if the deadline passes before the writer finishes.
func (s *AuditService) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.queue) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit drain interrupted: %w", ctx.Err())
	}
}
