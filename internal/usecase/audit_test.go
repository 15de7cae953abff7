package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
)

type fakeAuditStore struct {
	mu        sync.Mutex
	entries   []domain.AuditEntry
	appendErr error
	gate      chan struct{}
}

func (f *fakeAuditStore) Append(_ context.Context, entry domain.AuditEntry) error {
	if f.gate != nil {
		<-f.gate
	}
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditStore) List(_ context.Context, _ domain.AuditFilter) ([]domain.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AuditEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

type countingFailures struct {
	n atomic.Int64
}

func (c *countingFailures) Inc() { c.n.Add(1) }

func auditActor() domain.AdministratorIdentity {
	return domain.AdministratorIdentity{
		SubjectID: "adm-1",
		Name:      "Asha",
		Role:      domain.RoleAdmin,
		SocietyID: "soc-1",
	}
}

func TestRecordSnapshotsActorAndDetails(t *testing.T) {
	store := &fakeAuditStore{}
	svc := NewAuditService(store, nil, zaptest.NewLogger(t), AuditConfig{QueueSize: 8})

	details := map[string]any{"target": "user-9"}
	svc.Record(auditActor(), "user.deactivate", domain.ResourceUsers, details, RequestMeta{IPAddress: "10.0.0.1", UserAgent: "cli"})

	// Mutating the caller's map after Record must not leak into the entry.
	details["target"] = "user-overwritten"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, _ := store.List(context.Background(), domain.AuditFilter{})
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.AdminName != "Asha" || entry.AdminRole != domain.RoleAdmin || entry.SocietyID != "soc-1" {
		t.Fatalf("expected actor snapshot, got %+v", entry)
	}
	if entry.Details["target"] != "user-9" {
		t.Fatalf("expected details copy, got %v", entry.Details["target"])
	}
	if entry.ID == "" || entry.CreatedAt.IsZero() {
		t.Fatal("expected generated id and timestamp")
	}
	if entry.IPAddress != "10.0.0.1" || entry.UserAgent != "cli" {
		t.Fatalf("expected request meta on the entry, got %+v", entry)
	}
}

func TestPersistFailureNeverPropagates(t *testing.T) {
	store := &fakeAuditStore{appendErr: errors.New("disk on fire")}
	failures := &countingFailures{}

	svc := NewAuditService(store, nil, zaptest.NewLogger(t), AuditConfig{QueueSize: 8}).
		WithFailureCounter(failures)

	// Must not panic or surface the store error.
	svc.Record(auditActor(), "user.deactivate", domain.ResourceUsers, nil, RequestMeta{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if failures.n.Load() != 1 {
		t.Fatalf("expected 1 counted failure, got %d", failures.n.Load())
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	store := &fakeAuditStore{}
	svc := NewAuditService(store, nil, zaptest.NewLogger(t), AuditConfig{QueueSize: 64})

	for i := 0; i < 20; i++ {
		svc.Record(auditActor(), "join_request.approve", domain.ResourceJoinRequests, nil, RequestMeta{})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, _ := store.List(context.Background(), domain.AuditFilter{})
	if len(entries) != 20 {
		t.Fatalf("expected all 20 entries persisted before close returned, got %d", len(entries))
	}
}

func TestRecordDropsWhenQueueFull(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeAuditStore{gate: gate}
	failures := &countingFailures{}

	svc := NewAuditService(store, nil, zaptest.NewLogger(t), AuditConfig{QueueSize: 1}).
		WithFailureCounter(failures)

	// First entry occupies the writer (blocked on the gate), second fills the
	// queue. Give the writer a moment to pick up the first entry.
	svc.Record(auditActor(), "a", domain.ResourceUsers, nil, RequestMeta{})
	time.Sleep(50 * time.Millisecond)
	svc.Record(auditActor(), "b", domain.ResourceUsers, nil, RequestMeta{})
	svc.Record(auditActor(), "c", domain.ResourceUsers, nil, RequestMeta{})

	close(gate)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	if failures.n.Load() == 0 {
		t.Fatal("expected at least one drop to be counted")
	}

	entries, _ := store.List(context.Background(), domain.AuditFilter{})
	if len(entries) >= 3 {
		t.Fatalf("expected at least one entry dropped, got %d persisted", len(entries))
	}
}

func TestRecordSkipsEmptyAction(t *testing.T) {
	store := &fakeAuditStore{}
	svc := NewAuditService(store, nil, zaptest.NewLogger(t), AuditConfig{QueueSize: 4})

	svc.Record(auditActor(), "   ", domain.ResourceUsers, nil, RequestMeta{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, _ := store.List(context.Background(), domain.AuditFilter{})
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
