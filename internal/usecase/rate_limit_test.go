package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository/memory"
)

func TestCheckCountsDownThenDenies(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	svc := NewRateLimitService(memory.NewRateLimitStore()).
		WithClock(func() time.Time { return now })

	wantRemaining := []int{2, 1, 0}
	for i, want := range wantRemaining {
		res, err := svc.Check(context.Background(), "adm-1", "broadcast", 3, time.Minute)
		if err != nil {
			t.Fatalf("check %d: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("check %d: expected allowed", i+1)
		}
		if res.Remaining != want {
			t.Fatalf("check %d: expected remaining %d, got %d", i+1, want, res.Remaining)
		}
	}

	res, err := svc.Check(context.Background(), "adm-1", "broadcast", 3, time.Minute)
	if err != nil {
		t.Fatalf("fourth check: %v", err)
	}
	if res.Allowed {
		t.Fatal("expected fourth call in the window to be denied")
	}
	if res.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", res.Remaining)
	}
}

func TestCheckWindowResets(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	svc := NewRateLimitService(memory.NewRateLimitStore()).
		WithClock(func() time.Time { return now })

	for i := 0; i < 2; i++ {
		if _, err := svc.Check(context.Background(), "adm-1", "approve_join", 2, time.Minute); err != nil {
			t.Fatalf("check %d: %v", i+1, err)
		}
	}

	res, err := svc.Check(context.Background(), "adm-1", "approve_join", 2, time.Minute)
	if err != nil {
		t.Fatalf("third check: %v", err)
	}
	if res.Allowed {
		t.Fatal("expected exhausted window to deny")
	}

	now = now.Add(time.Minute)

	res, err = svc.Check(context.Background(), "adm-1", "approve_join", 2, time.Minute)
	if err != nil {
		t.Fatalf("post-window check: %v", err)
	}
	if !res.Allowed {
		t.Fatal("expected a fresh window after the previous one elapsed")
	}
	if res.Remaining != 1 {
		t.Fatalf("expected remaining 1 in the fresh window, got %d", res.Remaining)
	}
}

func TestCheckKeysAreIndependent(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	svc := NewRateLimitService(memory.NewRateLimitStore()).
		WithClock(func() time.Time { return now })

	if _, err := svc.Check(context.Background(), "adm-1", "broadcast", 1, time.Minute); err != nil {
		t.Fatalf("first check: %v", err)
	}

	res, err := svc.Check(context.Background(), "adm-1", "deactivate_user", 1, time.Minute)
	if err != nil {
		t.Fatalf("other action: %v", err)
	}
	if !res.Allowed {
		t.Fatal("expected a different action to have its own window")
	}

	res, err = svc.Check(context.Background(), "adm-2", "broadcast", 1, time.Minute)
	if err != nil {
		t.Fatalf("other admin: %v", err)
	}
	if !res.Allowed {
		t.Fatal("expected a different admin to have its own window")
	}
}

func TestCheckRejectsBadArguments(t *testing.T) {
	svc := NewRateLimitService(memory.NewRateLimitStore())

	if _, err := svc.Check(context.Background(), "", "broadcast", 1, time.Minute); err == nil {
		t.Fatal("expected error for empty admin id")
	}
	if _, err := svc.Check(context.Background(), "adm-1", "", 1, time.Minute); err == nil {
		t.Fatal("expected error for empty action")
	}
	if _, err := svc.Check(context.Background(), "adm-1", "broadcast", 0, time.Minute); err == nil {
		t.Fatal("expected error for non-positive limit")
	}
	if _, err := svc.Check(context.Background(), "adm-1", "broadcast", 1, 0); err == nil {
		t.Fatal("expected error for non-positive window")
	}
}
