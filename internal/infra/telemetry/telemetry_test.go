package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/config"
)

func TestAttachRequiresConfig(t *testing.T) {
	if _, err := Attach(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestAttachIsRepeatable(t *testing.T) {
	cfg := &config.AppConfig{}

	first, err := Attach(context.Background(), cfg)
	if err != nil {
		t.Fatalf("first attach: %v", err)
	}

	second, err := Attach(context.Background(), cfg)
	if err != nil {
		t.Fatalf("second attach: %v", err)
	}

	// Both providers share the registered collectors.
	before := testutil.ToFloat64(second.AuthzDenials())
	first.AuthzDenials().Inc()
	if got := testutil.ToFloat64(second.AuthzDenials()); got != before+1 {
		t.Fatalf("expected shared denial counter, got %v after %v", got, before)
	}

	before = testutil.ToFloat64(first.AuditDrops())
	second.AuditDrops().Inc()
	if got := testutil.ToFloat64(first.AuditDrops()); got != before+1 {
		t.Fatalf("expected shared drop counter, got %v after %v", got, before)
	}
}

func TestNilProviderAccessorsAreSafe(t *testing.T) {
	var provider *Provider

	provider.AuthzDenials().Inc()
	provider.AuditDrops().Inc()
}
