package telemetry

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/config"
)

// Provider represents a telemetry provider handle.
type Provider struct {
	authzDenials prometheus.Counter
	auditDrops   prometheus.Counter
}

// Attach configures telemetry collectors and returns a provider handle.
// Registration tolerates collectors already present in the default registerer
// so repeated wiring reuses them instead of panicking.
func Attach(_ context.Context, cfg *config.AppConfig) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	denials, err := registerCounter(prometheus.DefaultRegisterer, prometheus.CounterOpts{
		Namespace: "society",
		Subsystem: "admin",
		Name:      "authorization_denials_total",
		Help:      "Total number of requests rejected by the permission gate",
	})
	if err != nil {
		return nil, err
	}

	drops, err := registerCounter(prometheus.DefaultRegisterer, prometheus.CounterOpts{
		Namespace: "society",
		Subsystem: "admin",
		Name:      "audit_write_failures_total",
		Help:      "Total number of audit entries that failed to persist",
	})
	if err != nil {
		return nil, err
	}

	return &Provider{
		authzDenials: denials,
		auditDrops:   drops,
	}, nil
}

func registerCounter(reg prometheus.Registerer, opts prometheus.CounterOpts) (prometheus.Counter, error) {
	counter := prometheus.NewCounter(opts)
	if err := reg.Register(counter); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("existing %s collector has unexpected type %T", opts.Name, already.ExistingCollector)
		}
		return nil, fmt.Errorf("register %s collector: %w", opts.Name, err)
	}
	return counter, nil
}

// AuthzDenials exposes the permission-gate denial counter.
func (p *Provider) AuthzDenials() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.authzDenials
}

// AuditDrops exposes the audit write-failure counter.
func (p *Provider) AuditDrops() prometheus.Counter {
	if p == nil {
		return prometheus.NewCounter(prometheus.CounterOpts{})
	}
	return p.auditDrops
}
