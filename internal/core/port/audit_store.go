package port

import (
	"context"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
)

// AuditStore is the durable append-only sink for audit entries. There is no
// update or delete operation: the interface is the immutability guarantee.
type AuditStore interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)
}
