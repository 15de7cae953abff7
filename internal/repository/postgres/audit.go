package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
)

// AuditStore persists audit entries in PostgreSQL. The type deliberately
// exposes no update or delete operation; the table is insert-only from the
// application's point of view.
type AuditStore struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAuditStore constructs an AuditStore.
func NewAuditStore(exec pgExecutor) *AuditStore {
	return &AuditStore{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts one audit entry.
func (s *AuditStore) Append(ctx context.Context, entry domain.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	sql, args, err := s.builder.Insert("society.admin_audit_log").
		Columns(
			"id",
			"admin_id",
			"admin_name",
			"admin_role",
			"society_id",
			"action",
			"resource",
			"details",
			"ip_address",
			"user_agent",
			"created_at",
		).
		Values(
			entry.ID,
			entry.AdminID,
			entry.AdminName,
			entry.AdminRole,
			entry.SocietyID,
			entry.Action,
			entry.Resource,
			details,
			entry.IPAddress,
			entry.UserAgent,
			entry.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit sql: %w", err)
	}

	if _, err := s.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	return nil
}

// List returns audit entries matching the filter, newest first.
func (s *AuditStore) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	query := s.builder.Select(
		"id",
		"admin_id",
		"admin_name",
		"admin_role",
		"society_id",
		"action",
		"resource",
		"details",
		"ip_address",
		"user_agent",
		"created_at",
	).
		From("society.admin_audit_log").
		OrderBy("created_at DESC")

	if filter.AdminID != "" {
		query = query.Where(squirrel.Eq{"admin_id": filter.AdminID})
	}
	if filter.Resource != "" {
		query = query.Where(squirrel.Eq{"resource": filter.Resource})
	}
	if filter.Action != "" {
		query = query.Where(squirrel.Eq{"action": filter.Action})
	}
	if !filter.Since.IsZero() {
		query = query.Where(squirrel.GtOrEq{"created_at": filter.Since})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select audit sql: %w", err)
	}

	rows, err := s.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		var details []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.AdminID,
			&entry.AdminName,
			&entry.AdminRole,
			&entry.SocietyID,
			&entry.Action,
			&entry.Resource,
			&details,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, nil
}

var _ port.AuditStore = (*AuditStore)(nil)
