package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository"
)

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AdminRepository reads administrator records from PostgreSQL.
type AdminRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAdminRepository constructs a repository backed by any executor that
// satisfies pgExecutor (a pool, a transaction, or a mock).
func NewAdminRepository(exec pgExecutor) *AdminRepository {
	return &AdminRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindBySubject returns the active administrator record for the external
// subject identifier.
func (r *AdminRepository) FindBySubject(ctx context.Context, subjectID string) (*domain.AdministratorIdentity, error) {
	sql, args, err := r.builder.Select(
		"subject_id",
		"name",
		"role",
		"society_id",
		"home_wing",
		"assigned_wings",
	).
		From("society.admins").
		Where(squirrel.Eq{"subject_id": subjectID, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select admin sql: %w", err)
	}

	var admin domain.AdministratorIdentity
	row := r.exec.QueryRow(ctx, sql, args...)
	if err := row.Scan(
		&admin.SubjectID,
		&admin.Name,
		&admin.Role,
		&admin.SocietyID,
		&admin.HomeWing,
		&admin.AssignedWings,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select admin: %w", err)
	}

	return &admin, nil
}

var _ port.AdminRepository = (*AdminRepository)(nil)
