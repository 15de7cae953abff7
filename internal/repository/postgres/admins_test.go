package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository"
)

func TestAdminRepository_FindBySubject(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAdminRepository(mock)

	rows := pgxmock.NewRows([]string{"subject_id", "name", "role", "society_id", "home_wing", "assigned_wings"}).
		AddRow("adm-1", "Asha", domain.RoleWingChairman, "soc-1", "A", []string{"A", "B"})

	mock.ExpectQuery(`SELECT subject_id, name, role, society_id, home_wing, assigned_wings FROM society\.admins`).
		WithArgs(true, "adm-1").
		WillReturnRows(rows)

	admin, err := repo.FindBySubject(context.Background(), "adm-1")
	if err != nil {
		t.Fatalf("FindBySubject returned error: %v", err)
	}

	if admin.SubjectID != "adm-1" || admin.Role != domain.RoleWingChairman {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if len(admin.AssignedWings) != 2 || admin.AssignedWings[0] != "A" {
		t.Fatalf("unexpected wings: %v", admin.AssignedWings)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAdminRepository_FindBySubject_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewAdminRepository(mock)

	mock.ExpectQuery(`SELECT subject_id, name, role, society_id, home_wing, assigned_wings FROM society\.admins`).
		WithArgs(true, "ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.FindBySubject(context.Background(), "ghost")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
