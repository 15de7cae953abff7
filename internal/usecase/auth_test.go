package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository"
)

type fakeVerifier struct {
	subject string
	err     error
	calls   int
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.subject, f.err
}

type fakeAdminRepo struct {
	admin *domain.AdministratorIdentity
	err   error
}

func (f *fakeAdminRepo) FindBySubject(_ context.Context, _ string) (*domain.AdministratorIdentity, error) {
	return f.admin, f.err
}

func validAdmin() *domain.AdministratorIdentity {
	return &domain.AdministratorIdentity{
		SubjectID: "adm-1",
		Name:      "Asha",
		Role:      domain.RoleAdmin,
		SocietyID: "soc-1",
	}
}

func TestResolveMissingCredential(t *testing.T) {
	verifier := &fakeVerifier{}
	svc := NewAuthService(verifier, &fakeAdminRepo{}, domain.DefaultPermissionMatrix(), zaptest.NewLogger(t))

	_, err := svc.Resolve(context.Background(), "   ")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if verifier.calls != 0 {
		t.Fatal("verifier must not be called for an empty credential")
	}
}

func TestResolveCredentialErrors(t *testing.T) {
	cases := []struct {
		name      string
		verifyErr error
		wantErr   error
	}{
		{"expired", fmt.Errorf("wrap: %w", port.ErrTokenExpired), ErrExpiredCredential},
		{"invalid", fmt.Errorf("wrap: %w", port.ErrTokenInvalid), ErrInvalidCredential},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewAuthService(&fakeVerifier{err: tc.verifyErr}, &fakeAdminRepo{}, domain.DefaultPermissionMatrix(), zaptest.NewLogger(t))

			_, err := svc.Resolve(context.Background(), "token")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestResolveAdminNotFound(t *testing.T) {
	svc := NewAuthService(
		&fakeVerifier{subject: "adm-1"},
		&fakeAdminRepo{err: repository.ErrNotFound},
		domain.DefaultPermissionMatrix(),
		zaptest.NewLogger(t),
	)

	_, err := svc.Resolve(context.Background(), "token")
	if !errors.Is(err, ErrAdminNotFound) {
		t.Fatalf("expected ErrAdminNotFound, got %v", err)
	}
}

func TestResolveMisconfiguredAdmin(t *testing.T) {
	admin := validAdmin()
	admin.SocietyID = ""

	svc := NewAuthService(
		&fakeVerifier{subject: "adm-1"},
		&fakeAdminRepo{admin: admin},
		domain.DefaultPermissionMatrix(),
		zaptest.NewLogger(t),
	)

	_, err := svc.Resolve(context.Background(), "token")
	if !errors.Is(err, ErrAdminMisconfigured) {
		t.Fatalf("expected ErrAdminMisconfigured, got %v", err)
	}
}

func TestResolveSuccess(t *testing.T) {
	admin := validAdmin()
	admin.Role = domain.RoleWingChairman
	admin.HomeWing = "A"

	svc := NewAuthService(
		&fakeVerifier{subject: admin.SubjectID},
		&fakeAdminRepo{admin: admin},
		domain.DefaultPermissionMatrix(),
		zaptest.NewLogger(t),
	)

	authCtx, err := svc.Resolve(context.Background(), "token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if authCtx.Admin.SubjectID != admin.SubjectID {
		t.Fatalf("expected subject %s, got %s", admin.SubjectID, authCtx.Admin.SubjectID)
	}
	if !authCtx.Scope.WingRestricted {
		t.Fatal("expected chairman scope to be wing restricted")
	}
	if !authCtx.Scope.AllowsWing("A") {
		t.Fatal("expected home wing fallback in scope")
	}
}

func TestAuthorizeMatrixDenied(t *testing.T) {
	svc := NewAuthService(&fakeVerifier{}, &fakeAdminRepo{}, domain.DefaultPermissionMatrix(), zaptest.NewLogger(t))

	authCtx := &AuthContext{Admin: domain.AdministratorIdentity{Role: domain.RoleModerator}}

	err := svc.Authorize(authCtx, domain.ResourceUsers, domain.ActionRead)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestAuthorizeWingDenied(t *testing.T) {
	svc := NewAuthService(&fakeVerifier{}, &fakeAdminRepo{}, domain.DefaultPermissionMatrix(), zaptest.NewLogger(t))

	admin := domain.AdministratorIdentity{
		SubjectID:     "adm-2",
		Role:          domain.RoleWingChairman,
		SocietyID:     "soc-1",
		AssignedWings: []string{"B"},
	}
	authCtx := &AuthContext{Admin: admin, Scope: admin.Scope()}

	if err := svc.Authorize(authCtx, domain.ResourceUsers, domain.ActionRead, "B"); err != nil {
		t.Fatalf("expected allowed wing to pass, got %v", err)
	}

	err := svc.Authorize(authCtx, domain.ResourceUsers, domain.ActionRead, "B", "C")
	if !errors.Is(err, ErrWingAccessDenied) {
		t.Fatalf("expected ErrWingAccessDenied, got %v", err)
	}
}

func TestAuthorizeSuperAdminIgnoresWings(t *testing.T) {
	svc := NewAuthService(&fakeVerifier{}, &fakeAdminRepo{}, domain.NewPermissionMatrix(nil), zaptest.NewLogger(t))

	admin := domain.AdministratorIdentity{SubjectID: "root", Role: domain.RoleSuperAdmin, SocietyID: "soc-1"}
	authCtx := &AuthContext{Admin: admin, Scope: admin.Scope()}

	if err := svc.Authorize(authCtx, domain.ResourceUsers, domain.ActionDelete, "A", "B"); err != nil {
		t.Fatalf("expected super_admin to pass, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	svc := NewAuthService(&fakeVerifier{}, &fakeAdminRepo{}, domain.DefaultPermissionMatrix(), zaptest.NewLogger(t))

	authCtx := &AuthContext{Admin: domain.AdministratorIdentity{Role: domain.RoleAdmin}}

	if err := svc.RequireRole(authCtx, domain.RoleSuperAdmin, domain.RoleAdmin); err != nil {
		t.Fatalf("expected admin to satisfy role check, got %v", err)
	}

	err := svc.RequireRole(authCtx, domain.RoleSuperAdmin)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	if err := svc.RequireRole(nil, domain.RoleAdmin); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected nil context to be denied, got %v", err)
	}
}
