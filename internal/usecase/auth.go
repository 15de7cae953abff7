package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/port"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/infra/logger"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository"
)

var (
	// ErrMissingCredential indicates the request carried no bearer credential.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential indicates the credential failed verification.
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrExpiredCredential indicates the credential is past its expiry.
	ErrExpiredCredential = errors.New("credential expired")
	// ErrAdminNotFound indicates no administrator record exists for the subject.
	ErrAdminNotFound = errors.New("administrator not found")
	// ErrAdminMisconfigured indicates the administrator record is incomplete
	// (for example, no society assignment). Surfaced as a validation failure,
	// never silently defaulted.
	ErrAdminMisconfigured = errors.New("administrator record misconfigured")
	// ErrPermissionDenied indicates the role lacks the requested permission.
	ErrPermissionDenied = errors.New("insufficient permissions")
	// ErrWingAccessDenied indicates the target lies outside the caller's
	// assigned wings. Distinct from ErrPermissionDenied so responses can
	// distinguish "you may never do this" from "not on this wing's data".
	ErrWingAccessDenied = errors.New("access denied: target outside assigned wings")
)

// AuthContext carries the resolved caller identity and its effective data
// scope for the duration of one request.
type AuthContext struct {
	Admin domain.AdministratorIdentity
	Scope domain.EffectiveScope
}

// AuthService resolves bearer credentials into administrator identities and
// evaluates the permission matrix against them.
type AuthService struct {
	verifier port.TokenVerifier
	admins   port.AdminRepository
	matrix   domain.PermissionMatrix
	logger   *zap.Logger
	timeout  time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(verifier port.TokenVerifier, admins port.AdminRepository, matrix domain.PermissionMatrix, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		verifier: verifier,
		admins:   admins,
		matrix:   matrix,
		logger:   log,
		timeout:  5 * time.Second,
	}
}

// WithResolveTimeout bounds the external verification and lookup calls.
func (s *AuthService) WithResolveTimeout(timeout time.Duration) *AuthService {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// Matrix exposes the configured permission matrix.
func (s *AuthService) Matrix() domain.PermissionMatrix {
	return s.matrix
}

// Resolve authenticates the credential and loads the administrator it
// belongs to, computing the effective wing scope. Every failure in
// verification or lookup maps to a credential error; an incomplete record is
// a configuration failure instead.
func (s *AuthService) Resolve(ctx context.Context, credential string) (*AuthContext, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrMissingCredential
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	subjectID, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %v", ErrExpiredCredential, err)
		case errors.Is(err, port.ErrTokenInvalid):
			s.logger.Debug("credential rejected",
				zap.String("credential", logger.MaskString(credential)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
		default:
			return nil, fmt.Errorf("verify credential: %w", err)
		}
	}

	admin, err := s.admins.FindBySubject(ctx, subjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("lookup administrator: %w", err)
	}
	if admin == nil {
		return nil, ErrAdminNotFound
	}

	if err := admin.Validate(); err != nil {
		s.logger.Warn("administrator record rejected",
			zap.String("subject_id", subjectID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", ErrAdminMisconfigured, err)
	}

	return &AuthContext{
		Admin: *admin,
		Scope: admin.Scope(),
	}, nil
}

// Authorize checks the permission matrix for the resource/action pair and,
// when the grant is wing-scoped or the caller is wing-restricted, verifies
// that every target wing lies inside the caller's allowed set.
func (s *AuthService) Authorize(authCtx *AuthContext, resource domain.Resource, action domain.Action, targetWings ...string) error {
	if authCtx == nil {
		return ErrPermissionDenied
	}

	role := authCtx.Admin.Role
	if !s.matrix.HasPermission(role, resource, action) {
		return ErrPermissionDenied
	}

	if s.matrix.WingScoped(role, resource) || authCtx.Scope.WingRestricted {
		if !authCtx.Scope.AllowsWings(targetWings) {
			return ErrWingAccessDenied
		}
	}

	return nil
}

// RequireRole checks direct role membership, independent of the matrix.
// Used for capabilities that are role-exclusive regardless of configured
// permissions.
func (s *AuthService) RequireRole(authCtx *AuthContext, roles ...domain.Role) error {
	if authCtx == nil {
		return ErrPermissionDenied
	}
	for _, role := range roles {
		if authCtx.Admin.Role == role {
			return nil
		}
	}
	return ErrPermissionDenied
}
