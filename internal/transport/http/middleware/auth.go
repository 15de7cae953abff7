package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/usecase"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// TargetWingsFunc extracts the wings of every record the request would
// touch, so the gate can verify them against the caller's allowed set.
// Returning ok=false rejects the request as a bad target specification.
type TargetWingsFunc func(*gin.Context) (wings []string, ok bool)

// WingParam extracts a single target wing from a path parameter.
func WingParam(name string) TargetWingsFunc {
	return func(c *gin.Context) ([]string, bool) {
		wing := strings.TrimSpace(c.Param(name))
		if wing == "" {
			return nil, false
		}
		return []string{wing}, true
	}
}

// WingQuery extracts target wings from a repeatable query parameter. An
// absent parameter means the request targets no specific wing.
func WingQuery(name string) TargetWingsFunc {
	return func(c *gin.Context) ([]string, bool) {
		values := c.QueryArray(name)
		wings := make([]string, 0, len(values))
		for _, v := range values {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				wings = append(wings, trimmed)
			}
		}
		return wings, true
	}
}

// PermissionGate is the single enforcement point privileged routes pass
// through: credential resolution, matrix checks, wing scoping and
// role-exclusive guards.
type PermissionGate struct {
	auth    *usecase.AuthService
	denials prometheus.Counter
}

// NewPermissionGate constructs the gate around the auth service.
func NewPermissionGate(auth *usecase.AuthService) *PermissionGate {
	return &PermissionGate{auth: auth}
}

// WithDenialCounter wires a metric incremented on every 401/403.
func (g *PermissionGate) WithDenialCounter(counter prometheus.Counter) *PermissionGate {
	g.denials = counter
	return g
}

func (g *PermissionGate) countDenial() {
	if g.denials != nil {
		g.denials.Inc()
	}
}

// RequireAuth validates the Authorization header and attaches the resolved
// administrator identity and effective scope to the request context.
func (g *PermissionGate) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			g.countDenial()
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			g.countDenial()
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			g.countDenial()
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing access token"))
			return
		}

		authCtx, err := g.auth.Resolve(c.Request.Context(), token)
		if err != nil {
			g.countDenial()
			switch {
			case errors.Is(err, usecase.ErrExpiredCredential):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "access token expired"))
			case errors.Is(err, usecase.ErrInvalidCredential),
				errors.Is(err, usecase.ErrMissingCredential),
				errors.Is(err, usecase.ErrAdminNotFound):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid access token"))
			case errors.Is(err, usecase.ErrAdminMisconfigured):
				c.AbortWithStatusJSON(http.StatusBadRequest,
					newErrorResponse(c, "administrator account is misconfigured"))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					newErrorResponse(c, "authentication failed"))
			}
			return
		}

		c.Set(AdminContextKey, authCtx)

		if reqCtx := GetRequestContext(c); reqCtx != nil {
			reqCtx.AdminID = authCtx.Admin.SubjectID
		}

		c.Next()
	}
}

// RequirePermission enforces the matrix entry for resource/action and, when
// the grant is wing-scoped, verifies every target wing against the caller's
// allowed set. Wing extraction runs only when the caller is restricted, so
// unrestricted roles pay nothing for it.
func (g *PermissionGate) RequirePermission(resource domain.Resource, action domain.Action, targets ...TargetWingsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx, ok := AdminFromContext(c)
		if !ok {
			g.countDenial()
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		var wings []string
		if authCtx.Scope.WingRestricted || g.auth.Matrix().WingScoped(authCtx.Admin.Role, resource) {
			for _, target := range targets {
				extracted, ok := target(c)
				if !ok {
					g.countDenial()
					c.AbortWithStatusJSON(http.StatusBadRequest,
						newErrorResponse(c, "missing target wing"))
					return
				}
				wings = append(wings, extracted...)
			}
		}

		if err := g.auth.Authorize(authCtx, resource, action, wings...); err != nil {
			g.countDenial()
			switch {
			case errors.Is(err, usecase.ErrWingAccessDenied):
				c.AbortWithStatusJSON(http.StatusForbidden,
					newErrorResponse(c, "access denied"))
			default:
				c.AbortWithStatusJSON(http.StatusForbidden,
					newErrorResponse(c, "insufficient permissions"))
			}
			return
		}

		c.Next()
	}
}

// RequireRole checks direct role membership, independent of the permission
// matrix. Used for role-exclusive capabilities.
func (g *PermissionGate) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		authCtx, ok := AdminFromContext(c)
		if !ok {
			g.countDenial()
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if err := g.auth.RequireRole(authCtx, roles...); err != nil {
			g.countDenial()
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient permissions"))
			return
		}

		c.Next()
	}
}

// RequireAdmin passes super_admin and admin callers only.
func (g *PermissionGate) RequireAdmin() gin.HandlerFunc {
	return g.RequireRole(domain.RoleSuperAdmin, domain.RoleAdmin)
}

// RequireSuperAdmin passes super_admin callers only.
func (g *PermissionGate) RequireSuperAdmin() gin.HandlerFunc {
	return g.RequireRole(domain.RoleSuperAdmin)
}

// AdminFromContext retrieves the resolved auth context set by RequireAuth.
func AdminFromContext(c *gin.Context) (*usecase.AuthContext, bool) {
	val, exists := c.Get(AdminContextKey)
	if !exists {
		return nil, false
	}

	authCtx, ok := val.(*usecase.AuthContext)
	if !ok || authCtx == nil {
		return nil, false
	}
	return authCtx, true
}
