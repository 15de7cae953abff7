package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/transport/http/middleware"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/usecase"
)

// AuthHandler exposes the administrator session control surface. All routes
// run behind the permission gate's RequireAuth, so handlers read the resolved
// identity from the request context.
type AuthHandler struct {
	sessions *usecase.SessionService
	audit    *usecase.AuditService
	logger   *zap.Logger
}

// NewAuthHandler builds the handler.
func NewAuthHandler(sessions *usecase.SessionService, audit *usecase.AuditService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		sessions: sessions,
		audit:    audit,
		logger:   logger,
	}
}

// RegisterRoutes attaches the auth endpoints to the provided group.
func (h *AuthHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/login", h.Login)
	group.POST("/logout", h.Logout)
	group.GET("/me", h.Me)
}

// Login starts a session for the authenticated administrator. Any previously
// active session is replaced atomically, so a second login from a new device
// ends the first.
func (h *AuthHandler) Login(c *gin.Context) {
	authCtx, ok := middleware.AdminFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	meta := usecase.SessionMetadata{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	session, err := h.sessions.Create(c.Request.Context(), authCtx.Admin, meta)
	if err != nil {
		h.logger.Error("session create failed",
			zap.String("admin_id", authCtx.Admin.SubjectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to start session"))
		return
	}

	h.audit.Record(authCtx.Admin, "session.login", domain.ResourceSessions,
		map[string]any{"session_id": session.ID},
		usecase.RequestMeta{IPAddress: meta.IPAddress, UserAgent: meta.UserAgent},
	)

	c.JSON(http.StatusOK, LoginResponse{
		Admin:   newAdminSummary(authCtx.Admin),
		Scope:   newScopeSummary(authCtx.Scope),
		Session: newSessionPayload(*session),
	})
}

// Logout ends the caller's active session. Idempotent: logging out with no
// active session still succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	authCtx, ok := middleware.AdminFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	reason := req.Reason
	if reason == "" {
		reason = "logout"
	}

	if err := h.sessions.Invalidate(c.Request.Context(), authCtx.Admin.SubjectID, reason); err != nil {
		h.logger.Error("session invalidate failed",
			zap.String("admin_id", authCtx.Admin.SubjectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to end session"))
		return
	}

	h.audit.Record(authCtx.Admin, "session.logout", domain.ResourceSessions,
		map[string]any{"reason": reason},
		usecase.RequestMeta{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()},
	)

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// Me returns the caller's resolved identity, effective scope and active
// session, refreshing the session's activity timestamp.
func (h *AuthHandler) Me(c *gin.Context) {
	authCtx, ok := middleware.AdminFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	h.sessions.Touch(c.Request.Context(), authCtx.Admin.SubjectID)

	session, err := h.sessions.GetActive(c.Request.Context(), authCtx.Admin.SubjectID)
	if err != nil {
		h.logger.Warn("active session lookup failed",
			zap.String("admin_id", authCtx.Admin.SubjectID),
			zap.Error(err),
		)
	}

	response := MeResponse{
		Admin: newAdminSummary(authCtx.Admin),
		Scope: newScopeSummary(authCtx.Scope),
	}

	if session != nil {
		payload := newSessionPayload(*session)
		response.Session = &payload
	}

	c.JSON(http.StatusOK, response)
}
