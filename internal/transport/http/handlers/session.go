package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/transport/http/middleware"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/usecase"
)

// SessionHandler exposes read access to administrator sessions.
type SessionHandler struct {
	sessions *usecase.SessionService
}

// NewSessionHandler builds the handler.
func NewSessionHandler(sessions *usecase.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes attaches the session endpoints to the provided group.
func (h *SessionHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/current", h.Current)
	group.GET("/:id", h.GetByID)
}

// Current returns the caller's active session, or 404 when none exists.
func (h *SessionHandler) Current(c *gin.Context) {
	authCtx, ok := middleware.AdminFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	session, err := h.sessions.GetActive(c.Request.Context(), authCtx.Admin.SubjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load session"))
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, NewErrorResponse(c, "no active session"))
		return
	}

	c.JSON(http.StatusOK, newSessionPayload(*session))
}

// GetByID returns a session by id, active or ended. The caller may inspect
// only their own sessions unless they hold the super_admin role.
func (h *SessionHandler) GetByID(c *gin.Context) {
	authCtx, ok := middleware.AdminFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	session, err := h.sessions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSessionNotFound, Status: http.StatusNotFound, Message: "session not found"},
		}, http.StatusInternalServerError, "failed to load session")
		return
	}

	if session.AdminID != authCtx.Admin.SubjectID && !isSuperAdmin(authCtx) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "insufficient permissions"))
		return
	}

	c.JSON(http.StatusOK, newSessionPayload(*session))
}

func isSuperAdmin(authCtx *usecase.AuthContext) bool {
	return authCtx != nil && authCtx.Admin.Role == domain.RoleSuperAdmin
}
