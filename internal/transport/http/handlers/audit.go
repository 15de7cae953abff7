package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/usecase"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 500
)

// AuditHandler exposes read access to the audit trail. Routes are guarded by
// the permission gate (audit_log read), so the handler only parses filters.
type AuditHandler struct {
	audit *usecase.AuditService
}

// NewAuditHandler builds the handler.
func NewAuditHandler(audit *usecase.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// RegisterRoutes attaches the audit endpoints to the provided group.
func (h *AuditHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
}

// List returns audit entries matching the query filters, newest first.
func (h *AuditHandler) List(c *gin.Context) {
	filter, err := parseAuditFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	entries, err := h.audit.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list audit entries"))
		return
	}

	payloads := make([]AuditEntryPayload, 0, len(entries))
	for _, entry := range entries {
		payloads = append(payloads, newAuditEntryPayload(entry))
	}

	c.JSON(http.StatusOK, AuditListResponse{
		Entries: payloads,
		Count:   len(payloads),
	})
}

func parseAuditFilter(c *gin.Context) (domain.AuditFilter, error) {
	filter := domain.AuditFilter{
		AdminID:  strings.TrimSpace(c.Query("admin_id")),
		Resource: domain.Resource(strings.TrimSpace(c.Query("resource"))),
		Action:   strings.TrimSpace(c.Query("action")),
		Limit:    auditDefaultLimit,
	}

	if raw := c.Query("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.AuditFilter{}, errInvalidQuery("since must be RFC 3339")
		}
		filter.Since = since
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return domain.AuditFilter{}, errInvalidQuery("limit must be a positive integer")
		}
		if limit > auditMaxLimit {
			limit = auditMaxLimit
		}
		filter.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return domain.AuditFilter{}, errInvalidQuery("offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return string(e) }
