package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AdminSummary describes the authenticated administrator in API responses.
type AdminSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Role          string   `json:"role"`
	SocietyID     string   `json:"society_id"`
	HomeWing      string   `json:"home_wing,omitempty"`
	AssignedWings []string `json:"assigned_wings,omitempty"`
}

// ScopeSummary describes the effective wing scope of the caller.
type ScopeSummary struct {
	WingRestricted bool     `json:"wing_restricted"`
	AllowedWings   []string `json:"allowed_wings,omitempty"`
}

// SessionPayload describes a session view in API responses.
type SessionPayload struct {
	ID         string    `json:"id"`
	AdminID    string    `json:"admin_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IsActive   bool      `json:"is_active"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	Admin   AdminSummary   `json:"admin"`
	Scope   ScopeSummary   `json:"scope"`
	Session SessionPayload `json:"session"`
}

// LogoutRequest carries an optional reason recorded with the invalidation.
type LogoutRequest struct {
	Reason string `json:"reason"`
}

// MeResponse returns the caller's identity, scope and active session.
type MeResponse struct {
	Admin   AdminSummary    `json:"admin"`
	Scope   ScopeSummary    `json:"scope"`
	Session *SessionPayload `json:"session,omitempty"`
}

// AuditEntryPayload describes a recorded privileged action.
type AuditEntryPayload struct {
	ID        string         `json:"id"`
	AdminID   string         `json:"admin_id"`
	AdminName string         `json:"admin_name"`
	AdminRole string         `json:"admin_role"`
	SocietyID string         `json:"society_id"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Details   map[string]any `json:"details,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	UserAgent string         `json:"user_agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditListResponse wraps a page of audit entries.
type AuditListResponse struct {
	Entries []AuditEntryPayload `json:"entries"`
	Count   int                 `json:"count"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func newAdminSummary(admin domain.AdministratorIdentity) AdminSummary {
	summary := AdminSummary{
		ID:        admin.SubjectID,
		Name:      admin.Name,
		Role:      string(admin.Role),
		SocietyID: admin.SocietyID,
		HomeWing:  admin.HomeWing,
	}

	if len(admin.AssignedWings) > 0 {
		wings := make([]string, len(admin.AssignedWings))
		copy(wings, admin.AssignedWings)
		summary.AssignedWings = wings
	}

	return summary
}

func newScopeSummary(scope domain.EffectiveScope) ScopeSummary {
	summary := ScopeSummary{WingRestricted: scope.WingRestricted}

	if len(scope.AllowedWings) > 0 {
		wings := make([]string, len(scope.AllowedWings))
		copy(wings, scope.AllowedWings)
		summary.AllowedWings = wings
	}

	return summary
}

func newSessionPayload(session domain.AdminSession) SessionPayload {
	return SessionPayload{
		ID:         session.ID,
		AdminID:    session.AdminID,
		CreatedAt:  session.CreatedAt,
		LastSeenAt: session.LastSeenAt,
		ExpiresAt:  session.ExpiresAt,
		IPAddress:  session.IPAddress,
		UserAgent:  session.UserAgent,
		IsActive:   session.IsActive,
	}
}

func newAuditEntryPayload(entry domain.AuditEntry) AuditEntryPayload {
	payload := AuditEntryPayload{
		ID:        entry.ID,
		AdminID:   entry.AdminID,
		AdminName: entry.AdminName,
		AdminRole: string(entry.AdminRole),
		SocietyID: entry.SocietyID,
		Action:    entry.Action,
		Resource:  string(entry.Resource),
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		CreatedAt: entry.CreatedAt,
	}

	if len(entry.Details) > 0 {
		details := make(map[string]any, len(entry.Details))
		for k, v := range entry.Details {
			details[k] = v
		}
		payload.Details = details
	}

	return payload
}
