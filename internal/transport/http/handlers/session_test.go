package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository/memory"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/transport/http/middleware"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/usecase"
)

func newSessionRouter(t *testing.T, admin domain.AdministratorIdentity) (*gin.Engine, *usecase.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := usecase.NewSessionService(memory.NewSessionStore(), nil, zaptest.NewLogger(t))
	handler := NewSessionHandler(sessions)

	router := gin.New()
	router.Use(middleware.EnrichContext())
	group := router.Group("/sessions")
	group.Use(injectAdmin(admin))
	handler.RegisterRoutes(group)

	return router, sessions
}

func TestCurrentSessionNotFound(t *testing.T) {
	router, _ := newSessionRouter(t, testAdmin())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/current", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without active session, got %d", rr.Code)
	}
}

func TestCurrentSessionReturnsActive(t *testing.T) {
	admin := testAdmin()
	router, sessions := newSessionRouter(t, admin)

	created, err := sessions.Create(context.Background(), admin, usecase.SessionMetadata{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/current", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload SessionPayload
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.ID != created.ID || !payload.IsActive {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestGetSessionByIDNotFound(t *testing.T) {
	router, _ := newSessionRouter(t, testAdmin())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown session, got %d", rr.Code)
	}
}

func TestGetSessionByIDOwnership(t *testing.T) {
	other := testAdmin()
	other.SubjectID = "adm-2"

	admin := testAdmin()
	router, sessions := newSessionRouter(t, admin)

	foreign, err := sessions.Create(context.Background(), other, usecase.SessionMetadata{})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/"+foreign.ID, nil))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign session, got %d", rr.Code)
	}

	own, err := sessions.Create(context.Background(), admin, usecase.SessionMetadata{})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/"+own.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for own session, got %d", rr.Code)
	}
}

func TestGetSessionByIDSuperAdminSeesAll(t *testing.T) {
	other := testAdmin()
	other.SubjectID = "adm-2"

	super := testAdmin()
	super.Role = domain.RoleSuperAdmin
	router, sessions := newSessionRouter(t, super)

	foreign, err := sessions.Create(context.Background(), other, usecase.SessionMetadata{})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/"+foreign.ID, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for super_admin, got %d", rr.Code)
	}
}
