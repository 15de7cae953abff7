package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/core/domain"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/repository/memory"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/transport/http/middleware"
	"github.com/divyansh-pathak129/OurSocietyServer-sub000/internal/usecase"
)

type memoryAuditStore struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	filters []domain.AuditFilter
}

func (m *memoryAuditStore) Append(_ context.Context, entry domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAuditStore) List(_ context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, filter)
	out := make([]domain.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func testAdmin() domain.AdministratorIdentity {
	return domain.AdministratorIdentity{
		SubjectID: "adm-1",
		Name:      "Asha",
		Role:      domain.RoleAdmin,
		SocietyID: "soc-1",
	}
}

// injectAdmin plants a resolved auth context the way the gate would.
func injectAdmin(admin domain.AdministratorIdentity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AdminContextKey, &usecase.AuthContext{
			Admin: admin,
			Scope: admin.Scope(),
		})
		c.Next()
	}
}

type authFixture struct {
	router   *gin.Engine
	sessions *usecase.SessionService
	audit    *usecase.AuditService
	store    *memoryAuditStore
}

func newAuthFixture(t *testing.T, admin domain.AdministratorIdentity) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memoryAuditStore{}
	sessions := usecase.NewSessionService(memory.NewSessionStore(), nil, zaptest.NewLogger(t))
	audit := usecase.NewAuditService(store, nil, zaptest.NewLogger(t), usecase.AuditConfig{QueueSize: 16})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = audit.Close(ctx)
	})

	handler := NewAuthHandler(sessions, audit, zaptest.NewLogger(t))

	router := gin.New()
	router.Use(middleware.EnrichContext())
	group := router.Group("/auth")
	group.Use(injectAdmin(admin))
	handler.RegisterRoutes(group)

	return &authFixture{router: router, sessions: sessions, audit: audit, store: store}
}

func TestLoginCreatesSession(t *testing.T) {
	fx := newAuthFixture(t, testAdmin())

	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Admin.ID != "adm-1" || resp.Admin.Role != "admin" {
		t.Fatalf("unexpected admin payload: %+v", resp.Admin)
	}
	if resp.Session.ID == "" || !resp.Session.IsActive {
		t.Fatalf("expected active session payload, got %+v", resp.Session)
	}

	active, err := fx.sessions.GetActive(context.Background(), "adm-1")
	if err != nil || active == nil {
		t.Fatalf("expected stored active session, got %v / %v", active, err)
	}
	if active.ID != resp.Session.ID {
		t.Fatalf("response session %s does not match stored %s", resp.Session.ID, active.ID)
	}
}

func TestLoginReplacesPriorSession(t *testing.T) {
	fx := newAuthFixture(t, testAdmin())

	first := httptest.NewRecorder()
	fx.router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	var firstResp LoginResponse
	if err := json.Unmarshal(first.Body.Bytes(), &firstResp); err != nil {
		t.Fatalf("decode first response: %v", err)
	}

	second := httptest.NewRecorder()
	fx.router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	var secondResp LoginResponse
	if err := json.Unmarshal(second.Body.Bytes(), &secondResp); err != nil {
		t.Fatalf("decode second response: %v", err)
	}

	old, err := fx.sessions.GetByID(context.Background(), firstResp.Session.ID)
	if err != nil {
		t.Fatalf("get first session: %v", err)
	}
	if old.IsActive {
		t.Fatal("expected first session to be replaced")
	}

	active, err := fx.sessions.GetActive(context.Background(), "adm-1")
	if err != nil || active == nil || active.ID != secondResp.Session.ID {
		t.Fatalf("expected second session active, got %v / %v", active, err)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	fx := newAuthFixture(t, testAdmin())

	login := httptest.NewRecorder()
	fx.router.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	body := strings.NewReader(`{"reason":"shift over"}`)
	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", body))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	// No active session left; logout again still succeeds.
	rr = httptest.NewRecorder()
	fx.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected idempotent logout 200, got %d", rr.Code)
	}

	active, err := fx.sessions.GetActive(context.Background(), "adm-1")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active != nil {
		t.Fatalf("expected no active session, got %+v", active)
	}
}

func TestMeReturnsIdentityAndSession(t *testing.T) {
	admin := testAdmin()
	admin.Role = domain.RoleWingChairman
	admin.HomeWing = "A"

	fx := newAuthFixture(t, admin)

	login := httptest.NewRecorder()
	fx.router.ServeHTTP(login, httptest.NewRequest(http.MethodPost, "/auth/login", nil))

	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp MeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Scope.WingRestricted {
		t.Fatal("expected wing restricted scope in payload")
	}
	if len(resp.Scope.AllowedWings) != 1 || resp.Scope.AllowedWings[0] != "A" {
		t.Fatalf("expected home wing fallback in scope, got %v", resp.Scope.AllowedWings)
	}
	if resp.Session == nil {
		t.Fatal("expected active session in payload")
	}
}

func TestLoginRecordsAuditEntry(t *testing.T) {
	fx := newAuthFixture(t, testAdmin())

	rr := httptest.NewRecorder()
	fx.router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := fx.audit.Close(ctx); err != nil {
		t.Fatalf("drain audit: %v", err)
	}

	fx.store.mu.Lock()
	defer fx.store.mu.Unlock()
	if len(fx.store.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(fx.store.entries))
	}
	entry := fx.store.entries[0]
	if entry.Action != "session.login" || entry.Resource != domain.ResourceSessions {
		t.Fatalf("unexpected audit entry: %+v", entry)
	}
	if entry.AdminName != "Asha" {
		t.Fatalf("expected actor snapshot, got %+v", entry)
	}
}
