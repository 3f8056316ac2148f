package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/revdex/revdex/internal/config"
	"github.com/revdex/revdex/internal/domain"
	"github.com/revdex/revdex/internal/search"
	"github.com/revdex/revdex/internal/store"
)

func testMCPServer() *mcp.Server {
	return mcp.NewServer(&mcp.Implementation{Name: "revdex", Version: "test"}, nil)
}

// newIdleService builds a service over an empty migrated database with
// no index built yet.
func newIdleService(t *testing.T) (*search.Service, *store.DB) {
	t.Helper()

	db := store.NewTestDB(t)
	svc, err := search.NewService(&config.IndexSettings{
		BaseDir:    t.TempDir(),
		Statuses:   []string{domain.StatusPending},
		MaxResults: 20,
	}, store.NewStore(db))
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	return svc, db
}

func sseSettings(authType string) *config.Settings {
	settings := &config.Settings{
		Transport: "sse",
		Host:      "127.0.0.1",
		Port:      8080,
		Auth:      config.AuthSettings{Type: authType},
	}
	if authType == config.AuthTypeBasic {
		settings.Auth.Basic = config.BasicAuthSettings{Username: "admin", Password: "secret"}
	}
	return settings
}

func serveHealth(t *testing.T, srv *http.Server) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}

func TestNewSSEServer_Addr(t *testing.T) {
	svc, _ := newIdleService(t)

	srv, err := NewSSEServer(testMCPServer(), svc, sseSettings(config.AuthTypeNone))
	if err != nil {
		t.Fatalf("NewSSEServer failed: %v", err)
	}
	if srv.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q, want %q", srv.Addr, "127.0.0.1:8080")
	}
}

func TestNewSSEServer_AuthConfigError(t *testing.T) {
	svc, _ := newIdleService(t)

	settings := sseSettings(config.AuthTypeBasic)
	settings.Auth.Basic = config.BasicAuthSettings{}

	_, err := NewSSEServer(testMCPServer(), svc, settings)
	if err == nil {
		t.Error("Expected error for basic auth without credentials")
	}
}

func TestHealthEndpoint_NotReadyBeforeIndexRun(t *testing.T) {
	svc, _ := newIdleService(t)

	srv, err := NewSSEServer(testMCPServer(), svc, sseSettings(config.AuthTypeNone))
	if err != nil {
		t.Fatalf("NewSSEServer failed: %v", err)
	}

	rec := serveHealth(t, srv)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 before the index is open, got %d", rec.Code)
	}
	if rec.Body.String() != "index not ready" {
		t.Errorf("Body = %q, want %q", rec.Body.String(), "index not ready")
	}
}

func TestHealthEndpoint_ReadyAfterIndexOpens(t *testing.T) {
	svc, db := newIdleService(t)

	store.SeedRequest(t, db, &domain.ReviewRequest{
		ID:          1,
		Status:      domain.StatusPending,
		Summary:     "first change",
		LastUpdated: time.Now().Add(-time.Hour),
	})

	if _, err := svc.RunIndex(context.Background(), false); err != nil {
		t.Fatalf("RunIndex failed: %v", err)
	}
	if err := svc.OpenForSearch(); err != nil {
		t.Fatalf("OpenForSearch failed: %v", err)
	}

	srv, err := NewSSEServer(testMCPServer(), svc, sseSettings(config.AuthTypeNone))
	if err != nil {
		t.Fatalf("NewSSEServer failed: %v", err)
	}

	rec := serveHealth(t, srv)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 once the index is open, got %d", rec.Code)
	}
	if rec.Body.String() != "ready" {
		t.Errorf("Body = %q, want %q", rec.Body.String(), "ready")
	}
}

func TestHealthEndpoint_BypassesAuth(t *testing.T) {
	svc, _ := newIdleService(t)

	srv, err := NewSSEServer(testMCPServer(), svc, sseSettings(config.AuthTypeBasic))
	if err != nil {
		t.Fatalf("NewSSEServer failed: %v", err)
	}

	// No credentials: readiness must still answer, not 401.
	rec := serveHealth(t, srv)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from unauthenticated health check, got %d", rec.Code)
	}
}

func TestSSEEndpoint_RequiresAuth(t *testing.T) {
	svc, _ := newIdleService(t)

	srv, err := NewSSEServer(testMCPServer(), svc, sseSettings(config.AuthTypeBasic))
	if err != nil {
		t.Fatalf("NewSSEServer failed: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sse", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for /sse without credentials, got %d", rec.Code)
	}
}

func TestHealthEndpoint_NilService(t *testing.T) {
	srv, err := NewSSEServer(testMCPServer(), nil, sseSettings(config.AuthTypeNone))
	if err != nil {
		t.Fatalf("NewSSEServer failed: %v", err)
	}

	rec := serveHealth(t, srv)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 without a service, got %d", rec.Code)
	}
}
