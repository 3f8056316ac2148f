package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/revdex/revdex/internal/config"
	"github.com/revdex/revdex/internal/domain"
	"github.com/revdex/revdex/internal/search"
	"github.com/revdex/revdex/internal/store"
	"github.com/spf13/pflag"
)

// noopValidate is a no-op validation function for tests
func noopValidate(*config.Settings) error {
	return nil
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	return &config.Settings{
		Transport: "stdio",
		Auth:      config.AuthSettings{Type: config.AuthTypeNone},
		Index: config.IndexSettings{
			BaseDir:    t.TempDir(),
			Statuses:   []string{domain.StatusPending},
			MaxResults: 20,
		},
	}
}

// newServiceFactory builds services over a fresh migrated test database.
func newServiceFactory(t *testing.T, cleanupCalled *bool) func(*config.Settings) (*search.Service, func(), error) {
	t.Helper()
	return func(settings *config.Settings) (*search.Service, func(), error) {
		db := store.NewTestDB(t)
		svc, err := search.NewService(&settings.Index, store.NewStore(db))
		if err != nil {
			return nil, nil, err
		}
		return svc, func() {
			if cleanupCalled != nil {
				*cleanupCalled = true
			}
		}, nil
	}
}

func TestRunIndex_ErrorCases(t *testing.T) {
	tests := []struct {
		name           string
		params         RunParams
		wantErrContain string
	}{
		{
			name: "LoadSettings error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return nil, errors.New("settings error")
				},
				ValidSettings: noopValidate,
			},
			wantErrContain: "failed to load settings",
		},
		{
			name: "ValidSettings error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return &config.Settings{Transport: "stdio"}, nil
				},
				ValidSettings: func(*config.Settings) error {
					return errors.New("validation error")
				},
			},
			wantErrContain: "invalid configuration",
		},
		{
			name: "NewService error",
			params: RunParams{
				LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
					return &config.Settings{Transport: "stdio"}, nil
				},
				ValidSettings: noopValidate,
				NewService: func(*config.Settings) (*search.Service, func(), error) {
					return nil, nil, errors.New("service error")
				},
			},
			wantErrContain: "service error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunIndex(context.Background(), tt.params, nil, false, "test")
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErrContain)
			}
			if !strings.Contains(err.Error(), tt.wantErrContain) {
				t.Errorf("Expected error containing %q, got %q", tt.wantErrContain, err.Error())
			}
		})
	}
}

func TestRunIndex_Success(t *testing.T) {
	cleanupCalled := false
	settings := testSettings(t)
	params := RunParams{
		LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
			return settings, nil
		},
		ValidSettings: noopValidate,
		NewService:    newServiceFactory(t, &cleanupCalled),
	}

	if err := RunIndex(context.Background(), params, nil, false, "test"); err != nil {
		t.Fatalf("RunIndex failed: %v", err)
	}
	if !cleanupCalled {
		t.Error("Cleanup was not called")
	}
}

func TestRunServe_SSEStartError(t *testing.T) {
	cleanupCalled := false
	settings := testSettings(t)
	settings.Transport = "sse"

	params := RunParams{
		LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
			return settings, nil
		},
		ValidSettings: noopValidate,
		NewService:    newServiceFactory(t, &cleanupCalled),
		StartSSEServer: func(*mcp.Server, *search.Service, *config.Settings) error {
			return errors.New("sse start error")
		},
	}

	err := RunServe(context.Background(), params, nil, "test")
	if err == nil || !strings.Contains(err.Error(), "sse start error") {
		t.Fatalf("Expected sse start error, got %v", err)
	}
	if !cleanupCalled {
		t.Error("Cleanup was not called")
	}
}

func TestRunServe_StdioWithCustomTransport(t *testing.T) {
	transportUsed := false
	settings := testSettings(t)

	params := RunParams{
		LoadSettings: func(*pflag.FlagSet) (*config.Settings, error) {
			return settings, nil
		},
		ValidSettings:     noopValidate,
		NewService:        newServiceFactory(t, nil),
		CustomIOTransport: &mockTransport{connectCalled: &transportUsed},
	}

	// Use a cancelled context to avoid hanging
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = RunServe(ctx, params, nil, "test")

	if !transportUsed {
		t.Error("Custom transport Connect was not called")
	}
}

func TestDefaultRunParams(t *testing.T) {
	params := DefaultRunParams()

	if params.LoadSettings == nil {
		t.Error("LoadSettings is nil")
	}
	if params.ValidSettings == nil {
		t.Error("ValidSettings is nil")
	}
	if params.NewService == nil {
		t.Error("NewService is nil")
	}
	if params.StartSSEServer == nil {
		t.Error("StartSSEServer is nil")
	}
}

func TestNewSearchService(t *testing.T) {
	settings := testSettings(t)
	settings.Index.DatabasePath = t.TempDir() + "/reviews.db"

	svc, cleanup, err := NewSearchService(settings)
	if err != nil {
		t.Fatalf("NewSearchService failed: %v", err)
	}
	if svc == nil {
		t.Fatal("Expected non-nil service")
	}
	cleanup()
}

// mockTransport implements mcp.Transport for testing
type mockTransport struct {
	connectCalled *bool
}

func (m *mockTransport) Connect(ctx context.Context) (mcp.Connection, error) {
	if m.connectCalled != nil {
		*m.connectCalled = true
	}
	return nil, errors.New("mock transport - no real connection")
}
