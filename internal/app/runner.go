package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/revdex/revdex/internal/config"
	mcputil "github.com/revdex/revdex/internal/mcp"
	"github.com/revdex/revdex/internal/search"
	"github.com/revdex/revdex/internal/store"
	"github.com/spf13/pflag"
)

// RunParams contains dependencies for the run functions
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	NewService        func(*config.Settings) (*search.Service, func(), error)
	StartSSEServer    func(*mcp.Server, *search.Service, *config.Settings) error
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:   config.LoadSettingsWithFlags,
		ValidSettings:  config.ValidateSettings,
		NewService:     NewSearchService,
		StartSSEServer: StartSSEServer,
	}
}

// RunIndex executes one batch index run over the review database.
func RunIndex(ctx context.Context, params RunParams, flags *pflag.FlagSet, full bool, version string) error {
	settings, err := setup(params, flags, version)
	if err != nil {
		return err
	}

	service, cleanup, err := params.NewService(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := service.RunIndex(ctx, full)
	if err != nil {
		return fmt.Errorf("index run failed: %w", err)
	}

	slog.Info("Indexed review requests",
		"scanned", stats.Scanned, "indexed", stats.Indexed,
		"failed", stats.Failed, "full_rebuild", stats.FullRebuild)
	return nil
}

// RunServe opens the index read-only and serves the MCP tools over the
// configured transport.
func RunServe(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, err := setup(params, flags, version)
	if err != nil {
		return err
	}

	service, cleanup, err := params.NewService(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := service.OpenForSearch(); err != nil {
		// Serve anyway; the tools report the index as unavailable until
		// an index run happens.
		slog.Error("Failed to open search index", "error", err)
	}
	defer func() {
		if err := service.Close(); err != nil {
			slog.Error("Failed to close search service", "error", err)
		}
	}()

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:      "revdex",
		Version:   version,
		SearchSvc: service,
	})

	if settings.Transport == "stdio" {
		transport := params.CustomIOTransport
		if transport == nil {
			transport = &mcp.StdioTransport{}
		}
		return server.Run(ctx, transport)
	}

	slog.Info("Starting SSE server", "host", settings.Host, "port", settings.Port)
	return params.StartSSEServer(server, service, settings)
}

// setup loads and validates settings and configures logging.
func setup(params RunParams, flags *pflag.FlagSet, version string) (*config.Settings, error) {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Always log to stderr; stdout may carry the stdio MCP transport.
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	slog.Info("Starting revdex", "version", version)
	config.Log(settings)

	return settings, nil
}

// NewSearchService opens the review database, applies migrations, and
// builds the search service. The returned cleanup closes the database.
func NewSearchService(settings *config.Settings) (*search.Service, func(), error) {
	db, err := store.NewDB(settings.Index.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open review database: %w", err)
	}

	if err := store.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate review database: %w", err)
	}

	service, err := search.NewService(&settings.Index, store.NewStore(db))
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close review database", "error", err)
		}
	}
	return service, cleanup, nil
}
