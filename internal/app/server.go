package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/revdex/revdex/internal/auth"
	"github.com/revdex/revdex/internal/config"
	"github.com/revdex/revdex/internal/search"
)

// StartSSEServer serves the MCP tools over HTTP/SSE until the listener
// fails.
func StartSSEServer(s *mcp.Server, svc *search.Service, settings *config.Settings) error {
	srv, err := NewSSEServer(s, svc, settings)
	if err != nil {
		return err
	}

	slog.Info("Serving search over SSE", "addr", srv.Addr, "auth_type", settings.Auth.Type)
	return srv.ListenAndServe()
}

// NewSSEServer builds the HTTP server: the SSE endpoint behind the
// configured auth middleware, plus an unauthenticated health endpoint
// that reports whether the search index is open.
func NewSSEServer(s *mcp.Server, svc *search.Service, settings *config.Settings) (*http.Server, error) {
	middleware, err := auth.NewMiddleware(settings.Auth)
	if err != nil {
		return nil, fmt.Errorf("configure auth middleware: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler(svc))
	mux.Handle("/sse", mcp.NewSSEHandler(func(*http.Request) *mcp.Server { return s }, nil))

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", settings.Host, settings.Port),
		Handler: middleware(mux),
	}, nil
}

// healthHandler reports readiness. The serving side is healthy once the
// search index is open; before an index run has produced one, the
// endpoint answers 503 so load balancers keep traffic away.
func healthHandler(svc *search.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if svc == nil || !svc.IsReady() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("index not ready"))
			return
		}
		_, _ = w.Write([]byte("ready"))
	}
}
