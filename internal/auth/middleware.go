package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/revdex/revdex/internal/config"
)

// Middleware wraps an HTTP handler with request authentication.
type Middleware func(http.Handler) http.Handler

// NewMiddleware builds the authentication middleware for the configured
// scheme. Health checks bypass authentication.
func NewMiddleware(settings config.AuthSettings) (Middleware, error) {
	verify, err := verifier(settings)
	if err != nil {
		return nil, err
	}
	if verify == nil {
		return func(next http.Handler) http.Handler { return next }, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}
			if !verify(w, r) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

// verifier returns the credential check for the configured auth type,
// or nil when authentication is disabled.
func verifier(settings config.AuthSettings) (func(http.ResponseWriter, *http.Request) bool, error) {
	switch settings.Type {
	case config.AuthTypeNone, "":
		return nil, nil

	case config.AuthTypeBasic:
		if settings.Basic.Username == "" || settings.Basic.Password == "" {
			return nil, fmt.Errorf("basic auth requires non-empty username and password")
		}
		username := settings.Basic.Username
		password := settings.Basic.Password
		return func(w http.ResponseWriter, r *http.Request) bool {
			user, pass, ok := r.BasicAuth()
			userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(pass), []byte(password)) == 1
			if !ok || !userMatch || !passMatch {
				w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
				return false
			}
			return true
		}, nil

	case config.AuthTypeAPIKey:
		if len(settings.APIKeys) == 0 {
			return nil, fmt.Errorf("apikey auth requires at least one API key")
		}
		keys := settings.APIKeys
		return func(_ http.ResponseWriter, r *http.Request) bool {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				return false
			}
			for _, valid := range keys {
				if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
					return true
				}
			}
			return false
		}, nil

	default:
		return nil, fmt.Errorf("unknown auth type: %s", settings.Type)
	}
}
