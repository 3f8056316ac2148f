package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/revdex/revdex/internal/domain"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Auth type constants
const (
	AuthTypeNone   = "none"
	AuthTypeBasic  = "basic"
	AuthTypeAPIKey = "apikey"
)

// AuthSettings configuration for SSE transport authentication
type AuthSettings struct {
	Type    string            `mapstructure:"type"` // AuthTypeNone, AuthTypeBasic, or AuthTypeAPIKey
	Basic   BasicAuthSettings `mapstructure:"basic"`
	APIKeys []string          `mapstructure:"api_keys"`
}

// BasicAuthSettings configuration for basic auth
type BasicAuthSettings struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// IndexSettings configuration for the review index
type IndexSettings struct {
	// DatabasePath is the path to the review SQLite database.
	DatabasePath string `mapstructure:"database_path"`

	// BaseDir holds the index directory, the watermark file, and the
	// run lock.
	BaseDir string `mapstructure:"base_dir"`

	// Statuses is the set of review request statuses eligible for
	// indexing.
	Statuses []string `mapstructure:"statuses"`

	// MaxResults caps the number of search results returned per query.
	MaxResults int `mapstructure:"max_results"`
}

// Settings application settings
type Settings struct {
	Transport string        `mapstructure:"transport"`
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Auth      AuthSettings  `mapstructure:"auth"`
	Index     IndexSettings `mapstructure:"index"`
}

// LoadSettings loads settings from environment variables and optional .env file
func LoadSettings() (*Settings, error) {
	return LoadSettingsWithFlags(nil)
}

// LoadSettingsWithFlags loads settings with optional CLI flag overrides.
// Priority: CLI flags > environment variables > .env file > defaults.
// If flags is nil, only env vars and defaults are used.
func LoadSettingsWithFlags(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	// Default values
	v.SetDefault("transport", "stdio")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("auth.type", AuthTypeNone)

	// Index defaults
	v.SetDefault("index.base_dir", defaultBaseDir())
	v.SetDefault("index.statuses", []string{domain.StatusPending, domain.StatusSubmitted})
	v.SetDefault("index.max_results", 20)

	// Environment variables
	v.SetEnvPrefix("REVDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind specific env vars for nested config
	_ = v.BindEnv("auth.type", "REVDEX_AUTH_TYPE")
	_ = v.BindEnv("auth.basic.username", "REVDEX_AUTH_BASIC_USERNAME")
	_ = v.BindEnv("auth.basic.password", "REVDEX_AUTH_BASIC_PASSWORD")
	_ = v.BindEnv("auth.api_keys", "REVDEX_AUTH_API_KEYS")

	_ = v.BindEnv("index.database_path", "REVDEX_INDEX_DATABASE_PATH")
	_ = v.BindEnv("index.base_dir", "REVDEX_INDEX_BASE_DIR")
	_ = v.BindEnv("index.statuses", "REVDEX_INDEX_STATUSES")
	_ = v.BindEnv("index.max_results", "REVDEX_INDEX_MAX_RESULTS")

	// Bind CLI flags if provided (highest priority)
	if flags != nil {
		_ = v.BindPFlag("transport", flags.Lookup("transport"))
		_ = v.BindPFlag("host", flags.Lookup("host"))
		_ = v.BindPFlag("port", flags.Lookup("port"))
		_ = v.BindPFlag("auth.type", flags.Lookup("auth-type"))
		_ = v.BindPFlag("auth.basic.username", flags.Lookup("auth-basic-username"))
		_ = v.BindPFlag("auth.basic.password", flags.Lookup("auth-basic-password"))
		_ = v.BindPFlag("auth.api_keys", flags.Lookup("auth-api-keys"))

		_ = v.BindPFlag("index.database_path", flags.Lookup("database"))
		_ = v.BindPFlag("index.base_dir", flags.Lookup("base-dir"))
		_ = v.BindPFlag("index.statuses", flags.Lookup("statuses"))
		_ = v.BindPFlag("index.max_results", flags.Lookup("max-results"))
	}

	// Helper to look for .env file
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if .env doesn't exist

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, err
	}

	// Env vars deliver list values as comma-separated strings.
	settings.Auth.APIKeys = splitEnvList(settings.Auth.APIKeys, os.Getenv("REVDEX_AUTH_API_KEYS"))
	settings.Index.Statuses = splitEnvList(settings.Index.Statuses, os.Getenv("REVDEX_INDEX_STATUSES"))

	// Expand home directory in paths
	settings.Index.BaseDir = expandHomeDir(settings.Index.BaseDir)
	settings.Index.DatabasePath = expandHomeDir(settings.Index.DatabasePath)

	return &settings, nil
}

// splitEnvList normalizes a list setting that may have arrived as a
// single comma-separated env var value, trimming spaces and dropping
// empty elements.
func splitEnvList(current []string, envValue string) []string {
	if envValue != "" {
		if len(current) == 0 || (len(current) == 1 && strings.Contains(current[0], ",")) {
			current = strings.Split(envValue, ",")
		}
	}

	var result []string
	for _, s := range current {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// defaultBaseDir returns the default directory for index state
func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".revdex"
	}
	return filepath.Join(home, ".revdex")
}

// expandHomeDir expands ~ to the user's home directory
func expandHomeDir(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home
	}
	return path
}

// ValidateSettings checks for conflicting or incomplete configurations.
func ValidateSettings(s *Settings) error {
	switch s.Transport {
	case "stdio", "sse":
		// valid
	default:
		return errors.New("transport must be 'stdio' or 'sse', got: " + s.Transport)
	}

	hasBasicCreds := s.Auth.Basic.Username != "" || s.Auth.Basic.Password != ""
	hasAPIKeys := len(s.Auth.APIKeys) > 0

	switch s.Auth.Type {
	case AuthTypeNone, "":
		if hasBasicCreds || hasAPIKeys {
			return errors.New("auth-type 'none' is incompatible with auth credentials")
		}
	case AuthTypeBasic:
		if hasAPIKeys {
			return errors.New("auth-type 'basic' is mutually exclusive with auth-api-keys")
		}
		if s.Auth.Basic.Username == "" || s.Auth.Basic.Password == "" {
			return errors.New("auth-type 'basic' requires both username and password")
		}
	case AuthTypeAPIKey:
		if hasBasicCreds {
			return errors.New("auth-type 'apikey' is mutually exclusive with basic auth credentials")
		}
		if !hasAPIKeys {
			return errors.New("auth-type 'apikey' requires at least one API key")
		}
	default:
		return errors.New("unknown auth-type: " + s.Auth.Type)
	}

	return validateIndexSettings(&s.Index)
}

// validateIndexSettings validates the index configuration
func validateIndexSettings(i *IndexSettings) error {
	if i.DatabasePath == "" {
		return errors.New("a review database path is required (database)")
	}

	if i.BaseDir == "" {
		return errors.New("base-dir cannot be empty")
	}

	if len(i.Statuses) == 0 {
		return errors.New("at least one eligible status is required (statuses)")
	}
	for _, status := range i.Statuses {
		switch status {
		case domain.StatusPending, domain.StatusSubmitted, domain.StatusDiscarded:
			// valid
		default:
			return errors.New("unknown review request status: " + status)
		}
	}

	if i.MaxResults <= 0 {
		return errors.New("max-results must be positive")
	}

	return nil
}
