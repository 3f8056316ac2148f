package config

import (
	"context"
	"log/slog"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.InfoContext(ctx, "Config: transport", "value", s.Transport)
	if s.Transport == "sse" {
		logger.InfoContext(ctx, "Config: host", "value", s.Host)
		logger.InfoContext(ctx, "Config: port", "value", s.Port)
	}

	logger.InfoContext(ctx, "Config: auth.type", "value", s.Auth.Type)
	switch s.Auth.Type {
	case AuthTypeBasic:
		logger.InfoContext(ctx, "Config: auth.basic.username", "value", s.Auth.Basic.Username)
		logger.InfoContext(ctx, "Config: auth.basic.password", "value", "****")
	case AuthTypeAPIKey:
		logger.InfoContext(ctx, "Config: auth.api_keys", "count", len(s.Auth.APIKeys))
	}

	logger.InfoContext(ctx, "Config: index.database_path", "value", s.Index.DatabasePath)
	logger.InfoContext(ctx, "Config: index.base_dir", "value", s.Index.BaseDir)
	logger.InfoContext(ctx, "Config: index.statuses", "value", s.Index.Statuses)
	logger.InfoContext(ctx, "Config: index.max_results", "value", s.Index.MaxResults)
}

// SettingsLogValue returns a slog.Value for Settings with masked credentials
func SettingsLogValue(s Settings) slog.Value {
	keys := make([]string, len(s.Auth.APIKeys))
	for i := range s.Auth.APIKeys {
		keys[i] = "****"
	}
	return slog.GroupValue(
		slog.String("transport", s.Transport),
		slog.String("host", s.Host),
		slog.Int("port", s.Port),
		slog.Group("auth",
			slog.String("type", s.Auth.Type),
			slog.String("basic_username", s.Auth.Basic.Username),
			slog.String("basic_password", "****"),
			slog.Any("api_keys", keys),
		),
		slog.Group("index",
			slog.String("database_path", s.Index.DatabasePath),
			slog.String("base_dir", s.Index.BaseDir),
			slog.Any("statuses", s.Index.Statuses),
			slog.Int("max_results", s.Index.MaxResults),
		),
	)
}
