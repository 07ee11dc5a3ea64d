package logging

import (
	"log/slog"
	"os"
)

// Init configures the default slog logger. The level comes from LOG_LEVEL
// (or the explicit argument when non-empty, which wins).
func Init(level string) {
	if level == "" {
		level, _ = os.LookupEnv("LOG_LEVEL")
	}

	lvl := slog.LevelInfo
	switch level {
	case "dev", "development", "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error", "production", "prod":
		lvl = slog.LevelError
	}

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: lvl,
		}),
	)
	slog.SetDefault(logger)
}
