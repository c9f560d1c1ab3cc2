// Package telemetry provides the ambient logging, metrics, and tracing
// stack shared by every dispatch stage.
package telemetry

import (
	"log/slog"
	"os"
)

// NewLogger builds a JSON-structured logger tagged with serviceName. The
// level is read from LOG_LEVEL (DEBUG/INFO/WARN/ERROR), defaulting to INFO.
func NewLogger(serviceName string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL"))})
	return slog.New(handler).With(slog.String("service", serviceName))
}

func logLevel(raw string) slog.Level {
	switch raw {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
