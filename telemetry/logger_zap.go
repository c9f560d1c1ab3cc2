package telemetry

import (
	"context"
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger builds a *slog.Logger backed by a zap production core, for
// deployments that already ship zap-formatted log pipelines. Selected via
// the LOG_BACKEND=zap env var in cmd/exampleservice.
func NewZapLogger(serviceName string) (*slog.Logger, error) {
	zl, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return slog.New(newZapHandler(zl)).With(slog.String("service", serviceName)), nil
}

// zapHandler adapts a *zap.Logger to slog.Handler, so the rest of the
// framework depends only on log/slog while zap's encoder and sampling do
// the actual writing.
type zapHandler struct {
	logger *zap.Logger
}

func newZapHandler(logger *zap.Logger) *zapHandler {
	return &zapHandler{logger: logger}
}

func (h *zapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Core().Enabled(slogToZapLevel(level))
}

func (h *zapHandler) Handle(_ context.Context, record slog.Record) error {
	ce := h.logger.Check(slogToZapLevel(record.Level), record.Message)
	if ce == nil {
		return nil
	}

	fields := make([]zap.Field, 0, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		fields = append(fields, zap.Any(a.Key, a.Value.Any()))
		return true
	})

	ce.Write(fields...)
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make([]zap.Field, 0, len(attrs))
	for _, a := range attrs {
		fields = append(fields, zap.Any(a.Key, a.Value.Any()))
	}
	return &zapHandler{logger: h.logger.With(fields...)}
}

func (h *zapHandler) WithGroup(name string) slog.Handler {
	return &zapHandler{logger: h.logger.Named(name)}
}

func slogToZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
