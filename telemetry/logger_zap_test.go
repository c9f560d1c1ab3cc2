package telemetry

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapHandlerForwardsLevelMessageAndAttrs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := slog.New(newZapHandler(zap.New(core)))

	logger.Warn("disk low", slog.String("volume", "/data"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, "disk low", entries[0].Message)
	assert.Equal(t, "/data", entries[0].ContextMap()["volume"])
}

func TestZapHandlerWithAttrsPersistsAcrossCalls(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := slog.New(newZapHandler(zap.New(core))).With(slog.String("service", "exampleservice"))

	logger.Info("ready")

	require.Len(t, logs.All(), 1)
	assert.Equal(t, "exampleservice", logs.All()[0].ContextMap()["service"])
}

func TestZapHandlerSkipsBelowConfiguredLevel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := slog.New(newZapHandler(zap.New(core)))

	logger.Info("ignored")

	assert.Empty(t, logs.All())
}

func TestNewZapLoggerBuildsLogger(t *testing.T) {
	logger, err := NewZapLogger("exampleservice")
	require.NoError(t, err)
	require.NotNil(t, logger)
}
