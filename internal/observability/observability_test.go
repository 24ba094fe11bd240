package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestSetupTracing_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "", "test-service")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_CreatesProvider(t *testing.T) {
	// Non-routable address so nothing is exported.
	shutdown, err := SetupTracing(context.Background(), "http://192.0.2.1:4318", "test-service")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "json", "test-service")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("warn", "console", "test-service")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, err := NewLogger("loud", "json", "test-service")
	assert.Error(t, err)
}
