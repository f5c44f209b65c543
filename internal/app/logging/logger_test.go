package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, dev := range []bool{true, false} {
		logger, err := New(dev)
		require.NoError(t, err)
		assert.NotNil(t, logger)
		assert.Equal(t, dev, logger.Core().Enabled(zapcore.DebugLevel))
	}
}

func TestComponent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Component(zap.New(core), "merge").Info("done")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "merge", logs.All()[0].ContextMap()["component"])

	assert.NotPanics(t, func() { Component(nil, "x").Info("ignored") })
}
