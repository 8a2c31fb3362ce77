package logging_test

import (
	"fmt"
	"testing"

	"virtualvault/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := logging.New(false, "warn")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	dev, err := logging.New(true, "")
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logging.New(false, "loud")
	assert.Error(t, err)
}

func TestWriter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := logging.Writer(zap.New(core))

	_, err := fmt.Fprint(w, "200 GET /api/v1/product/get-product\n")
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "200 GET /api/v1/product/get-product", logs.All()[0].Message)
}
