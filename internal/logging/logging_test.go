package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	logger, err := New(Config{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	logger.Info("report written")
	_ = logger.Sync()

	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(blob), `"msg":"report written"`)
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	logger := Must(Config{Level: "loud", Format: "console", OutputPath: filepath.Join(t.TempDir(), "x.log")})
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
