package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webhookx-io/showgate/config/modules"
)

func TestNewZapLogger(t *testing.T) {
	file := filepath.Join(t.TempDir(), "showgate.log")
	logger, err := NewZapLogger(&modules.LogConfig{
		File:   file,
		Level:  modules.LogLevelInfo,
		Format: modules.LogFormatJson,
	})
	require.NoError(t, err)

	logger.Named("policy").Infow("decision", "key", "rating", "allowed", true)
	logger.Debug("dropped")
	_ = logger.Sync()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"logger":"policy"`)
	assert.Contains(t, string(b), `"key":"rating"`)
	assert.NotContains(t, string(b), "dropped")
}

func TestNewZapLoggerInvalidLevel(t *testing.T) {
	_, err := NewZapLogger(&modules.LogConfig{Level: "verbose", Format: modules.LogFormatText})
	assert.Error(t, err)
}

func TestNewZapLoggerText(t *testing.T) {
	file := filepath.Join(t.TempDir(), "showgate.log")
	logger, err := NewZapLogger(&modules.LogConfig{
		File:   file,
		Level:  modules.LogLevelDebug,
		Format: modules.LogFormatText,
	})
	require.NoError(t, err)

	logger.Named("store").Debugf("flushed %d states", 2)
	_ = logger.Sync()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[store]")
	assert.Contains(t, string(b), "flushed 2 states")
	assert.NotContains(t, string(b), "\x1b[")
}
