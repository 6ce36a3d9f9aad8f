package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freetime.log")

	log, err := New(path, "info")
	require.NoError(t, err)

	log.Info("resource=%d slots=%d", 7, 24)
	log.Debug("must not be written")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "resource=7 slots=24")
	assert.NotContains(t, string(data), "must not be written")
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), "info")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}
