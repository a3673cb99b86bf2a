package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harbinger-games/harbinger/internal/shared/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInit_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "harbinger.log")

	err := Init(&config.LoggerConfig{Level: "info", Format: "json", OutputPath: path}, false)
	require.NoError(t, err)
	t.Cleanup(func() { Logger = nil })

	Info("match formed", "match_id", "m-1")
	Get().Debug("hidden")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"match_id":"m-1"`)
	assert.NotContains(t, string(data), "hidden")
}
