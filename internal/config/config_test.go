package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TASKDECK_DATA_DIR", t.TempDir())
	t.Setenv("TASKDECK_API_URL", "")
	t.Setenv("TASKDECK_TIMEOUT", "")
	t.Setenv("TASKDECK_DEBUG", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("TASKDECK_DATA_DIR", dir)
	t.Setenv("TASKDECK_API_URL", "https://tasks.example.com/api")
	t.Setenv("TASKDECK_TIMEOUT", "30")
	t.Setenv("TASKDECK_DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, dir, cfg.DataDir)
	assert.True(t, cfg.Debug)
	// The data directory is created on load.
	assert.DirExists(t, dir)
}

func TestLoadIgnoresBadTimeout(t *testing.T) {
	t.Setenv("TASKDECK_DATA_DIR", t.TempDir())
	t.Setenv("TASKDECK_TIMEOUT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}
