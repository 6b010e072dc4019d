package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "voxmate.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "VoxMate", cfg.Name)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.Name)
	assert.Equal(t, 10*time.Second, cfg.ReadyTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 20000, cfg.Reading.TranslateInputLimit)
}

func TestLoad_ParsesYAMLAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxmate.yaml")
	data := `
language:
  default: es
model:
  ready_timeout: 2s
logging:
  debug_mode: true
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "es", cfg.Language.Default)
	assert.Equal(t, 2*time.Second, cfg.ReadyTimeout())
	// Untouched fields keep defaults.
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	assert.True(t, cfg.Logging.DebugMode)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("VOXMATE_LANGUAGE", "fr")

	cfg, err := Load(filepath.Join(t.TempDir(), "voxmate.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.Model.APIKey)
	assert.Equal(t, "fr", cfg.Language.Default)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.APIKey = ""
	assert.Error(t, cfg.Validate())
}

func TestDuration_FallbackOnGarbage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Model.ReadyTimeout = "soon"
	cfg.Model.PollInterval = "often"
	assert.Equal(t, 10*time.Second, cfg.ReadyTimeout())
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
}
