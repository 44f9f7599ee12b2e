package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.0, cfg.LLM.Temperature)
	assert.Equal(t, 8*time.Second, cfg.LLMTimeout())
	assert.Equal(t, 5*time.Second, cfg.NarrationTimeout())
	assert.Equal(t, 15*time.Minute, cfg.DraftTTL())
	assert.Equal(t, 5*time.Minute, cfg.PreviewTTL())
	assert.Contains(t, cfg.Review.AlwaysReview, "weapon_firearm")
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
llm:
  model: gemini-2.5-pro
  timeout: 12s
review:
  confidence_threshold: 0.7
cache:
  preview_ttl: 90s
data:
  watch_rules: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
	assert.Equal(t, 12*time.Second, cfg.LLMTimeout())
	assert.Equal(t, 0.7, cfg.Review.ConfidenceThreshold)
	assert.Equal(t, 90*time.Second, cfg.PreviewTTL())
	assert.True(t, cfg.Data.WatchRules)
	// Untouched fields keep defaults
	assert.Equal(t, 15*time.Minute, cfg.DraftTTL())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("GEMINI_API_KEY", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "test-key")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "test-key", cfg.LLM.APIKey)
	})

	t.Run("CHERRYPICK_REGULATION_DIR", func(t *testing.T) {
		t.Setenv("CHERRYPICK_REGULATION_DIR", "/srv/rules")
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		assert.Equal(t, "/srv/rules", cfg.Data.RegulationDir)
	})

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("CHERRYPICK_MODEL", "env-model")
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: file-model\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "env-model", cfg.LLM.Model)
	})
}

func TestValidate_TemperatureClamp(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Temperature = 0.9
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.05, cfg.LLM.Temperature)

	cfg.LLM.Temperature = -1
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.0, cfg.LLM.Temperature)
}

func TestValidate_BadDuration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "eight seconds"
	assert.Error(t, cfg.Validate())
}

func TestValidate_ConfidenceRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Review.ConfidenceThreshold = 1.5
	assert.Error(t, cfg.Validate())
}
