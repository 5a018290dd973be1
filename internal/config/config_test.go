package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chTempDir(t *testing.T) {
	t.Helper()
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "acquire.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Acquire.MaxConcurrentFetches)
	assert.Equal(t, 300, cfg.Acquire.TimeoutSecs)
	assert.InDelta(t, 0.9, cfg.Dedup.SimilarityThreshold, 0.001)
	assert.Equal(t, 4, cfg.Dedup.FingerprintWorkers)
	assert.Equal(t, 5, cfg.Enrich.Concurrency)
	assert.Equal(t, 10, cfg.Enrich.MaxTags)
	assert.InDelta(t, 0.3, cfg.Enrich.TagThreshold, 0.001)
	assert.InDelta(t, 0.85, cfg.Enrich.NeutralQualityScore, 0.001)
	assert.Equal(t, "acquire-cli/1.0", cfg.Fetcher.UserAgent)
	assert.Equal(t, 30, cfg.Fetcher.TimeoutSecs)
	assert.Equal(t, 3, cfg.Fetcher.MaxRetries)
	assert.Equal(t, "https://api.mediainsight.dev/v1", cfg.MediaInsight.BaseURL)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/acquire
dedup:
  similarity_threshold: 0.95
enrich:
  disable_tagging: true
log:
  level: debug
  format: console
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/acquire", cfg.Store.DatabaseURL)
	assert.InDelta(t, 0.95, cfg.Dedup.SimilarityThreshold, 0.001)
	assert.True(t, cfg.Enrich.DisableTagging)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// Untouched keys keep their defaults.
	assert.Equal(t, 8, cfg.Acquire.MaxConcurrentFetches)
}

func TestLoadFromEnv(t *testing.T) {
	chTempDir(t)

	t.Setenv("ACQUIRE_STORE_DRIVER", "postgres")
	t.Setenv("ACQUIRE_ACQUIRE_MAX_CONCURRENT_FETCHES", "16")
	t.Setenv("ACQUIRE_MEDIAINSIGHT_KEY", "mi-test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 16, cfg.Acquire.MaxConcurrentFetches)
	assert.Equal(t, "mi-test-key", cfg.MediaInsight.Key)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	assert.Error(t, err)
}
