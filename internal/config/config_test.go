package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "/data/wastenot.db", cfg.DBPath)
	assert.Equal(t, "sqlite", cfg.KVBackend)
	assert.Equal(t, "mock", cfg.VisionBackend)
	assert.Equal(t, "local", cfg.PhotoBackend)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadCustomValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("VISION_BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "sk-test123")
	t.Setenv("KV_BACKEND", "dynamodb")
	t.Setenv("API_TIMEOUT", "3s")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "claude", cfg.VisionBackend)
	assert.Equal(t, "sk-test123", cfg.ClaudeAPIKey)
	assert.Equal(t, "dynamodb", cfg.KVBackend)
	assert.Equal(t, 3*time.Second, cfg.APITimeout)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("S3_BUCKET=from-file\nOLLAMA_MODEL=llava\n"), 0600))
	t.Setenv("OLLAMA_MODEL", "from-env")
	t.Cleanup(func() { _ = os.Unsetenv("S3_BUCKET") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.S3Bucket)
	assert.Equal(t, "from-env", cfg.OllamaModel)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("KV_BACKEND", "postgres")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresClaudeKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("VISION_BACKEND", "claude")
	t.Setenv("CLAUDE_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "CLAUDE_API_KEY")
}

func TestLoadBadDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("API_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
