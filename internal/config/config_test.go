package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8003", cfg.Server.Port)
	assert.Equal(t, "./data/annotations.db", cfg.Database.Path)
	assert.Equal(t, "./data/clean/processed_sentences.txt", cfg.Sentences.Path)
	assert.Equal(t, 720, cfg.Auth.TokenTTLMinutes)
	assert.Equal(t, 30, cfg.Annotation.TicketThreshold)
	assert.Equal(t, 10, cfg.Annotation.FlushThreshold)
	assert.Equal(t, 64, cfg.Annotation.FlushQueueSize)
}

func TestLoadConfigValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
sentences:
  path: /srv/sentences.txt
auth:
  jwt_secret: topsecret
  allowed_users:
    - alice
    - bob
annotation:
  ticket_threshold: 5
  flush_threshold: 2
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "/srv/sentences.txt", cfg.Sentences.Path)
	assert.Equal(t, "topsecret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"alice", "bob"}, cfg.Auth.AllowedUsers)
	assert.Equal(t, 5, cfg.Annotation.TicketThreshold)
	assert.Equal(t, 2, cfg.Annotation.FlushThreshold)
}

func TestLoadConfigExpandsSecretEnv(t *testing.T) {
	t.Setenv("TEST_ANNOTATOR_SECRET", "from-env")
	path := writeConfig(t, "auth:\n  jwt_secret: ${TEST_ANNOTATOR_SECRET}\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
