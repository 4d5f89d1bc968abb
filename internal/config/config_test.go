package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Database)
	assert.False(t, cfg.Debug)
	assert.Equal(t, DefaultRetentionDays, cfg.RetentionDays)
	assert.True(t, cfg.BackupBeforeReset)
	assert.Empty(t, cfg.File)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database: ~/habits/pet.json
debug: true
retention_days: 30
backup_before_reset: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "habits", "pet.json"), cfg.Database)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.False(t, cfg.BackupBeforeReset)
	assert.Equal(t, path, cfg.File)
}

func TestLoadKeepsURLs(t *testing.T) {
	path := writeConfig(t, "database: postgres://habitpet@localhost/habitpet\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://habitpet@localhost/habitpet", cfg.Database)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "retention_days: 30\n")
	t.Setenv("HABITPET_RETENTION_DAYS", "7")
	t.Setenv("HABITPET_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RetentionDays)
	assert.True(t, cfg.Debug)
}

func TestLoadRejectsNegativeRetention(t *testing.T) {
	path := writeConfig(t, "retention_days: -1\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "retention_days")
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "debug: [unterminated\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, expandPath("~"))
	assert.Equal(t, filepath.Join(home, "a", "b"), expandPath("~/a/b"))
	assert.Equal(t, "/abs/path", expandPath("/abs/path"))
	assert.Equal(t, filepath.Join(home, ".config", "habitpet"), ConfigDir())
}
