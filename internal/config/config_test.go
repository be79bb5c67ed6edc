package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveConfigCreatesDirectories(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Config{AccessToken: "tok"}
	require.NoError(t, cfg.Save())

	info, err := os.Stat(Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadConfigNonExistent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSaveLoadRoundtripWithAllFields(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	original := Config{
		BaseURL:         "https://proj.example.co",
		AnonKey:         "anon",
		AccessToken:     "tok",
		RefreshToken:    "ref",
		ExpiresAt:       time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		UserID:          "user-1",
		Email:           "ana@example.com",
		OrganizationID:  "org-1",
		DefaultClientID: "client-1",
		PageSize:        50,
		UndoDepth:       20,
		LogLevel:        "debug",
		LogFile:         "/tmp/cd.log",
	}
	require.NoError(t, original.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, original.BaseURL, loaded.BaseURL)
	assert.Equal(t, original.RefreshToken, loaded.RefreshToken)
	assert.True(t, original.ExpiresAt.Equal(loaded.ExpiresAt))
	assert.Equal(t, original.OrganizationID, loaded.OrganizationID)
	assert.Equal(t, original.DefaultClientID, loaded.DefaultClientID)
	assert.Equal(t, 50, loaded.PageSize)
	assert.Equal(t, 20, loaded.UndoDepth)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestSaveConfigOverwritesExisting(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, (&Config{AccessToken: "tok1"}).Save())
	require.NoError(t, (&Config{AccessToken: "tok2"}).Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tok2", loaded.AccessToken)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfgDir := filepath.Join(dir, ".clientdesk")
	require.NoError(t, os.MkdirAll(cfgDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config"), []byte("invalid: yaml: content:"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadWithoutTokenFailsButReadSucceeds(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, (&Config{BaseURL: "https://proj.example.co"}).Save())

	_, err := Load()
	assert.ErrorIs(t, err, ErrNoToken)

	cfg, err := Read()
	require.NoError(t, err)
	assert.Equal(t, "https://proj.example.co", cfg.BaseURL)
}

func TestConfigPermissionsStrictlyEnforced(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, (&Config{AccessToken: "secret"}).Save())
	require.NoError(t, os.Chmod(Path(), 0644))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")

	require.NoError(t, (&Config{AccessToken: "secret"}).Save())
	_, err = Load()
	assert.NoError(t, err, "save tightens permissions again")
}

func TestClearSessionKeepsConnection(t *testing.T) {
	cfg := Config{BaseURL: "u", AnonKey: "k", AccessToken: "t", UserID: "user-1", OrganizationID: "org-1"}
	cfg.ClearSession()
	assert.Equal(t, Config{BaseURL: "u", AnonKey: "k"}, cfg)
}

func TestApplyEnvOverridesFromDotenv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CLIENTDESK_BASE_URL=https://from-dotenv.example\nCLIENTDESK_PAGE_SIZE=40\n"), 0600))
	t.Setenv("CLIENTDESK_BASE_URL", "")
	t.Setenv("CLIENTDESK_PAGE_SIZE", "")
	t.Setenv("CLIENTDESK_LOG_LEVEL", "warn")
	os.Unsetenv("CLIENTDESK_BASE_URL")
	os.Unsetenv("CLIENTDESK_PAGE_SIZE")

	cfg := Config{BaseURL: "https://file.example", LogLevel: "info"}
	cfg.ApplyEnv(envFile)

	assert.Equal(t, "https://from-dotenv.example", cfg.BaseURL)
	assert.Equal(t, 40, cfg.PageSize)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestApplyEnvMissingFileIsFine(t *testing.T) {
	t.Setenv("CLIENTDESK_ANON_KEY", "env-key")
	cfg := Config{AnonKey: "file-key"}
	cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "env-key", cfg.AnonKey)
}

func TestPathReturnsCorrectLocation(t *testing.T) {
	path := Path()
	assert.Contains(t, path, ".clientdesk")
	assert.Contains(t, path, "config")
}
