package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "nb", cfg.Locale)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_base_url: https://file.example/\nlocale: en\n"), 0o600))

	t.Setenv("ARRANGEMENT_API_URL", "https://env.example/api/")
	t.Setenv("ARRANGEMENT_TOKEN", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/arrangement")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example/api", cfg.APIBaseURL)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "secret", cfg.AccessToken)
	assert.Equal(t, BackendPostgres, cfg.Storage.Backend)
}

func TestAccessTokenIsNeverSaved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.AccessToken = "secret"
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Locale = "fr"
	assert.ErrorContains(t, cfg.Validate(), "Locale")

	cfg = DefaultConfig()
	cfg.Storage = StorageConfig{Backend: BackendPostgres}
	assert.ErrorContains(t, cfg.Validate(), "DatabaseURL")

	cfg = DefaultConfig()
	cfg.Discord.WebhookID = "123"
	assert.Error(t, cfg.Validate())
}

func TestWithRemoteReturnsCopy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EmployeeSvcBaseURL = "https://local.example"
	merged := cfg.WithRemote(RemoteConfig{EmployeeSvcURL: "https://employees.example/"})

	assert.Equal(t, "https://employees.example", merged.EmployeeSvcBaseURL)
	assert.Equal(t, "https://local.example", cfg.EmployeeSvcBaseURL)
	assert.Equal(t, "https://local.example", cfg.WithRemote(RemoteConfig{}).EmployeeSvcBaseURL)
}
