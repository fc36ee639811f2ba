package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_TYPE", "")
	t.Setenv("API_ENDPOINT", "")
	t.Setenv("VERIFY_WITH_GITHUB", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "http://localhost:8080", cfg.APIEndpoint)
	assert.False(t, cfg.VerifyWithGitHub)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("GITHUB_USERNAME", "alice")
	t.Setenv("VERIFY_WITH_GITHUB", "true")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.Username)
	assert.True(t, cfg.VerifyWithGitHub)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"ok", Config{StorageType: "sqlite"}, ""},
		{"bad storage", Config{StorageType: "mysql"}, "STORAGE_TYPE"},
		{"postgres without url", Config{StorageType: "postgres"}, "POSTGRES_URL"},
		{"verify without token", Config{StorageType: "sqlite", VerifyWithGitHub: true}, "GITHUB_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
