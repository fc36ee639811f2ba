package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken  string
	GitHubAPIURL string // empty means api.github.com
	Username     string // signed-in GitHub login for the CLI

	// Storage
	StorageType string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresURL string

	// API Server
	APIPort          string
	APIHost          string
	VerifyWithGitHub bool // re-fetch repositories from GitHub before accepting them

	// CLI
	APIEndpoint string

	LogLevel string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		GitHubToken:      getEnv("GITHUB_TOKEN", ""),
		GitHubAPIURL:     getEnv("GITHUB_API_URL", ""),
		Username:         getEnv("GITHUB_USERNAME", ""),
		StorageType:      getEnv("STORAGE_TYPE", "sqlite"),
		SQLitePath:       getEnv("SQLITE_PATH", "./importer.db"),
		PostgresURL:      getEnv("POSTGRES_URL", ""),
		APIPort:          getEnv("API_PORT", "8080"),
		APIHost:          getEnv("API_HOST", "localhost"),
		VerifyWithGitHub: getEnvBool("VERIFY_WITH_GITHUB", false),
		APIEndpoint:      getEnv("API_ENDPOINT", "http://localhost:8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// Validate validates the settings the API server needs
func (c *Config) Validate() error {
	if c.StorageType != "sqlite" && c.StorageType != "postgres" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'sqlite' or 'postgres'"}
	}
	if c.StorageType == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when STORAGE_TYPE is 'postgres'"}
	}
	if c.VerifyWithGitHub && c.GitHubToken == "" {
		return &ConfigError{Field: "GITHUB_TOKEN", Message: "GitHub token is required when VERIFY_WITH_GITHUB is set"}
	}
	return nil
}

// ValidateClient validates the settings the importer CLI needs
func (c *Config) ValidateClient() error {
	if c.APIEndpoint == "" {
		return &ConfigError{Field: "API_ENDPOINT", Message: "backend endpoint is required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
