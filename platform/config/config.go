// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// PipelineConfig provides the lead pipeline business rules. These map to the
// thresholds the engine enforces: the call-attempt ceiling, the staleness
// window for RICHIAMARE leads, and how assignment treats already-owned leads.
type PipelineConfig interface {
	GetMaxCallAttempts() int
	GetAutoLossDays() int
	GetAssignmentOverwrite() bool
}

// Config holds all application configuration loaded from the environment.
type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	JWTAccessSecret string

	CORSAllowAll   bool
	CORSOrigins    []string
	CORSAllowCreds bool

	MaxCallAttempts     int
	AutoLossDays        int
	AssignmentOverwrite bool
}

func (c *Config) GetDatabaseURL() string       { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string   { return c.JWTAccessSecret }
func (c *Config) GetHTTPAddr() string          { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool        { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string     { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool      { return c.CORSAllowCreds }
func (c *Config) GetMaxCallAttempts() int      { return c.MaxCallAttempts }
func (c *Config) GetAutoLossDays() int         { return c.AutoLossDays }
func (c *Config) GetAssignmentOverwrite() bool { return c.AssignmentOverwrite }

// Load reads configuration from the environment, with .env as a fallback for
// local development. Returns an error when required settings are missing or
// contradictory.
func Load() (*Config, error) {
	// Ignore error: .env is optional in production environments.
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", ""))

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),

		CORSAllowAll:   containsWildcard(corsOrigins),
		CORSOrigins:    corsOrigins,
		CORSAllowCreds: getEnv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		MaxCallAttempts:     mustInt(getEnv("PIPELINE_MAX_CALL_ATTEMPTS", "8")),
		AutoLossDays:        mustInt(getEnv("PIPELINE_AUTO_LOSS_DAYS", "15")),
		AssignmentOverwrite: getEnv("PIPELINE_ASSIGNMENT_OVERWRITE", "false") == "true",
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ORIGINS contains *")
	}
	if cfg.MaxCallAttempts < 1 {
		return nil, fmt.Errorf("PIPELINE_MAX_CALL_ATTEMPTS must be at least 1")
	}
	if cfg.AutoLossDays < 1 {
		return nil, fmt.Errorf("PIPELINE_AUTO_LOSS_DAYS must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
