// Package config provides configuration loading with Azure Key Vault integration.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds common configuration for all services.
type Config struct {
	// Service identification
	ServiceName string
	Environment string
	Version     string

	// HTTP server
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Logging
	LogLevel string

	// Azure
	KeyVaultName   string
	AppInsightsKey string

	// Mapping providers
	MapsAPIKey         string
	NominatimBaseURL   string
	PrimaryTimeout     time.Duration
	SecondaryTimeout   time.Duration
	SuggestionDebounce time.Duration

	// Upstream services
	ZoneServiceURL   string
	BranchServiceURL string

	// Redis (maps response cache + provider rate limiting)
	RedisHost     string
	RedisPassword string

	// Fee resolution fallbacks
	DefaultBranchLat float64
	DefaultBranchLng float64
	StaticDefaultFee float64
}

// Load loads configuration from environment variables.
// For production, secrets are loaded from Azure Key Vault.
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		ServiceName:        serviceName,
		Environment:        getEnv("ENVIRONMENT", "development"),
		Version:            getEnv("VERSION", "0.0.1"),
		Port:               getEnvInt("PORT", 8080),
		ReadTimeout:        getEnvDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:       getEnvDuration("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:        getEnvDuration("IDLE_TIMEOUT", 60*time.Second),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		KeyVaultName:       getEnv("KEY_VAULT_NAME", ""),
		PrimaryTimeout:     getEnvDuration("MAPS_PRIMARY_TIMEOUT", 10*time.Second),
		SecondaryTimeout:   getEnvDuration("MAPS_SECONDARY_TIMEOUT", 5*time.Second),
		SuggestionDebounce: getEnvDuration("SUGGESTION_DEBOUNCE", 250*time.Millisecond),
		DefaultBranchLat:   getEnvFloat("DEFAULT_BRANCH_LAT", 0),
		DefaultBranchLng:   getEnvFloat("DEFAULT_BRANCH_LNG", 0),
		StaticDefaultFee:   getEnvFloat("STATIC_DEFAULT_FEE", 5.00),
	}

	// Load secrets from Key Vault in production
	if cfg.KeyVaultName != "" && cfg.Environment != "development" {
		if err := cfg.loadFromKeyVault(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to load secrets from Key Vault: %w", err)
		}
	} else {
		// Load from environment variables in development
		cfg.loadFromEnv()
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
func MustLoad(serviceName string) *Config {
	cfg, err := Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) loadFromEnv() {
	c.AppInsightsKey = getEnv("APPINSIGHTS_INSTRUMENTATIONKEY", "")
	c.MapsAPIKey = getEnv("MAPS_API_KEY", "")
	c.NominatimBaseURL = getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	c.ZoneServiceURL = getEnv("ZONE_SERVICE_URL", "http://localhost:8081")
	c.BranchServiceURL = getEnv("BRANCH_SERVICE_URL", "http://localhost:8082")
	c.RedisHost = getEnv("REDIS_HOST", "localhost:6379")
	c.RedisPassword = getEnv("REDIS_PASSWORD", "")
}

func (c *Config) loadFromKeyVault(ctx context.Context) error {
	kv, err := NewKeyVaultClient(c.KeyVaultName)
	if err != nil {
		return err
	}

	secrets := map[string]*string{
		"appinsights-key": &c.AppInsightsKey,
		"maps-api-key":    &c.MapsAPIKey,
		"redis-host":      &c.RedisHost,
		"redis-password":  &c.RedisPassword,
	}

	for name, ptr := range secrets {
		value, err := kv.GetSecret(ctx, name)
		if err != nil {
			// Log warning but continue - some secrets may be optional
			continue
		}
		*ptr = value
	}

	// Non-secret values still come from the environment.
	c.NominatimBaseURL = getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org")
	c.ZoneServiceURL = getEnv("ZONE_SERVICE_URL", "")
	c.BranchServiceURL = getEnv("BRANCH_SERVICE_URL", "")

	return nil
}

// HasPrimaryCredentials reports whether the primary mapping provider can be
// used at all. When false, geocoding routes entirely to the secondary
// provider and distance calculation is unavailable.
func (c *Config) HasPrimaryCredentials() bool {
	return c.MapsAPIKey != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnv gets an environment variable with a default value.
func GetEnv(key, defaultValue string) string {
	return getEnv(key, defaultValue)
}

// GetEnvInt gets an environment variable as an integer with a default value.
func GetEnvInt(key string, defaultValue int) int {
	return getEnvInt(key, defaultValue)
}

// GetEnvBool gets an environment variable as a boolean with a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	return getEnvBool(key, defaultValue)
}

// GetEnvDuration gets an environment variable as a duration with a default value.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return getEnvDuration(key, defaultValue)
}

// GetEnvFloat gets an environment variable as a float with a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	return getEnvFloat(key, defaultValue)
}
