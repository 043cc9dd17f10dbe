package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("delivery-api")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.ServiceName != "delivery-api" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.SuggestionDebounce != 250*time.Millisecond {
		t.Errorf("SuggestionDebounce = %v, want 250ms", cfg.SuggestionDebounce)
	}
	if cfg.SecondaryTimeout != 5*time.Second {
		t.Errorf("SecondaryTimeout = %v, want 5s", cfg.SecondaryTimeout)
	}
	if cfg.NominatimBaseURL == "" {
		t.Error("NominatimBaseURL should have a default")
	}
	if cfg.StaticDefaultFee != 5.00 {
		t.Errorf("StaticDefaultFee = %v, want 5.00", cfg.StaticDefaultFee)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAPS_API_KEY", "test-key")
	t.Setenv("SUGGESTION_DEBOUNCE", "100ms")
	t.Setenv("STATIC_DEFAULT_FEE", "7.5")
	t.Setenv("DEFAULT_BRANCH_LAT", "47.6062")
	t.Setenv("DEFAULT_BRANCH_LNG", "-122.3321")

	cfg, err := Load("delivery-api")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.MapsAPIKey != "test-key" {
		t.Errorf("MapsAPIKey = %q", cfg.MapsAPIKey)
	}
	if cfg.SuggestionDebounce != 100*time.Millisecond {
		t.Errorf("SuggestionDebounce = %v", cfg.SuggestionDebounce)
	}
	if cfg.StaticDefaultFee != 7.5 {
		t.Errorf("StaticDefaultFee = %v", cfg.StaticDefaultFee)
	}
	if cfg.DefaultBranchLat != 47.6062 || cfg.DefaultBranchLng != -122.3321 {
		t.Errorf("default branch location = (%v, %v)", cfg.DefaultBranchLat, cfg.DefaultBranchLng)
	}
}

func TestHasPrimaryCredentials(t *testing.T) {
	cfg := &Config{}
	if cfg.HasPrimaryCredentials() {
		t.Error("empty key should report no credentials")
	}

	cfg.MapsAPIKey = "key"
	if !cfg.HasPrimaryCredentials() {
		t.Error("non-empty key should report credentials")
	}
}

func TestEnvironmentPredicates(t *testing.T) {
	cfg := &Config{Environment: "development"}
	if !cfg.IsDevelopment() || cfg.IsProduction() {
		t.Error("development predicates wrong")
	}

	cfg.Environment = "production"
	if cfg.IsDevelopment() || !cfg.IsProduction() {
		t.Error("production predicates wrong")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DURATION", "15s")
	t.Setenv("TEST_FLOAT", "3.25")

	if GetEnv("TEST_STRING", "default") != "value" {
		t.Error("GetEnv failed")
	}
	if GetEnv("TEST_MISSING", "default") != "default" {
		t.Error("GetEnv default failed")
	}
	if GetEnvInt("TEST_INT", 0) != 42 {
		t.Error("GetEnvInt failed")
	}
	if GetEnvInt("TEST_STRING", 7) != 7 {
		t.Error("GetEnvInt should fall back on parse failure")
	}
	if !GetEnvBool("TEST_BOOL", false) {
		t.Error("GetEnvBool failed")
	}
	if GetEnvDuration("TEST_DURATION", 0) != 15*time.Second {
		t.Error("GetEnvDuration failed")
	}
	if GetEnvFloat("TEST_FLOAT", 0) != 3.25 {
		t.Error("GetEnvFloat failed")
	}
}
