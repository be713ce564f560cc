package main

import (
	"os"
	"testing"
)

func TestGetenv(t *testing.T) {
	key := "TEST_ENV_VAR_FEED"
	def := "default_value"
	if val := getenv(key, def); val != def {
		t.Errorf("expected %q, got %q", def, val)
	}

	expected := "set_value"
	os.Setenv(key, expected)
	defer os.Unsetenv(key)

	if val := getenv(key, def); val != expected {
		t.Errorf("expected %q, got %q", expected, val)
	}
}

func TestGetenvInt(t *testing.T) {
	key := "TEST_ENV_INT_FEED"
	if val := getenvInt(key, 7); val != 7 {
		t.Errorf("expected 7, got %d", val)
	}

	os.Setenv(key, "42")
	defer os.Unsetenv(key)
	if val := getenvInt(key, 7); val != 42 {
		t.Errorf("expected 42, got %d", val)
	}

	os.Setenv(key, "not-a-number")
	if val := getenvInt(key, 7); val != 7 {
		t.Errorf("expected fallback 7, got %d", val)
	}
}

func TestLoadConfigFromEnv_RequiresJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	if _, err := loadConfigFromEnv(); err == nil {
		t.Error("expected error without JWT_SECRET")
	}

	os.Setenv("JWT_SECRET", "secret")
	defer os.Unsetenv("JWT_SECRET")
	cfg, err := loadConfigFromEnv()
	if err != nil {
		t.Fatalf("loadConfigFromEnv: %v", err)
	}
	if cfg.Port == "" || cfg.DatabaseURL == "" {
		t.Error("defaults not applied")
	}
}
