package infra

import "testing"

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BASE_URL", "")
	t.Setenv("STORAGE_PATH", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port mismatch: got %q", cfg.Port)
	}
	if cfg.StorageBaseURL != "http://localhost:8080/static" {
		t.Errorf("StorageBaseURL mismatch: got %q", cfg.StorageBaseURL)
	}
	if cfg.StoragePath != "./storage" {
		t.Errorf("StoragePath mismatch: got %q", cfg.StoragePath)
	}
	if cfg.GeminiBaseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Errorf("GeminiBaseURL mismatch: got %q", cfg.GeminiBaseURL)
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PORT", "1919")
	t.Setenv("STORAGE_BASE_URL", "https://cdn.example.com/static")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Port != "1919" {
		t.Errorf("Port mismatch: got %q", cfg.Port)
	}
	if cfg.StorageBaseURL != "https://cdn.example.com/static" {
		t.Errorf("StorageBaseURL mismatch: got %q", cfg.StorageBaseURL)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Errorf("RateLimitPerMin mismatch: got %d", cfg.RateLimitPerMin)
	}
}
