package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("HOST")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("RATE_LIMIT_ENABLED")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want \"0.0.0.0\"", cfg.Host)
	}
	if cfg.PostRateLimit != 10 {
		t.Errorf("PostRateLimit = %d, want 10", cfg.PostRateLimit)
	}
	if cfg.CommentRateLimit != 60 {
		t.Errorf("CommentRateLimit = %d, want 60", cfg.CommentRateLimit)
	}
	if cfg.VoteRateLimit != 120 {
		t.Errorf("VoteRateLimit = %d, want 120", cfg.VoteRateLimit)
	}
	if cfg.RateLimitWindow != time.Hour {
		t.Errorf("RateLimitWindow = %v, want 1h", cfg.RateLimitWindow)
	}
	if cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled should default to false; RateLimited is reserved for future use")
	}
	if cfg.ReapInterval != 24*time.Hour {
		t.Errorf("ReapInterval = %v, want 24h", cfg.ReapInterval)
	}
	if cfg.MaxMediaBytes != 100<<20 {
		t.Errorf("MaxMediaBytes = %d, want %d", cfg.MaxMediaBytes, 100<<20)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("PORT", "3000")
	os.Setenv("HOST", "127.0.0.1")
	os.Setenv("POST_RATE_LIMIT", "5")
	os.Setenv("REAP_INTERVAL", "30s")
	os.Setenv("RATE_LIMIT_ENABLED", "true")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("HOST")
		os.Unsetenv("POST_RATE_LIMIT")
		os.Unsetenv("REAP_INTERVAL")
		os.Unsetenv("RATE_LIMIT_ENABLED")
	}()

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want \"127.0.0.1\"", cfg.Host)
	}
	if cfg.PostRateLimit != 5 {
		t.Errorf("PostRateLimit = %d, want 5", cfg.PostRateLimit)
	}
	if cfg.ReapInterval != 30*time.Second {
		t.Errorf("ReapInterval = %v, want 30s", cfg.ReapInterval)
	}
	if !cfg.RateLimitEnabled {
		t.Error("RateLimitEnabled should be true")
	}
}
