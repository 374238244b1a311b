package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %q", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("default storage driver = %q", cfg.Storage.Driver)
	}
	if cfg.Content.DefaultLocale != "en" {
		t.Errorf("default locale = %q", cfg.Content.DefaultLocale)
	}
	if cfg.Idempotency.TTL != 24*time.Hour {
		t.Errorf("default idempotency TTL = %s", cfg.Idempotency.TTL)
	}
	if cfg.PubSub.PublishEnabled() {
		t.Errorf("publishing should be disabled without a topic")
	}
	if !cfg.RateLimit.Enabled() || cfg.RateLimit.Requests != 120 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("default rate limit = %+v", cfg.RateLimit)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("STORAGE_DRIVER", "firestore")
	t.Setenv("FIRESTORE_PROJECT_ID", "mirada-dev")
	t.Setenv("ACTIVITY_TOPIC_ID", "cms-activity")
	t.Setenv("API_RATELIMIT_REQUESTS", "10")
	t.Setenv("API_RATELIMIT_WINDOW", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("read timeout = %s", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "mirada-dev" {
		t.Errorf("firestore project = %q", cfg.Firestore.ProjectID)
	}
	if !cfg.PubSub.PublishEnabled() {
		t.Errorf("publishing should be enabled")
	}
	if cfg.RateLimit.Requests != 10 || cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("rate limit = %+v", cfg.RateLimit)
	}
}

func TestLoadRateLimitDisabled(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")
	t.Setenv("API_RATELIMIT_REQUESTS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RateLimit.Enabled() {
		t.Errorf("zero request budget should disable throttling, got %+v", cfg.RateLimit)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("ENV_FILE", "does-not-exist.env")

	t.Run("bad port", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for non-numeric port")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "dynamo")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for unknown storage driver")
		}
	})

	t.Run("firestore without project", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "firestore")
		t.Setenv("FIRESTORE_PROJECT_ID", "")
		t.Setenv("FIRESTORE_EMULATOR_HOST", "")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for firestore driver without project id")
		}
	})

	t.Run("negative timeout", func(t *testing.T) {
		t.Setenv("SERVER_READ_TIMEOUT", "-3s")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for negative timeout")
		}
	})

	t.Run("negative rate limit", func(t *testing.T) {
		t.Setenv("API_RATELIMIT_REQUESTS", "-5")
		if _, err := Load(); err == nil {
			t.Fatal("expected error for negative rate limit budget")
		}
	})
}
