package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile       = ".env"
	defaultPort          = "8080"
	defaultReadTimeout   = 15 * time.Second
	defaultWriteTimeout  = 30 * time.Second
	defaultIdleTimeout   = 120 * time.Second
	defaultStorageDriver = "memory"
	defaultLocale        = "en"
	defaultIdemTTL       = 24 * time.Hour

	defaultRateLimitRequests = 120
	defaultRateLimitWindow   = time.Minute
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Firestore   FirestoreConfig
	PubSub      PubSubConfig
	Content     ContentConfig
	Idempotency IdempotencyConfig
	RateLimit   RateLimitConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorageConfig selects the persistence driver.
type StorageConfig struct {
	// Driver is "memory" or "firestore".
	Driver string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// PubSubConfig configures the activity event topic. Publishing is disabled
// when the topic is empty.
type PubSubConfig struct {
	ProjectID string
	TopicID   string
}

// ContentConfig holds content-engine defaults.
type ContentConfig struct {
	DefaultLocale string
}

// IdempotencyConfig controls retention of idempotency records.
type IdempotencyConfig struct {
	TTL time.Duration
}

// RateLimitConfig throttles mutating requests per client address. Setting
// the request budget to zero disables throttling.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Enabled reports whether request throttling should be installed.
func (c RateLimitConfig) Enabled() bool {
	return c.Requests > 0 && c.Window > 0
}

// Load reads configuration from the environment, optionally seeding it from
// a .env file when present. Environment variables always win over file
// entries.
func Load() (Config, error) {
	loadEnvFile(strings.TrimSpace(os.Getenv("ENV_FILE")))

	cfg := Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", defaultPort),
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", defaultStorageDriver)),
		},
		Firestore: FirestoreConfig{
			ProjectID:    strings.TrimSpace(os.Getenv("FIRESTORE_PROJECT_ID")),
			EmulatorHost: strings.TrimSpace(os.Getenv("FIRESTORE_EMULATOR_HOST")),
		},
		PubSub: PubSubConfig{
			ProjectID: strings.TrimSpace(os.Getenv("PUBSUB_PROJECT_ID")),
			TopicID:   strings.TrimSpace(os.Getenv("ACTIVITY_TOPIC_ID")),
		},
		Content: ContentConfig{
			DefaultLocale: getEnv("CONTENT_DEFAULT_LOCALE", defaultLocale),
		},
		Idempotency: IdempotencyConfig{
			TTL: defaultIdemTTL,
		},
		RateLimit: RateLimitConfig{
			Requests: defaultRateLimitRequests,
			Window:   defaultRateLimitWindow,
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDuration("SERVER_READ_TIMEOUT", defaultReadTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Server.WriteTimeout, err = getDuration("SERVER_WRITE_TIMEOUT", defaultWriteTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Server.IdleTimeout, err = getDuration("SERVER_IDLE_TIMEOUT", defaultIdleTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Idempotency.TTL, err = getDuration("IDEMPOTENCY_TTL", defaultIdemTTL); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Requests, err = getInt("API_RATELIMIT_REQUESTS", defaultRateLimitRequests); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Window, err = getDuration("API_RATELIMIT_WINDOW", defaultRateLimitWindow); err != nil {
		return Config{}, err
	}

	switch cfg.Storage.Driver {
	case "memory":
	case "firestore":
		if cfg.Firestore.ProjectID == "" && cfg.Firestore.EmulatorHost == "" {
			return Config{}, fmt.Errorf("config: FIRESTORE_PROJECT_ID is required when STORAGE_DRIVER=firestore")
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STORAGE_DRIVER %q", cfg.Storage.Driver)
	}

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return Config{}, fmt.Errorf("config: PORT must be numeric, got %q", cfg.Server.Port)
	}

	return cfg, nil
}

// PublishEnabled reports whether activity events should be published.
func (c PubSubConfig) PublishEnabled() bool {
	return c.TopicID != ""
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("config: %s must not be negative, got %d", key, parsed)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, parsed)
	}
	return parsed, nil
}

// loadEnvFile reads KEY=VALUE pairs, ignoring comments and blank lines.
// Values already present in the environment are never overridden.
func loadEnvFile(path string) {
	if path == "" {
		path = defaultEnvFile
	}
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, value)
	}
}
