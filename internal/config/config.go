package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Site      SiteConfig      `yaml:"site"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port                   int    `yaml:"port" env:"SERVER_PORT"`
	Host                   string `yaml:"host" env:"SERVER_HOST"`
	ReadTimeoutSeconds     int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
	// TrustProxyHeaders takes the client IP from X-Forwarded-For/X-Real-IP.
	// Only enable behind a proxy that overwrites those headers.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" env:"TRUST_PROXY_HEADERS"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	return c.Host
}

// Addr returns the host:port the server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// ReadTimeout returns the configured read timeout as a duration
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the configured write timeout as a duration
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout bounds graceful shutdown, including in-flight webhook posts.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// SiteConfig holds the copy and metadata the landing page renders.
type SiteConfig struct {
	ProductName string `yaml:"product_name" env:"SITE_PRODUCT_NAME"`
	BaseURL     string `yaml:"base_url" env:"SITE_BASE_URL"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	OGImage     string `yaml:"og_image"`
	OGImageAlt  string `yaml:"og_image_alt"`
	Locale      string `yaml:"locale"`
}

// AbsoluteURL resolves a site path such as /og.png against BaseURL. Paths
// are returned unchanged when no base URL is set.
func (c SiteConfig) AbsoluteURL(path string) string {
	if c.BaseURL == "" || strings.Contains(path, "://") {
		return path
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// Webhook encodings understood by the dispatcher.
const (
	EncodingJSON = "json"
	EncodingForm = "form"
)

// WebhookConfig holds the spreadsheet webhook settings. An empty URL leaves
// the waitlist in "coming soon" mode.
type WebhookConfig struct {
	URL            string `yaml:"url" env:"SHEETS_WEBHOOK_URL"`
	Encoding       string `yaml:"encoding" env:"WEBHOOK_ENCODING"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"WEBHOOK_TIMEOUT_SECONDS"`
}

// Configured reports whether submissions can be forwarded.
func (c WebhookConfig) Configured() bool { return strings.TrimSpace(c.URL) != "" }

// Timeout returns the configured timeout as a duration
func (c WebhookConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds the optional duplicate-submission guard backend.
type RedisConfig struct {
	Addr             string `yaml:"addr" env:"REDIS_ADDR"`
	Password         string `yaml:"password" env:"REDIS_PASSWORD"`
	DB               int    `yaml:"db" env:"REDIS_DB"`
	DedupeTTLSeconds int    `yaml:"dedupe_ttl_seconds"`
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// DedupeTTL returns the duplicate window as a duration
func (c RedisConfig) DedupeTTL() time.Duration {
	return time.Duration(c.DedupeTTLSeconds) * time.Second
}

// RateLimitConfig holds the per-IP limit applied to submission routes.
type RateLimitConfig struct {
	Disabled          bool `yaml:"disabled" env:"RATE_LIMIT_DISABLED"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
	Burst             int  `yaml:"burst"`
}

// CORSConfig lists the origins allowed to call the JSON endpoint.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level            string `yaml:"level" env:"LOG_LEVEL"`
	DisableRedaction bool   `yaml:"disable_redaction" env:"LOG_DISABLE_REDACTION"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so the webhook URL can live in .env locally and in real env vars when
// deployed. A missing config file is not an error.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Webhook.Encoding {
	case EncodingJSON, EncodingForm:
	default:
		return fmt.Errorf("webhook.encoding must be %q or %q, got %q", EncodingJSON, EncodingForm, c.Webhook.Encoding)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.ReadTimeoutSeconds == 0 {
		cfg.Server.ReadTimeoutSeconds = 5
	}
	if cfg.Server.WriteTimeoutSeconds == 0 {
		cfg.Server.WriteTimeoutSeconds = 10
	}
	if cfg.Server.ShutdownTimeoutSeconds == 0 {
		cfg.Server.ShutdownTimeoutSeconds = 15
	}
	if cfg.Site.ProductName == "" {
		cfg.Site.ProductName = "Sherpa"
	}
	if cfg.Site.BaseURL == "" {
		cfg.Site.BaseURL = "https://trysherpa.org/"
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Sherpa — web browsing, dead simple"
	}
	if cfg.Site.Description == "" {
		cfg.Site.Description = "Sherpa is an AI guide for effortless web navigation — for everyone and every site."
	}
	if cfg.Site.OGImage == "" {
		cfg.Site.OGImage = "/og.png"
	}
	if cfg.Site.OGImageAlt == "" {
		cfg.Site.OGImageAlt = "Sherpa - Web browsing, dead simple"
	}
	if cfg.Site.Locale == "" {
		cfg.Site.Locale = "en_US"
	}
	cfg.Webhook.URL = strings.TrimSpace(cfg.Webhook.URL)
	cfg.Webhook.Encoding = strings.ToLower(strings.TrimSpace(cfg.Webhook.Encoding))
	if cfg.Webhook.Encoding == "" {
		cfg.Webhook.Encoding = EncodingJSON
	}
	if cfg.Webhook.TimeoutSeconds == 0 {
		cfg.Webhook.TimeoutSeconds = 10
	}
	if cfg.Redis.DedupeTTLSeconds == 0 {
		cfg.Redis.DedupeTTLSeconds = 600
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 10
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
