package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
server:
  port: 9090
  host: "0.0.0.0"

site:
  product_name: "Sherpa"
  base_url: "https://sherpa.example"

webhook:
  url: "https://script.google.com/macros/s/abc/exec"
  encoding: "form"
  timeout_seconds: 4

redis:
  addr: "localhost:6379"
  dedupe_ttl_seconds: 120

rate_limit:
  requests_per_minute: 30
  burst: 2

cors:
  allowed_origins:
    - "https://sherpa.example"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "https://sherpa.example", cfg.Site.BaseURL)

	assert.True(t, cfg.Webhook.Configured())
	assert.Equal(t, EncodingForm, cfg.Webhook.Encoding)
	assert.Equal(t, 4*time.Second, cfg.Webhook.Timeout())

	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2*time.Minute, cfg.Redis.DedupeTTL())

	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 2, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"https://sherpa.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadDefaults(t *testing.T) {
	configPath := writeConfig(t, `
site:
  product_name: "Sherpa"
`)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout())
	assert.Equal(t, EncodingJSON, cfg.Webhook.Encoding)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout())
	assert.False(t, cfg.Webhook.Configured())
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 10*time.Minute, cfg.Redis.DedupeTTL())
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Server.TrustProxyHeaders)

	assert.Equal(t, "https://trysherpa.org/", cfg.Site.BaseURL)
	assert.Equal(t, "Sherpa — web browsing, dead simple", cfg.Site.Title)
	assert.Equal(t, "Sherpa is an AI guide for effortless web navigation — for everyone and every site.", cfg.Site.Description)
	assert.Equal(t, "en_US", cfg.Site.Locale)
	assert.Equal(t, "Sherpa - Web browsing, dead simple", cfg.Site.OGImageAlt)
	assert.Equal(t, "https://trysherpa.org/og.png", cfg.Site.AbsoluteURL(cfg.Site.OGImage))
}

func TestSiteAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://sherpa.example/og.png", SiteConfig{BaseURL: "https://sherpa.example"}.AbsoluteURL("og.png"))
	assert.Equal(t, "/og.png", SiteConfig{}.AbsoluteURL("/og.png"))
	assert.Equal(t, "https://cdn.example/og.png", SiteConfig{BaseURL: "https://sherpa.example/"}.AbsoluteURL("https://cdn.example/og.png"))
}

func TestLoadFromEnv_BlankWebhookURLIsUnconfigured(t *testing.T) {
	t.Setenv("SHEETS_WEBHOOK_URL", "   ")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Webhook.URL)
	assert.False(t, cfg.Webhook.Configured())
}

func TestLoadFromEnv(t *testing.T) {
	configPath := writeConfig(t, `
webhook:
  url: "https://file-url.example"
`)

	t.Setenv("SHEETS_WEBHOOK_URL", "https://env-url.example")
	t.Setenv("WEBHOOK_ENCODING", "FORM")
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	// Environment variables should override file values
	assert.Equal(t, "https://env-url.example", cfg.Webhook.URL)
	assert.Equal(t, EncodingForm, cfg.Webhook.Encoding)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Server.TrustProxyHeaders)
}

func TestLoadFromEnv_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SHEETS_WEBHOOK_URL", "https://env-only.example")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "https://env-only.example", cfg.Webhook.URL)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoadRejectsUnknownEncoding(t *testing.T) {
	configPath := writeConfig(t, `
webhook:
  encoding: "xml"
`)
	_, err := Load(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook.encoding")
}

func TestServerAddr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8088}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		t.Skip("container environment forces 0.0.0.0")
	}
	assert.Equal(t, "127.0.0.1:8088", cfg.Addr())
}
