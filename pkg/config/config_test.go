package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 100, cfg.Twitter.PageSize)
	assert.Equal(t, "http://localhost:8080/callback", cfg.Twitter.RedirectURL)
	assert.Equal(t, 15, cfg.RateLimit.RequestsPerWindow)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "both", cfg.Output.Format)
	assert.Equal(t, 20, cfg.Output.TopDisplay)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TWITTER_BEARER_TOKEN", "bearer-abc")
	t.Setenv("TWITTER_CLIENT_ID", "client-123")
	t.Setenv("TWITTER_CLIENT_SECRET", "secret-456")
	t.Setenv("XFOLLOWERS_PAGE_SIZE", "50")
	t.Setenv("XFOLLOWERS_OUTPUT_DIR", "/tmp/reports")
	t.Setenv("XFOLLOWERS_FORMAT", "JSON")
	t.Setenv("XFOLLOWERS_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "bearer-abc", cfg.Twitter.BearerToken)
	assert.Equal(t, "client-123", cfg.Twitter.ClientID)
	assert.Equal(t, "secret-456", cfg.Twitter.ClientSecret)
	assert.Equal(t, 50, cfg.Twitter.PageSize)
	assert.Equal(t, "/tmp/reports", cfg.Output.Directory)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
twitter:
  page_size: 25
  request_timeout: 10s
output:
  directory: /data/out
  format: txt
  top_display: 5
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 25, cfg.Twitter.PageSize)
	assert.Equal(t, 10*time.Second, cfg.Twitter.RequestTimeout)
	assert.Equal(t, "/data/out", cfg.Output.Directory)
	assert.Equal(t, "txt", cfg.Output.Format)
	assert.Equal(t, 5, cfg.Output.TopDisplay)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Untouched sections keep their defaults
	assert.Equal(t, 15, cfg.RateLimit.RequestsPerWindow)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.Twitter.PageSize = 0 },
			wantErr: "page size must be positive",
		},
		{
			name:    "oversized page",
			mutate:  func(c *Config) { c.Twitter.PageSize = 5000 },
			wantErr: "page size cannot exceed 1000",
		},
		{
			name:    "bad format",
			mutate:  func(c *Config) { c.Output.Format = "xml" },
			wantErr: "output format must be txt, json or both",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "zero max attempts",
			mutate:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: "max attempts must be positive",
		},
		{
			name:    "missing output directory",
			mutate:  func(c *Config) { c.Output.Directory = "" },
			wantErr: "output directory is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateDoesNotRequireCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Twitter.BearerToken = ""
	cfg.Twitter.ClientID = ""
	cfg.Twitter.ClientSecret = ""
	assert.NoError(t, cfg.Validate())
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":       "/tmp/x",
		"format":       "TXT",
		"page-size":    10,
		"max-attempts": 7,
		"log-level":    "error",
	})

	assert.Equal(t, "/tmp/x", cfg.Output.Directory)
	assert.Equal(t, "txt", cfg.Output.Format)
	assert.Equal(t, 10, cfg.Twitter.PageSize)
	assert.Equal(t, 7, cfg.Retry.MaxAttempts)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestMergeIgnoresEmptyFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":    "",
		"page-size": 0,
	})

	assert.Equal(t, ".", cfg.Output.Directory)
	assert.Equal(t, 100, cfg.Twitter.PageSize)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Output.Format = "json"
	cfg.Twitter.PageSize = 42
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "json", loaded.Output.Format)
	assert.Equal(t, 42, loaded.Twitter.PageSize)
}
