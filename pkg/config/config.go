package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the followers fetcher
type Config struct {
	// Twitter API credentials and request settings
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds Twitter-specific configuration
type TwitterConfig struct {
	BearerToken    string        `yaml:"bearer_token" json:"bearer_token"`
	ClientID       string        `yaml:"client_id" json:"client_id"`
	ClientSecret   string        `yaml:"client_secret" json:"client_secret"`
	RedirectURL    string        `yaml:"redirect_url" json:"redirect_url"`
	PageSize       int           `yaml:"page_size" json:"page_size"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// RateLimitConfig holds rate limiting configuration.
// The followers endpoint allows a fixed number of requests per window.
type RateLimitConfig struct {
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
}

// RetryConfig holds retry/backoff configuration
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// OutputConfig holds report output configuration
type OutputConfig struct {
	Directory  string `yaml:"directory" json:"directory"`
	Format     string `yaml:"format" json:"format"`
	TopDisplay int    `yaml:"top_display" json:"top_display"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			RedirectURL:    "http://localhost:8080/callback",
			PageSize:       100,
			RequestTimeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 15,
			Window:            15 * time.Minute,
		},
		Retry: RetryConfig{
			MaxAttempts:  3,
			BaseDelay:    1 * time.Second,
			MaxDelay:     60 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Output: OutputConfig{
			Directory:  ".",
			Format:     "both",
			TopDisplay: 20,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Twitter credentials
	if bearer := os.Getenv("TWITTER_BEARER_TOKEN"); bearer != "" {
		c.Twitter.BearerToken = bearer
	}
	if clientID := os.Getenv("TWITTER_CLIENT_ID"); clientID != "" {
		c.Twitter.ClientID = clientID
	}
	if clientSecret := os.Getenv("TWITTER_CLIENT_SECRET"); clientSecret != "" {
		c.Twitter.ClientSecret = clientSecret
	}

	// Page size
	if pageSize := os.Getenv("XFOLLOWERS_PAGE_SIZE"); pageSize != "" {
		var val int
		fmt.Sscanf(pageSize, "%d", &val)
		if val > 0 {
			c.Twitter.PageSize = val
		}
	}

	// Output directory
	if outputDir := os.Getenv("XFOLLOWERS_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	// Output format
	if format := os.Getenv("XFOLLOWERS_FORMAT"); format != "" {
		c.Output.Format = strings.ToLower(format)
	}

	// Logging level
	if logLevel := os.Getenv("XFOLLOWERS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".xfollowers.yaml",
		".xfollowers.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xfollowers", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xfollowers", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xfollowers.yaml"),
		filepath.Join(os.Getenv("HOME"), ".xfollowers.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// Credential presence is not checked here: which credentials are required
// depends on the operation, and pkg/auth decides that.
func (c *Config) Validate() error {
	var errs []error

	// Validate request settings
	if c.Twitter.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Twitter.PageSize > 1000 {
		errs = append(errs, errors.New("page size cannot exceed 1000"))
	}
	if c.Twitter.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Twitter.RedirectURL == "" {
		errs = append(errs, errors.New("redirect URL is required"))
	}

	// Validate rate limiting
	if c.RateLimit.RequestsPerWindow <= 0 {
		errs = append(errs, errors.New("requests per window must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	// Validate retry settings
	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Retry.Multiplier < 1.0 {
		errs = append(errs, errors.New("backoff multiplier must be at least 1.0"))
	}

	// Validate output settings
	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	validFormats := map[string]bool{
		"txt": true, "json": true, "both": true,
	}
	if !validFormats[strings.ToLower(c.Output.Format)] {
		errs = append(errs, errors.New("output format must be txt, json or both"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = strings.ToLower(format)
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Twitter.PageSize = pageSize
	}
	if maxAttempts, ok := flags["max-attempts"].(int); ok && maxAttempts > 0 {
		c.Retry.MaxAttempts = maxAttempts
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".xfollowers.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
