// Package config holds the typed application configuration, loaded from the
// environment. Components receive the sections they need explicitly; the
// global accessor exists only for CLI glue.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	globalConfig *Config
	configMutex  sync.RWMutex
)

// Get returns the global configuration instance, or an error if it has not
// been initialized yet.
func Get() (*Config, error) {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig, nil
}

// Set installs the global configuration instance.
func Set(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()

	globalConfig = cfg
}

// Config represents the complete application configuration.
type Config struct {
	AWS      AWSConfig
	Bedrock  BedrockConfig
	Review   ReviewConfig
	GitHub   GitHubConfig
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig

	configDir string // directory configuration was loaded from
}

// AWSConfig carries the credentials and region used to reach Bedrock.
type AWSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string // required for temporary (ASIA) keys
	Region          string
}

// HasCredentials reports whether explicit credentials were supplied.
func (a AWSConfig) HasCredentials() bool {
	return a.AccessKeyID != "" && a.SecretAccessKey != ""
}

// BedrockConfig holds model invocation settings.
type BedrockConfig struct {
	ModelID     string        // Bedrock model identifier
	MaxTokens   int           // max tokens to generate per response
	Temperature float64       // sampling temperature
	Timeout     time.Duration // per-invocation timeout
	MaxRetries  int           // retries on throttling/transient failures
	Endpoint    string        // custom endpoint URL, for VPC endpoints; empty for the regional default

	// Rate limiting
	RequestsPerMinute int
	BurstLimit        int
}

// ReviewConfig holds review pipeline settings.
type ReviewConfig struct {
	ContextLines int    // lines replaced on each side of a patched line
	MaxFiles     int    // cap on files per batch review; excess is truncated
	ResultsDir   string // where review records are archived as JSON
}

// GitHubConfig holds pull-request source settings.
type GitHubConfig struct {
	Token          string        // optional personal access token
	APIURL         string        // API base URL, for GitHub Enterprise
	RequestTimeout time.Duration // per-request timeout
}

// DatabaseConfig holds SQLite settings for the review history store.
type DatabaseConfig struct {
	Path            string // path to the SQLite database file
	JournalMode     string // WAL recommended
	SynchronousMode string
	BusyTimeout     int // milliseconds
	CacheSize       int // KiB, negative per SQLite convention
	ForeignKeys     bool
	QueryTimeout    time.Duration
}

// ServerConfig holds REST API settings.
type ServerConfig struct {
	Addr            string        // listen address, e.g. ":8000"
	ShutdownTimeout time.Duration // grace period for in-flight requests
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level     string // debug, info, warn, error
	Format    string // text or json
	Output    string // stdout, stderr, or file path
	AddSource bool
}

// New returns an empty Config.
func New() *Config {
	return &Config{}
}

// ConfigDir returns the directory configuration was loaded from.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Validate checks the configuration section by section.
func (c *Config) Validate() error {
	if err := c.validateBedrock(); err != nil {
		return fmt.Errorf("bedrock config: %w", err)
	}
	if err := c.validateReview(); err != nil {
		return fmt.Errorf("review config: %w", err)
	}
	if err := c.validateDatabase(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func (c *Config) validateBedrock() error {
	if c.Bedrock.ModelID == "" {
		return fmt.Errorf("model id cannot be empty")
	}
	if c.Bedrock.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.Bedrock.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Bedrock.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}
	// Credential shape is deliberately not validated here: the diagnose
	// command must be able to run against broken credentials.
	return nil
}

func (c *Config) validateReview() error {
	if c.Review.ContextLines < 0 {
		return fmt.Errorf("context_lines cannot be negative")
	}
	if c.Review.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	dir := filepath.Dir(c.Database.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	if c.Database.BusyTimeout <= 0 {
		return fmt.Errorf("busy timeout must be positive")
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	return nil
}

// sanitizeCredential strips surrounding quotes and whitespace that commonly
// sneak into copy-pasted keys. An embedded space makes a key unusable and is
// better caught here than as an opaque auth failure later.
func sanitizeCredential(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// getEnvString returns a string from the environment variable
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an int from the environment variable
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns a bool from the environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration returns a time.Duration from the environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvFloat returns a float64 from the environment variable
func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
