package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// LoadFromEnv loads configuration from environment variables.
//   - configDir: directory for config, database and results (empty for ~/.redline)
//   - envFilePath: path to a .env file (empty for <configDir>/.env)
func LoadFromEnv(configDir, envFilePath string) (*Config, error) {
	cfg := New()

	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".redline")
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	cfg.configDir = configDir

	if envFilePath == "" {
		envFilePath = filepath.Join(configDir, ".env")
	}

	// REDLINE_ENV_FILE overrides the .env location; otherwise try the config
	// directory and fall back to the working directory.
	if custom := getEnvString("REDLINE_ENV_FILE", ""); custom != "" {
		if err := godotenv.Load(custom); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", custom, err)
		}
	} else if err := godotenv.Load(envFilePath); err != nil {
		_ = godotenv.Load()
	}

	cfg.AWS = AWSConfig{
		AccessKeyID:     sanitizeCredential(getEnvString("AWS_ACCESS_KEY_ID", "")),
		SecretAccessKey: sanitizeCredential(getEnvString("AWS_SECRET_ACCESS_KEY", "")),
		SessionToken:    sanitizeCredential(getEnvString("AWS_SESSION_TOKEN", "")),
		Region:          getEnvString("AWS_REGION", getEnvString("AWS_DEFAULT_REGION", "us-east-1")),
	}

	cfg.Bedrock = BedrockConfig{
		ModelID:           getEnvString("REDLINE_BEDROCK_MODEL_ID", "anthropic.claude-3-5-sonnet-20240620-v1:0"),
		MaxTokens:         getEnvInt("REDLINE_BEDROCK_MAX_TOKENS", 4096),
		Temperature:       getEnvFloat("REDLINE_BEDROCK_TEMPERATURE", 0.2),
		Timeout:           getEnvDuration("REDLINE_BEDROCK_TIMEOUT", 120*time.Second),
		MaxRetries:        getEnvInt("REDLINE_BEDROCK_MAX_RETRIES", 3),
		Endpoint:          getEnvString("REDLINE_BEDROCK_ENDPOINT", ""),
		RequestsPerMinute: getEnvInt("REDLINE_BEDROCK_REQUESTS_PER_MINUTE", 30),
		BurstLimit:        getEnvInt("REDLINE_BEDROCK_BURST_LIMIT", 5),
	}

	cfg.Review = ReviewConfig{
		ContextLines: getEnvInt("REDLINE_REVIEW_CONTEXT_LINES", 3),
		MaxFiles:     getEnvInt("REDLINE_REVIEW_MAX_FILES", 50),
		ResultsDir:   getEnvString("REDLINE_RESULTS_DIR", filepath.Join(configDir, "results")),
	}

	cfg.GitHub = GitHubConfig{
		Token:          getEnvString("REDLINE_GITHUB_TOKEN", getEnvString("GITHUB_TOKEN", "")),
		APIURL:         getEnvString("REDLINE_GITHUB_API_URL", "https://api.github.com"),
		RequestTimeout: getEnvDuration("REDLINE_GITHUB_REQUEST_TIMEOUT", 30*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Path:            getEnvString("REDLINE_DB_PATH", filepath.Join(configDir, "redline.db")),
		JournalMode:     getEnvString("REDLINE_DB_JOURNAL_MODE", "WAL"),
		SynchronousMode: getEnvString("REDLINE_DB_SYNCHRONOUS_MODE", "NORMAL"),
		BusyTimeout:     getEnvInt("REDLINE_DB_BUSY_TIMEOUT", 5000),
		CacheSize:       getEnvInt("REDLINE_DB_CACHE_SIZE", -64000),
		ForeignKeys:     getEnvBool("REDLINE_DB_FOREIGN_KEYS", true),
		QueryTimeout:    getEnvDuration("REDLINE_DB_QUERY_TIMEOUT", 30*time.Second),
	}

	cfg.Server = ServerConfig{
		Addr:            getEnvString("REDLINE_SERVER_ADDR", ":8000"),
		ShutdownTimeout: getEnvDuration("REDLINE_SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	cfg.Logging = LoggingConfig{
		Level:     getEnvString("REDLINE_LOG_LEVEL", "info"),
		Format:    getEnvString("REDLINE_LOG_FORMAT", "text"),
		Output:    getEnvString("REDLINE_LOG_OUTPUT", filepath.Join(configDir, "redline.log")),
		AddSource: getEnvBool("REDLINE_LOG_ADD_SOURCE", false),
	}

	return cfg, cfg.Validate()
}
