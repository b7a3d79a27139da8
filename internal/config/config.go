package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `envPrefix:"EVAGENT_"`
	Query    QueryConfig    `envPrefix:"EVAGENT_"`
	LLM      LLMConfig      `envPrefix:"EVAGENT_"`
	Logging  LoggingConfig  `envPrefix:"EVAGENT_"`
}

// DatabaseConfig represents data store configuration
type DatabaseConfig struct {
	Path            string `env:"DB_PATH"               envDefault:"vehicles.db"`
	Table           string `env:"DB_TABLE"              envDefault:"ELECTRICVEHICLES"`
	MaxConnections  int    `env:"DB_MAX_CONNECTIONS"    envDefault:"10"`
	MaxIdleConns    int    `env:"DB_MAX_IDLE_CONNS"     envDefault:"5"`
	ConnMaxLifetime string `env:"DB_CONN_MAX_LIFETIME"  envDefault:"30m"`
}

// QueryConfig bounds what a single tool invocation may ask of the data store
type QueryConfig struct {
	DefaultLimit int    `env:"QUERY_DEFAULT_LIMIT" envDefault:"5"`
	MaxRows      int    `env:"QUERY_MAX_ROWS"      envDefault:"1000"`
	Timeout      string `env:"QUERY_TIMEOUT"       envDefault:"30s"`
	MaxRetries   int    `env:"QUERY_MAX_RETRIES"   envDefault:"3"`
}

// LLMConfig represents the conversational agent configuration
type LLMConfig struct {
	APIKey    string `env:"LLM_API_KEY"`
	Model     string `env:"LLM_MODEL"      envDefault:"claude-sonnet-4-20250514"`
	MaxTokens int    `env:"LLM_MAX_TOKENS" envDefault:"2048"`
	MaxRounds int    `env:"LLM_MAX_ROUNDS" envDefault:"8"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`   // debug, info, warn, error
	Format string `env:"LOG_FORMAT" envDefault:"text"`   // text, json
	Output string `env:"LOG_OUTPUT" envDefault:"stderr"` // stdout, stderr
}

// LoadConfig loads configuration from a .env file (if present) and the
// environment. Environment variables win over .env entries.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the sample only uses it for local development.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// QueryTimeout returns the parsed query timeout ceiling.
func (c *Config) QueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Query.Timeout)
	if err != nil {
		return 30 * time.Second
	}

	return d
}

// ConnMaxLifetime returns the parsed connection lifetime.
func (c *Config) ConnMaxLifetime() time.Duration {
	d, err := time.ParseDuration(c.Database.ConnMaxLifetime)
	if err != nil {
		return 30 * time.Minute
	}

	return d
}

// validateConfig validates the configuration for common errors
func validateConfig(config *Config) error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf(
			"invalid log level: %s (must be debug, info, warn, or error)",
			config.Logging.Level,
		)
	}

	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(config.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s (must be text or json)", config.Logging.Format)
	}

	validLogOutputs := map[string]bool{
		"stdout": true, "stderr": true,
	}
	if !validLogOutputs[strings.ToLower(config.Logging.Output)] {
		return fmt.Errorf("invalid log output: %s (must be stdout or stderr)", config.Logging.Output)
	}

	if config.Database.Table == "" {
		return fmt.Errorf("database table name must not be empty")
	}

	if _, err := time.ParseDuration(config.Query.Timeout); err != nil {
		return fmt.Errorf("invalid query timeout: %s", config.Query.Timeout)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection lifetime: %s", config.Database.ConnMaxLifetime)
	}

	if config.Database.MaxConnections <= 0 {
		return fmt.Errorf(
			"database max connections must be positive: %d",
			config.Database.MaxConnections,
		)
	}

	if config.Query.DefaultLimit <= 0 {
		return fmt.Errorf("default query limit must be positive: %d", config.Query.DefaultLimit)
	}

	if config.Query.MaxRows <= 0 {
		return fmt.Errorf("query row cap must be positive: %d", config.Query.MaxRows)
	}

	if config.Query.DefaultLimit > config.Query.MaxRows {
		return fmt.Errorf(
			"default query limit %d exceeds the row cap %d",
			config.Query.DefaultLimit, config.Query.MaxRows,
		)
	}

	if config.Query.MaxRetries < 0 {
		return fmt.Errorf("query max retries must not be negative: %d", config.Query.MaxRetries)
	}

	return nil
}
