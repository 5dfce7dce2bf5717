package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys
const (
	KeySource       = "ROUTEGEN_SOURCE"
	KeyInputDir     = "ROUTEGEN_INPUT_DIR"
	KeyOutputDir    = "ROUTEGEN_OUTPUT_DIR"
	KeyItemsTable   = "ROUTEGEN_ITEMS_TABLE"
	KeyRoutesTable  = "ROUTEGEN_ROUTES_TABLE"
	KeyITTTable     = "ROUTEGEN_ITT_TABLE"
	KeyStagesTable  = "ROUTEGEN_STAGES_TABLE"
	KeyDelimiter    = "ROUTEGEN_DELIMITER"
	KeyOutputFormat = "ROUTEGEN_OUTPUT_FORMAT"
	KeyWorkers      = "ROUTEGEN_WORKERS"
	KeyBufferRows   = "ROUTEGEN_BUFFER_ROWS"
	KeyMetricsFile  = "ROUTEGEN_METRICS_FILE"
	KeyLogLevel     = "ROUTEGEN_LOG_LEVEL"
	KeyLogFormat    = "ROUTEGEN_LOG_FORMAT"
)

// Sources
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

type Config struct {
	values map[string]string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()
	cfg.loadFromEnv()
	return cfg, nil
}

// New returns an empty config, useful for tests
func New() *Config {
	return &Config{
		values: make(map[string]string),
	}
}

func (c *Config) loadFromEnv() {
	envVars := []string{
		KeySource,
		KeyInputDir,
		KeyOutputDir,
		KeyItemsTable,
		KeyRoutesTable,
		KeyITTTable,
		KeyStagesTable,
		KeyDelimiter,
		KeyOutputFormat,
		KeyWorkers,
		KeyBufferRows,
		KeyMetricsFile,
		KeyLogLevel,
		KeyLogFormat,
		"S3_ENDPOINT",
		"S3_ACCESS_KEY_ID",
		"S3_SECRET_ACCESS_KEY",
		"S3_BUCKET",
		"S3_PREFIX",
		"S3_USE_SSL",
		"S3_REGION",
		"POSTGRES_HOST",
		"POSTGRES_PORT",
		"POSTGRES_DATABASE",
		"POSTGRES_USERNAME",
		"POSTGRES_PASSWORD",
		"POSTGRES_SSLMODE",
		"POSTGRES_SCHEMA",
		"POSTGRES_ORDER_BY",
		"POSTGRES_CONNECT_TIMEOUT",
		"POSTGRES_STATEMENT_TIMEOUT",
	}

	for _, envVar := range envVars {
		if value := os.Getenv(envVar); value != "" {
			c.values[envVar] = value
		}
	}
}

// Set overrides a value, used for command line flags
func (c *Config) Set(key, value string) {
	if value == "" {
		return
	}
	c.values[key] = value
}

func (c *Config) GetString(key, defaultValue string) string {
	if value, exists := c.values[key]; exists {
		return value
	}
	return defaultValue
}

// Workers returns the number of expansion workers, 1 by default
func (c *Config) Workers() (int, error) {
	return c.intAtLeast(KeyWorkers, 1, 1)
}

// BufferRows returns the per-output row buffer. Zero selects the pipe default.
func (c *Config) BufferRows() (int, error) {
	return c.intAtLeast(KeyBufferRows, 0, 0)
}

func (c *Config) intAtLeast(key string, defaultValue, min int) (int, error) {
	value, exists := c.values[key]
	if !exists {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || intValue < min {
		return 0, fmt.Errorf("invalid %s %q: want an integer >= %d", key, value, min)
	}
	return intValue, nil
}

// Source returns the configured table source, file by default
func (c *Config) Source() (string, error) {
	switch source := strings.ToLower(c.GetString(KeySource, SourceFile)); source {
	case SourceFile, SourceS3, SourcePostgres:
		return source, nil
	default:
		return "", fmt.Errorf("unknown %s %q (want file, s3 or postgres)", KeySource, source)
	}
}

// Delimiter returns the single-character input delimiter, comma by default.
// The value "\t" or "tab" selects a tab.
func (c *Config) Delimiter() (rune, error) {
	raw := c.GetString(KeyDelimiter, ",")
	switch raw {
	case `\t`, "tab":
		return '\t', nil
	}

	runes := []rune(raw)
	if len(runes) != 1 || runes[0] == '"' || runes[0] == '\n' || runes[0] == '\r' {
		return 0, fmt.Errorf("invalid %s %q: want a single character", KeyDelimiter, raw)
	}
	return runes[0], nil
}

// TableNames returns the configured table names for source. Postgres tables
// default to bare names; file and S3 sources default to .csv objects.
func (c *Config) TableNames(source string) (items, routes, itt, stages string) {
	ext := ".csv"
	if source == SourcePostgres {
		ext = ""
	}
	return c.GetString(KeyItemsTable, "items"+ext),
		c.GetString(KeyRoutesTable, "routes"+ext),
		c.GetString(KeyITTTable, "itt"+ext),
		c.GetString(KeyStagesTable, "stages"+ext)
}

func (c *Config) GetS3Config() map[string]string {
	return map[string]string{
		"endpoint":          c.GetString("S3_ENDPOINT", ""),
		"access_key_id":     c.GetString("S3_ACCESS_KEY_ID", ""),
		"secret_access_key": c.GetString("S3_SECRET_ACCESS_KEY", ""),
		"bucket":            c.GetString("S3_BUCKET", ""),
		"prefix":            c.GetString("S3_PREFIX", ""),
		"use_ssl":           c.GetString("S3_USE_SSL", "true"),
		"region":            c.GetString("S3_REGION", "us-east-1"),
	}
}

// ValidateS3Config validates required fields are present
func ValidateS3Config(config map[string]string) error {
	requiredFields := []string{"access_key_id", "secret_access_key", "bucket"}

	for _, field := range requiredFields {
		if value := config[field]; value == "" {
			return fmt.Errorf("required field '%s' is missing or empty", field)
		}
	}

	if _, err := strconv.ParseBool(config["use_ssl"]); err != nil {
		return fmt.Errorf("invalid use_ssl value %q", config["use_ssl"])
	}

	return nil
}

func (c *Config) GetPostgresConfig() map[string]string {
	return map[string]string{
		"host":              c.GetString("POSTGRES_HOST", "localhost"),
		"port":              c.GetString("POSTGRES_PORT", "5432"),
		"database":          c.GetString("POSTGRES_DATABASE", ""),
		"username":          c.GetString("POSTGRES_USERNAME", ""),
		"password":          c.GetString("POSTGRES_PASSWORD", ""),
		"sslmode":           c.GetString("POSTGRES_SSLMODE", "prefer"),
		"schema":            c.GetString("POSTGRES_SCHEMA", "public"),
		"order_by":          c.GetString("POSTGRES_ORDER_BY", ""),
		"connect_timeout":   c.GetString("POSTGRES_CONNECT_TIMEOUT", "30s"),
		"statement_timeout": c.GetString("POSTGRES_STATEMENT_TIMEOUT", "300s"),
	}
}

// ValidatePostgresConfig validates required fields are present
func ValidatePostgresConfig(config map[string]string) error {
	requiredFields := []string{"host", "port", "database", "username"}

	for _, field := range requiredFields {
		if value := config[field]; value == "" {
			return fmt.Errorf("required field '%s' is missing or empty", field)
		}
	}

	if _, err := strconv.Atoi(config["port"]); err != nil {
		return fmt.Errorf("invalid port %q", config["port"])
	}
	for _, field := range []string{"connect_timeout", "statement_timeout"} {
		if _, err := time.ParseDuration(config[field]); err != nil {
			return fmt.Errorf("invalid %s %q", field, config[field])
		}
	}

	return nil
}
