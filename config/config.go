package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration options for the wrenbin server
type Config struct {
	// Server configuration
	Port int
	URL  string

	// Storage configuration
	Backend string // "memory", "filesystem", "mongodb", "dynamodb", "redis"
	DataDir string

	// Database configuration
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	DynamoTable     string
	AWSRegion       string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Paste configuration
	KeyLength      int
	MaxContentSize int64
	PurgeInterval  time.Duration

	// Operational configuration
	LogLevel      string
	EnableMetrics bool
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		URL:             "",
		Backend:         "memory",
		DataDir:         "./pastes",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "wrenbin",
		MongoCollection: "pastes",
		DynamoTable:     "wrenbin-pastes",
		AWSRegion:       "us-east-1",
		RedisAddr:       "localhost:6379",
		RedisPassword:   "",
		RedisDB:         0,
		KeyLength:       7,
		MaxContentSize:  1024 * 1024, // 1MB
		PurgeInterval:   10 * time.Minute,
		LogLevel:        "info",
		EnableMetrics:   true,
	}
}

// LoadFromFlags parses command-line flags and environment variables
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	flag.IntVar(&cfg.Port, "port", GetEnvInt("WRENBIN_PORT", cfg.Port), "HTTP port to listen on")
	flag.StringVar(&cfg.URL, "url", GetEnvString("WRENBIN_URL", cfg.URL), "Base URL for paste links")

	// Storage configuration
	flag.StringVar(&cfg.Backend, "backend", GetEnvString("WRENBIN_BACKEND", cfg.Backend), "Storage backend: memory, filesystem, mongodb, dynamodb, redis")
	flag.StringVar(&cfg.DataDir, "data-dir", GetEnvString("WRENBIN_DATA_DIR", cfg.DataDir), "Directory for paste files (filesystem only)")

	// Database configuration
	flag.StringVar(&cfg.MongoURI, "mongodb-uri", GetEnvString("WRENBIN_MONGODB_URI", cfg.MongoURI), "MongoDB connection URI")
	flag.StringVar(&cfg.MongoDatabase, "mongodb-database", GetEnvString("WRENBIN_MONGODB_DATABASE", cfg.MongoDatabase), "MongoDB database name")
	flag.StringVar(&cfg.MongoCollection, "mongodb-collection", GetEnvString("WRENBIN_MONGODB_COLLECTION", cfg.MongoCollection), "MongoDB collection name")
	flag.StringVar(&cfg.DynamoTable, "dynamodb-table", GetEnvString("WRENBIN_DYNAMODB_TABLE", cfg.DynamoTable), "DynamoDB table name")
	flag.StringVar(&cfg.AWSRegion, "aws-region", GetEnvString("WRENBIN_AWS_REGION", cfg.AWSRegion), "AWS region for DynamoDB")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", GetEnvString("WRENBIN_REDIS_ADDR", cfg.RedisAddr), "Redis address")
	flag.StringVar(&cfg.RedisPassword, "redis-password", GetEnvString("WRENBIN_REDIS_PASSWORD", cfg.RedisPassword), "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", GetEnvInt("WRENBIN_REDIS_DB", cfg.RedisDB), "Redis database number")

	// Paste configuration
	flag.IntVar(&cfg.KeyLength, "key-length", GetEnvInt("WRENBIN_KEY_LENGTH", cfg.KeyLength), "Length of generated paste keys")
	flag.Int64Var(&cfg.MaxContentSize, "max-content-size", GetEnvInt64("WRENBIN_MAX_CONTENT_SIZE", cfg.MaxContentSize), "Maximum paste content size in bytes")
	flag.DurationVar(&cfg.PurgeInterval, "purge-interval", GetEnvDuration("WRENBIN_PURGE_INTERVAL", cfg.PurgeInterval), "Interval between expired-paste purge runs (0 disables)")

	flag.StringVar(&cfg.LogLevel, "log-level", GetEnvString("WRENBIN_LOG_LEVEL", cfg.LogLevel), "Log level (debug, info, warn, error)")
	flag.BoolVar(&cfg.EnableMetrics, "enable-metrics", GetEnvBool("WRENBIN_ENABLE_METRICS", cfg.EnableMetrics), "Enable Prometheus metrics endpoint")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "wrenbin - paste service with expiry and burn-after-reading\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  All flags can be set via environment variables with WRENBIN_ prefix\n")
		fmt.Fprintf(os.Stderr, "  Example: WRENBIN_BACKEND=redis WRENBIN_REDIS_ADDR=localhost:6379\n")
	}

	flag.Parse()

	return cfg, cfg.Validate()
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Backend {
	case "memory", "filesystem", "mongodb", "dynamodb", "redis":
	default:
		return fmt.Errorf("invalid backend: %s", c.Backend)
	}
	if c.Backend == "filesystem" && c.DataDir == "" {
		return fmt.Errorf("data-dir cannot be empty for filesystem backend")
	}
	if c.KeyLength < 4 || c.KeyLength > 32 {
		return fmt.Errorf("key length must be between 4 and 32, got %d", c.KeyLength)
	}
	if c.MaxContentSize <= 0 {
		return fmt.Errorf("max content size must be positive, got %d", c.MaxContentSize)
	}
	if c.PurgeInterval < 0 {
		return fmt.Errorf("purge interval cannot be negative, got %v", c.PurgeInterval)
	}
	return nil
}

// GetEnvString returns the environment variable value or a fallback
func GetEnvString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvInt returns the environment variable as int or a fallback
func GetEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetEnvInt64 returns the environment variable as int64 or a fallback
func GetEnvInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetEnvBool returns the environment variable as bool or a fallback
func GetEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// GetEnvDuration returns the environment variable as duration or a fallback
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
