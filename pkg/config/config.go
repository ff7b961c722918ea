// ABOUTME: Configuration management for the application with environment variable support
// ABOUTME: Defines configuration structures for the server, stores, and external services

package config

import (
	"errors"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig

	// Cache contains cache configuration
	Cache CacheConfig

	// Mongo contains the blog document store configuration
	Mongo MongoConfig

	// Postgres contains the relational store configuration
	Postgres PostgresConfig

	// Search contains the web search API configuration
	Search SearchConfig

	// LLM contains the chat completions configuration
	LLM LLMConfig

	// Activity contains the request activity log configuration
	Activity ActivityConfig

	// Collector contains source collection tuning knobs
	Collector CollectorConfig

	// Logging contains structured logging configuration
	Logging LoggingConfig
}

// LoggingConfig holds structured logging configuration
type LoggingConfig struct {
	// Level is the minimum level to emit (debug/info/warn/error)
	Level string

	// JSONFormat switches output to JSON (text otherwise)
	JSONFormat bool

	// File enables rotation-backed file output when non-empty
	File string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (redis/memory)
	Type string

	// Redis contains Redis-specific configuration
	Redis RedisConfig
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string

	// Password is the Redis authentication password
	Password string

	// DB is the Redis database number
	DB int
}

// MongoConfig holds the blog document store configuration
type MongoConfig struct {
	// URI is the MongoDB connection string
	URI string

	// Database is the database holding the blogs collection
	Database string
}

// PostgresConfig holds the relational store configuration
type PostgresConfig struct {
	// DSN is the Postgres connection string
	DSN string

	// MaxOpenConns bounds the connection pool
	MaxOpenConns int
}

// SearchConfig holds the web search API configuration
type SearchConfig struct {
	// APIKey authenticates against the search API
	APIKey string

	// BaseURL is the search API endpoint
	BaseURL string
}

// LLMConfig holds the chat completions configuration
type LLMConfig struct {
	// APIKey authenticates against the completions API
	APIKey string

	// BaseURL is the completions API endpoint
	BaseURL string

	// Model is the model identifier sent with each request
	Model string
}

// ActivityConfig holds the request activity log configuration
type ActivityConfig struct {
	// SQLitePath is the activity database file path
	SQLitePath string
}

// CollectorConfig holds source collection tuning knobs
type CollectorConfig struct {
	// QueriesPerSubsection is the number of search queries generated per subsection
	QueriesPerSubsection int

	// ResultsPerQuery is the number of search results fetched per query
	ResultsPerQuery int

	// MaxSourcesPerSubsection caps the sources kept per subsection
	MaxSourcesPerSubsection int

	// FanOutLimit bounds concurrent search and scrape work within a subsection
	FanOutLimit int

	// UnitTimeoutSeconds bounds one subsection's search, scrape and extraction work
	UnitTimeoutSeconds int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8000"),
		},
		Cache: CacheConfig{
			Type: getEnvOrDefault("CACHE_TYPE", "memory"),
			Redis: RedisConfig{
				Address:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
				Password: getEnvOrDefault("REDIS_PASSWORD", ""),
				DB:       getEnvAsIntOrDefault("REDIS_DB", 0),
			},
		},
		Mongo: MongoConfig{
			URI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnvOrDefault("MONGO_DATABASE", "blogforge"),
		},
		Postgres: PostgresConfig{
			DSN:          getEnvOrDefault("POSTGRES_DSN", ""),
			MaxOpenConns: getEnvAsIntOrDefault("POSTGRES_MAX_OPEN_CONNS", 10),
		},
		Search: SearchConfig{
			APIKey:  getEnvOrDefault("SEARCH_API_KEY", ""),
			BaseURL: getEnvOrDefault("SEARCH_BASE_URL", "https://google.serper.dev"),
		},
		LLM: LLMConfig{
			APIKey:  getEnvOrDefault("LLM_API_KEY", ""),
			BaseURL: getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:   getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		},
		Activity: ActivityConfig{
			SQLitePath: getEnvOrDefault("ACTIVITY_DB_PATH", "activity.db"),
		},
		Collector: CollectorConfig{
			QueriesPerSubsection:    getEnvAsIntOrDefault("COLLECTOR_QUERIES_PER_SUBSECTION", 5),
			ResultsPerQuery:         getEnvAsIntOrDefault("COLLECTOR_RESULTS_PER_QUERY", 2),
			MaxSourcesPerSubsection: getEnvAsIntOrDefault("COLLECTOR_MAX_SOURCES", 10),
			FanOutLimit:             getEnvAsIntOrDefault("COLLECTOR_FAN_OUT_LIMIT", 5),
			UnitTimeoutSeconds:      getEnvAsIntOrDefault("COLLECTOR_UNIT_TIMEOUT_SECONDS", 90),
		},
		Logging: LoggingConfig{
			Level:      getEnvOrDefault("LOG_LEVEL", "info"),
			JSONFormat: getEnvOrDefault("LOG_FORMAT", "json") == "json",
			File:       getEnvOrDefault("LOG_FILE", ""),
		},
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Cache.Type != "redis" && c.Cache.Type != "memory" {
		return errors.New("cache type must be 'redis' or 'memory'")
	}

	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis cache")
	}

	if c.Mongo.URI == "" {
		return errors.New("mongo URI cannot be empty")
	}

	if c.Mongo.Database == "" {
		return errors.New("mongo database cannot be empty")
	}

	if c.Postgres.DSN == "" {
		return errors.New("postgres DSN cannot be empty")
	}

	if c.Search.APIKey == "" {
		return errors.New("search API key cannot be empty")
	}

	if c.LLM.APIKey == "" {
		return errors.New("LLM API key cannot be empty")
	}

	if c.Collector.QueriesPerSubsection < 1 {
		return errors.New("queries per subsection must be at least 1")
	}

	if c.Collector.ResultsPerQuery < 1 {
		return errors.New("results per query must be at least 1")
	}

	if c.Collector.MaxSourcesPerSubsection < 1 {
		return errors.New("max sources per subsection must be at least 1")
	}

	if c.Collector.FanOutLimit < 1 {
		return errors.New("fan-out limit must be at least 1")
	}

	if c.Collector.UnitTimeoutSeconds < 1 {
		return errors.New("unit timeout must be at least 1 second")
	}

	return nil
}
