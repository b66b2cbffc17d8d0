package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Auth     AuthConfig
	Events   EventsConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	RequestTimeout  int
	CORSOrigins     []string
}

type StoreConfig struct {
	Driver       string // "mongo" or "memory"
	MongoURI     string
	Database     string
	Transactions bool
	SeedCatalog  bool
}

type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool
	RedisURL     string // empty keeps revocations in memory
	// EmailFilterCapacity sizes the registered-email bloom filter.
	EmailFilterCapacity uint
}

type EventsConfig struct {
	KafkaBrokers []string // empty disables publishing
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			RequestTimeout:  getEnvAsInt("REQUEST_TIMEOUT", 30),
			CORSOrigins:     getEnvAsSlice("CORS_ORIGINS", []string{"*"}),
		},
		Store: StoreConfig{
			Driver:       strings.ToLower(getEnv("STORE", "mongo")),
			MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017/?directConnection=true"),
			Database:     getEnv("MONGO_DATABASE", "storefront"),
			Transactions: getEnvAsBool("MONGO_TRANSACTIONS", true),
			SeedCatalog:  getEnvAsBool("SEED_CATALOG", false),
		},
		Auth: AuthConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			TokenTTL:            time.Duration(getEnvAsInt("TOKEN_TTL_HOURS", 720)) * time.Hour,
			CookieSecure:        getEnvAsBool("COOKIE_SECURE", false),
			RedisURL:            getEnv("REDIS_URL", ""),
			EmailFilterCapacity: uint(getEnvAsInt("EMAIL_FILTER_CAPACITY", 100000)),
		},
		Events: EventsConfig{
			KafkaBrokers: getEnvAsSlice("KAFKA_BROKERS", nil),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Driver {
	case "mongo":
		if c.Store.MongoURI == "" || c.Store.Database == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DATABASE are required for the mongo store")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid store: %s (must be mongo or memory)", c.Store.Driver)
	}

	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL_HOURS must be positive")
	}

	if c.Auth.EmailFilterCapacity == 0 {
		return fmt.Errorf("EMAIL_FILTER_CAPACITY must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
