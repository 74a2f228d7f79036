package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port        string
	MongoDBURI  string
	MongoDBName string
	Environment string
	LogLevel    string

	// TxnTimeout bounds every storage transaction; a registration that
	// cannot commit within it surfaces as retryable unavailability, not
	// as a capacity error.
	TxnTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnvWithDefault("PORT", "8080"),
		MongoDBURI:  os.Getenv("MONGODB_URI"),
		MongoDBName: getEnvWithDefault("MONGODB_DB", "eventdeck"),
		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
	}

	timeout := getEnvWithDefault("TXN_TIMEOUT", "5s")
	d, err := time.ParseDuration(timeout)
	if err != nil || d <= 0 {
		return nil, fmt.Errorf("TXN_TIMEOUT must be a positive duration, got %q", timeout)
	}
	cfg.TxnTimeout = d

	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
