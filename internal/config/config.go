// Package config loads server settings from the environment.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store drivers selectable with STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

const (
	defaultPort          = 8080
	defaultStoreDriver   = DriverSQLite
	defaultDBPath        = "./data/squadledger.db"
	defaultMongoURI      = "mongodb://localhost:27017"
	defaultMongoDatabase = "squadledger"
	defaultTokenTTL      = 24 * time.Hour
	defaultLogLevel      = "info"

	envPort          = "PORT"
	envStoreDriver   = "STORE_DRIVER"
	envDBPath        = "DB_PATH"
	envDatabaseURL   = "DATABASE_URL"
	envMongoURI      = "MONGO_URI"
	envMongoDatabase = "MONGO_DATABASE"
	envJWTSecret     = "JWT_SECRET"
	envTokenTTL      = "TOKEN_TTL"
	envLogLevel      = "LOG_LEVEL"
)

// Config holds the server configuration.
type Config struct {
	Port int

	// StoreDriver selects the persistence backend: sqlite, postgres or mongo.
	StoreDriver string

	DBPath        string
	DatabaseURL   string
	MongoURI      string
	MongoDatabase string

	// JWTSecret signs and verifies identity tokens.
	JWTSecret string
	TokenTTL  time.Duration

	LogLevel slog.Level
}

// Load reads the configuration from environment variables, falling back to
// defaults. It fails only on values that cannot be used at all.
func Load(ctx context.Context, logger *slog.Logger) (*Config, error) {
	cfg := &Config{
		Port:          defaultPort,
		StoreDriver:   strings.ToLower(getEnv(ctx, logger, envStoreDriver, defaultStoreDriver)),
		DBPath:        getEnv(ctx, logger, envDBPath, defaultDBPath),
		DatabaseURL:   os.Getenv(envDatabaseURL),
		MongoURI:      getEnv(ctx, logger, envMongoURI, defaultMongoURI),
		MongoDatabase: getEnv(ctx, logger, envMongoDatabase, defaultMongoDatabase),
		JWTSecret:     os.Getenv(envJWTSecret),
		TokenTTL:      defaultTokenTTL,
	}

	if v := os.Getenv(envPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			logger.WarnContext(ctx, "Invalid value for PORT, using default", "value", v, "default", defaultPort)
		} else {
			cfg.Port = port
		}
	} else {
		logger.DebugContext(ctx, "Using default port", "port", defaultPort)
	}

	if v := os.Getenv(envTokenTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			logger.WarnContext(ctx, "Invalid value for TOKEN_TTL, using default", "value", v, "default", defaultTokenTTL)
		} else {
			cfg.TokenTTL = ttl
		}
	}

	level := getEnv(ctx, logger, envLogLevel, defaultLogLevel)
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		logger.WarnContext(ctx, "Invalid value for LOG_LEVEL, using info", "value", level)
		cfg.LogLevel = slog.LevelInfo
	}

	switch cfg.StoreDriver {
	case DriverSQLite, DriverMongo:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("%s is required when %s=%s", envDatabaseURL, envStoreDriver, DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("unsupported %s %q", envStoreDriver, cfg.StoreDriver)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%s is required", envJWTSecret)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(ctx context.Context, logger *slog.Logger, key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		logger.DebugContext(ctx, "Using value from environment variable", "key", key)
		return value
	}
	logger.DebugContext(ctx, "Using default value", "key", key, "value", fallback)
	return fallback
}
