package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	port   string
	dbPath string

	location *time.Location

	nonceSecret string
	nonceExpire time.Duration

	metricCollectionInterval time.Duration
}

// DefaultConfig is the configuration NewConfig falls back to when no env
// variable is set, without reading the environment.
func DefaultConfig() *Config {
	return &Config{
		port:                     "8080",
		dbPath:                   "sqlite.db",
		location:                 time.Local,
		nonceSecret:              "secret",
		nonceExpire:              24 * time.Hour,
		metricCollectionInterval: 15 * time.Second,
	}
}

// WithLocation returns a copy of the config using loc as the local clock.
func (c *Config) WithLocation(loc *time.Location) *Config {
	clone := *c
	clone.location = loc
	return &clone
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),
		dbPath: func() string {
			dbPath := os.Getenv("DB_PATH")
			if dbPath == "" {
				dbPath = "./sqlite.db"
			}
			slog.Debug("env", "DB_PATH", dbPath)
			return filepath.Clean(dbPath)
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				slog.Warn("TIMEZONE is set to UTC, using UTC timezone", "timezone", time.UTC)
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		nonceSecret: func() string {
			secret := os.Getenv("NONCE_SECRET")
			if secret == "" {
				slog.Warn("NONCE_SECRET is not set")
				secret = "secret"
			}
			return secret
		}(),
		nonceExpire: func() time.Duration {
			nonceExpire := os.Getenv("NONCE_EXPIRE")
			if nonceExpire == "" {
				nonceExpire = "24h"
			}
			duration, err := time.ParseDuration(nonceExpire)
			if err != nil {
				slog.Error("invalid NONCE_EXPIRE", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "NONCE_EXPIRE", nonceExpire, "duration", duration)
			return duration
		}(),

		metricCollectionInterval: func() time.Duration {
			interval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if interval == "" {
				interval = "15s"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration <= 0 {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "value", interval, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", interval)
			return duration
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DB_PATH env, default to ./sqlite.db
func (c *Config) GetDBPath() string {
	return c.dbPath
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get NONCE_SECRET env
func (c *Config) GetNonceSecret() string {
	return c.nonceSecret
}

// Get NONCE_EXPIRE env, default to 24h
func (c *Config) GetNonceExpire() time.Duration {
	return c.nonceExpire
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
