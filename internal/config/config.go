// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package config loads and validates the Kinoscope application
// configuration from layered sources: built-in defaults, an optional YAML
// file, then environment variables, each overriding the previous.
package config

import (
	"fmt"
	"time"

	"github.com/kinoscope/kinoscope/internal/recommend"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// CatalogConfig covers one-shot catalog ingestion at startup.
type CatalogConfig struct {
	// ImportPath points at a JSON movie catalog to import before
	// serving. Empty skips the import.
	ImportPath string `koanf:"import_path"`
}

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig covers the embedded DuckDB database.
type DatabaseConfig struct {
	// Path to the database file; ":memory:" keeps it in memory.
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit, e.g. "1GB".
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB worker thread count; 0 lets DuckDB decide.
	Threads int `koanf:"threads"`
}

// SecurityConfig covers authentication and request limits.
type SecurityConfig struct {
	// JWTSecret signs access tokens. Mandatory; there is no default.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL bounds access token lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// BcryptCost for password hashing.
	BcryptCost int `koanf:"bcrypt_cost"`

	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig wraps the core tunables plus the background rebuild
// schedule, which belongs to the application rather than the core.
type RecommendConfig struct {
	Core recommend.Config `koanf:"core"`

	// RebuildInterval is how often the supervisor refreshes the
	// similarity index from the catalog.
	RebuildInterval time.Duration `koanf:"rebuild_interval"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8460,
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/kinoscope.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			TokenTTL:        24 * time.Hour,
			BcryptCost:      12,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			Core:            recommend.DefaultConfig(),
			RebuildInterval: time.Hour,
		},
	}
}

// Validate rejects configurations the application cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required (set JWT_SECRET)")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 bytes, got %d", len(c.Security.JWTSecret))
	}
	if c.Security.TokenTTL <= 0 {
		return fmt.Errorf("security.token_ttl must be positive")
	}
	if c.Security.BcryptCost < 10 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost %d out of range [10, 31]", c.Security.BcryptCost)
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("security.rate_limit_reqs must be at least 1")
	}
	if c.Recommend.RebuildInterval < time.Minute {
		return fmt.Errorf("recommend.rebuild_interval below one minute")
	}
	if err := c.Recommend.Core.Validate(); err != nil {
		return fmt.Errorf("recommend.core: %w", err)
	}
	return nil
}
