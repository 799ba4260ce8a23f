// QR Wizard - Trackable QR Code Links and Scan Analytics
// Copyright 2026 Soerfi
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/soerfi/qr-wizard

// Package config loads and validates application configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML
// config file, then environment variables. Precedence is ENV > file >
// defaults. Config is immutable after Load() and safe for concurrent
// read access.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config is the root configuration for the qr-wizard server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Tracking  TrackingConfig  `koanf:"tracking"`
	Privacy   PrivacyConfig   `koanf:"privacy"`
	Retention RetentionConfig `koanf:"retention"`
	Security  SecurityConfig  `koanf:"security"`
	GeoIP     GeoIPConfig     `koanf:"geoip"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// PublicBaseURL is the externally reachable base URL used when
	// building tracking URLs in responses (e.g. https://go.example.com).
	// Defaults to http://{host}:{port} when empty.
	PublicBaseURL string `koanf:"public_base_url"`

	// Environment mode: "development" or "production".
	Environment string `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the DuckDB database file. ":memory:" is supported for tests.
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// TrackingConfig holds redirect and scan classification settings.
type TrackingConfig struct {
	// Param is the query parameter appended to destination URLs so the
	// destination can attribute the visit (default "qr_tid").
	Param string `koanf:"param"`

	// UniqueWindowHours is the rolling window within which a repeat
	// scan from the same fingerprint counts as duplicate (default 24).
	UniqueWindowHours int `koanf:"unique_window_hours"`
}

// PrivacyConfig holds visitor identity settings.
type PrivacyConfig struct {
	// IPHashSalt salts the anonymized-network hash. Rotating it breaks
	// fingerprint continuity; that is an explicit operator choice.
	IPHashSalt string `koanf:"ip_hash_salt"`
}

// RetentionConfig holds scan/conversion retention settings.
type RetentionConfig struct {
	// Days is the retention window; events older than now-Days are
	// eligible for purge. <= 0 disables the periodic sweeper.
	Days int `koanf:"days"`

	// SweepInterval is how often the background sweeper runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// SecurityConfig holds authentication and rate limit settings.
type SecurityConfig struct {
	// SecretKey signs the session cookie. Required outside development.
	SecretKey string `koanf:"secret_key"`

	// AdminPasswordHash is the bcrypt hash of the shared admin password.
	// When empty the admin API rejects all logins.
	AdminPasswordHash string `koanf:"admin_password_hash"`

	SessionTimeout time.Duration `koanf:"session_timeout"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// LoginRateLimit is the number of login attempts allowed per IP
	// within LoginRateWindow.
	LoginRateLimit  int           `koanf:"login_rate_limit"`
	LoginRateWindow time.Duration `koanf:"login_rate_window"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// GeoIPConfig holds the optional MaxMind database location.
type GeoIPConfig struct {
	// DatabasePath points at a GeoLite2/GeoIP2 City mmdb file.
	// Empty means geo lookups return all-null (a supported mode).
	DatabasePath string `koanf:"database_path"`
}

// APIConfig holds pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// BaseURL returns the public base URL without a trailing slash.
func (c *Config) BaseURL() string {
	base := c.Server.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	return strings.TrimRight(base, "/")
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.PublicBaseURL != "" {
		if err := validateHTTPURL(c.Server.PublicBaseURL, "PUBLIC_BASE_URL"); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("database threads must be >= 0, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateTracking() error {
	if c.Tracking.Param == "" {
		return fmt.Errorf("TRACKING_PARAM must not be empty")
	}
	if c.Tracking.UniqueWindowHours < 1 {
		return fmt.Errorf("UNIQUE_WINDOW_HOURS must be >= 1, got %d", c.Tracking.UniqueWindowHours)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.IsProduction() && c.Security.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required in production")
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("session timeout must be positive, got %s", c.Security.SessionTimeout)
	}
	if c.Security.LoginRateLimit < 1 {
		return fmt.Errorf("login rate limit must be >= 1, got %d", c.Security.LoginRateLimit)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL validates that a URL is a bare http/https base URL.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", fieldName, parsedURL.Path)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
