// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Run       RunConfig
	Listing   ListingConfig
	Reference ReferenceConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout covers reading uploads, so it is generous (default: 2m)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"2m"`

	// WriteTimeout is the maximum duration for writing a response (default: 5m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for API requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// DatabaseConfig holds database connection settings. Runs are kept in
// memory when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether runs are persisted in PostgreSQL.
func (c *DatabaseConfig) Enabled() bool { return c.URL != "" }

// RunConfig holds reconciliation run settings.
type RunConfig struct {
	// MaxFileSize is the maximum size of one uploaded feed; accepts KB/MB/GB suffixes (default: 100MB)
	MaxFileSize int64 `env:"RUN_MAX_FILE_SIZE" default:"100MB"`

	// MaxFiles is the maximum number of feeds per run (default: 20)
	MaxFiles int `env:"RUN_MAX_FILES" default:"20"`

	// MaxConcurrent is the maximum number of parallel runs (default: 3)
	MaxConcurrent int `env:"RUN_MAX_CONCURRENT" default:"3"`

	// MaxWaitTime is how long to wait for a run slot (default: 30s)
	MaxWaitTime time.Duration `env:"RUN_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration of a single run (default: 5m)
	Timeout time.Duration `env:"RUN_TIMEOUT" default:"5m"`

	// Workers is the number of goroutines classifying items (default: 4)
	Workers int `env:"RUN_WORKERS" default:"4"`

	// KeepRuns is how many runs the in-memory store retains (default: 50)
	KeepRuns int `env:"RUN_KEEP" default:"50"`
}

// ListingConfig holds reconciliation defaults.
type ListingConfig struct {
	// DefaultBase is the base channel when a request names none (default: choice)
	DefaultBase string `env:"LISTING_DEFAULT_BASE" default:"choice"`

	// ParentMarker marks grouped parent lines, as in ABC001（親） (default: 親)
	ParentMarker string `env:"LISTING_PARENT_MARKER" default:"親"`
}

// ReferenceConfig selects where the periodic set and vendor directory come from.
// Google Sheets wins when SheetsID is set; otherwise local files are read.
type ReferenceConfig struct {
	// PeriodicFile is a CSV/XLSX file with a 定期便番号 column
	PeriodicFile string `env:"REFERENCE_PERIODIC_FILE"`

	// VendorFile is a CSV/XLSX file with 事業者コード, 事業者名 and 自治体名 columns
	VendorFile string `env:"REFERENCE_VENDOR_FILE"`

	// SheetsID is the spreadsheet holding both reference sheets
	SheetsID string `env:"REFERENCE_SHEETS_ID"`

	// CredentialsFile is a service account JSON key file
	CredentialsFile string `env:"REFERENCE_CREDENTIALS_FILE" envAlt:"GOOGLE_APPLICATION_CREDENTIALS"`

	// CredentialsJSON is the service account key itself (secret)
	CredentialsJSON string `env:"REFERENCE_CREDENTIALS_JSON"`

	PeriodicSheet string `env:"REFERENCE_PERIODIC_SHEET" default:"定期便DB"`
	VendorSheet   string `env:"REFERENCE_VENDOR_SHEET" default:"事業者DB"`

	// CacheTTL is how long fetched reference data is reused (default: 10m)
	CacheTTL time.Duration `env:"REFERENCE_CACHE_TTL" default:"10m"`
}

// UsesSheets reports whether reference data is read from Google Sheets.
func (c *ReferenceConfig) UsesSheets() bool { return c.SheetsID != "" }

// RateLimitConfig holds rate limiting settings per client IP.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`

	// RunLimit is requests per minute for run submissions (default: 10)
	RunLimit int `env:"RATE_LIMIT_RUNS" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
