// Package config provides the service configuration model.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheBadger = "badger"
)

// ServiceConfig is the complete drawcal service configuration.
type ServiceConfig struct {
	Name       string           `json:"name" yaml:"name"`
	Server     ServerConfig     `json:"server" yaml:"server"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
	Telemetry  TelemetryConfig  `json:"telemetry" yaml:"telemetry"`
	Resilience ResilienceConfig `json:"resilience" yaml:"resilience"`
	Calendar   CalendarConfig   `json:"calendar,omitempty" yaml:"calendar,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Address         string   `json:"address" yaml:"address"`
	ReadTimeout     Duration `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty"`
	WriteTimeout    Duration `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
	IdleTimeout     Duration `json:"idle_timeout,omitempty" yaml:"idle_timeout,omitempty"`
	ShutdownTimeout Duration `json:"shutdown_timeout,omitempty" yaml:"shutdown_timeout,omitempty"`
	// AllowedOrigins lists CORS origins. "*" allows any.
	AllowedOrigins []string        `json:"allowed_origins,omitempty" yaml:"allowed_origins,omitempty"`
	RateLimit      RateLimitConfig `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Rate is the number of requests per second per client.
	Rate  int `json:"rate,omitempty" yaml:"rate,omitempty"`
	Burst int `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// StorageConfig selects and configures the calendar store.
type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver"`
	// Fixture is a JSON file of records loaded by the memory driver.
	Fixture  string         `json:"fixture,omitempty" yaml:"fixture,omitempty"`
	SQLite   SQLiteConfig   `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	Postgres PostgresConfig `json:"postgres,omitempty" yaml:"postgres,omitempty"`
	// BatchSize is the number of weeks per batched fetch.
	BatchSize int `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	// FetchConcurrency bounds concurrent batched fetches.
	FetchConcurrency int `json:"fetch_concurrency,omitempty" yaml:"fetch_concurrency,omitempty"`
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	DSN         string `json:"dsn,omitempty" yaml:"dsn,omitempty"`
	JournalMode string `json:"journal_mode,omitempty" yaml:"journal_mode,omitempty"`
}

// PostgresConfig configures the PostgreSQL store.
type PostgresConfig struct {
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	SSLMode  string `json:"sslmode,omitempty" yaml:"sslmode,omitempty"`
	Schema   string `json:"schema,omitempty" yaml:"schema,omitempty"`
	MaxConns int32  `json:"max_conns,omitempty" yaml:"max_conns,omitempty"`
}

// CacheConfig configures the search result cache.
type CacheConfig struct {
	Driver  string       `json:"driver" yaml:"driver"`
	TTL     Duration     `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	MaxSize int          `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	Redis   RedisConfig  `json:"redis,omitempty" yaml:"redis,omitempty"`
	Badger  BadgerConfig `json:"badger,omitempty" yaml:"badger,omitempty"`
}

// RedisConfig configures the Redis cache.
type RedisConfig struct {
	Address   string `json:"address,omitempty" yaml:"address,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
	DB        int    `json:"db,omitempty" yaml:"db,omitempty"`
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`
}

// BadgerConfig configures the Badger cache.
type BadgerConfig struct {
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TelemetryConfig configures tracing and metrics.
type TelemetryConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// Exporter is otlp, stdout or noop.
	Exporter    string  `json:"exporter,omitempty" yaml:"exporter,omitempty"`
	Endpoint    string  `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Insecure    bool    `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	SampleRate  float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
	Environment string  `json:"environment,omitempty" yaml:"environment,omitempty"`
}

// ResilienceConfig configures store protection.
type ResilienceConfig struct {
	Enabled        bool                 `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Timeout        Duration             `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Retry          RetryConfig          `json:"retry,omitempty" yaml:"retry,omitempty"`
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty" yaml:"circuit_breaker,omitempty"`
	Bulkhead       BulkheadConfig       `json:"bulkhead,omitempty" yaml:"bulkhead,omitempty"`
}

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts  int      `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	InitialDelay Duration `json:"initial_delay,omitempty" yaml:"initial_delay,omitempty"`
	Multiplier   float64  `json:"multiplier,omitempty" yaml:"multiplier,omitempty"`
}

// CircuitBreakerConfig configures circuit breaker behavior.
type CircuitBreakerConfig struct {
	Threshold int      `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Timeout   Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// BulkheadConfig configures bulkhead behavior.
type BulkheadConfig struct {
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
}

// CalendarConfig overrides the weeks-per-year table.
type CalendarConfig struct {
	// Weeks maps a year to its number of ISO weeks.
	Weeks map[int]int `json:"weeks,omitempty" yaml:"weeks,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() ServiceConfig {
	return ServiceConfig{
		Name: "drawcal",
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			AllowedOrigins:  []string{"*"},
			RateLimit:       RateLimitConfig{Rate: 20, Burst: 40},
		},
		Storage: StorageConfig{
			Driver:           DriverSQLite,
			SQLite:           SQLiteConfig{DSN: "file:drawcal.db?mode=rwc", JournalMode: "WAL"},
			BatchSize:        64,
			FetchConcurrency: 4,
		},
		Cache: CacheConfig{
			Driver:  CacheMemory,
			TTL:     Duration(10 * time.Minute),
			MaxSize: 1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Exporter:   "noop",
			SampleRate: 1.0,
		},
		Resilience: ResilienceConfig{
			Enabled: true,
			Timeout: Duration(30 * time.Second),
			Retry: RetryConfig{
				MaxAttempts:  3,
				InitialDelay: Duration(100 * time.Millisecond),
				Multiplier:   2.0,
			},
			CircuitBreaker: CircuitBreakerConfig{Threshold: 5, Timeout: Duration(30 * time.Second)},
			Bulkhead:       BulkheadConfig{MaxConcurrent: 10},
		},
	}
}

// Duration is a time.Duration that supports JSON/YAML string representation.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(time.Duration(d).String())), nil
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		return d.parse(unquoted)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s", s)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	dur, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
