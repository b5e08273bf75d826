package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field.
	Path    string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "no validation errors"
	case 1:
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate checks cfg and returns every problem found.
func Validate(cfg *ServiceConfig) ValidationErrors {
	v := &validator{}
	v.server(cfg.Server)
	v.storage(cfg.Storage)
	v.cache(cfg.Cache)
	v.logging(cfg.Logging)
	v.telemetry(cfg.Telemetry)
	v.resilience(cfg.Resilience)
	v.calendar(cfg.Calendar)
	return v.errs
}

type validator struct {
	errs ValidationErrors
}

func (v *validator) add(path, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) oneOf(path, value string, allowed ...string) {
	if !slices.Contains(allowed, strings.ToLower(value)) {
		v.add(path, "must be one of %s, got %q", strings.Join(allowed, ", "), value)
	}
}

func (v *validator) server(s ServerConfig) {
	if s.Address == "" {
		v.add("server.address", "address is required")
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.IdleTimeout < 0 {
		v.add("server", "timeouts must be non-negative")
	}
	if s.RateLimit.Enabled && s.RateLimit.Rate <= 0 {
		v.add("server.rate_limit.rate", "rate must be positive when rate limiting is enabled")
	}
}

func (v *validator) storage(s StorageConfig) {
	v.oneOf("storage.driver", s.Driver, DriverMemory, DriverSQLite, DriverPostgres)
	switch strings.ToLower(s.Driver) {
	case DriverSQLite:
		if s.SQLite.DSN == "" {
			v.add("storage.sqlite.dsn", "dsn is required for the sqlite driver")
		}
	case DriverPostgres:
		if s.Postgres.Host == "" {
			v.add("storage.postgres.host", "host is required for the postgres driver")
		}
		if s.Postgres.Port < 0 || s.Postgres.Port > 65535 {
			v.add("storage.postgres.port", "port out of range: %d", s.Postgres.Port)
		}
	}
	if s.BatchSize < 0 {
		v.add("storage.batch_size", "must be non-negative")
	}
	if s.FetchConcurrency < 0 {
		v.add("storage.fetch_concurrency", "must be non-negative")
	}
}

func (v *validator) cache(c CacheConfig) {
	v.oneOf("cache.driver", c.Driver, CacheNone, CacheMemory, CacheRedis, CacheBadger)
	if c.TTL < 0 {
		v.add("cache.ttl", "must be non-negative")
	}
	if strings.EqualFold(c.Driver, CacheRedis) && c.Redis.Address == "" {
		v.add("cache.redis.address", "address is required for the redis cache")
	}
	if strings.EqualFold(c.Driver, CacheBadger) && c.Badger.Dir == "" {
		v.add("cache.badger.dir", "dir is required for the badger cache")
	}
}

func (v *validator) logging(l LoggingConfig) {
	if l.Level != "" {
		v.oneOf("logging.level", l.Level, "trace", "debug", "info", "warn", "warning", "error")
	}
	if l.Format != "" {
		v.oneOf("logging.format", l.Format, "json", "console")
	}
}

func (v *validator) telemetry(t TelemetryConfig) {
	if !t.Enabled {
		return
	}
	v.oneOf("telemetry.exporter", t.Exporter, "otlp", "stdout", "noop")
	if strings.EqualFold(t.Exporter, "otlp") && t.Endpoint == "" {
		v.add("telemetry.endpoint", "endpoint is required for the otlp exporter")
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		v.add("telemetry.sample_rate", "must be between 0 and 1, got %g", t.SampleRate)
	}
}

func (v *validator) resilience(r ResilienceConfig) {
	if !r.Enabled {
		return
	}
	if r.Retry.MaxAttempts < 0 {
		v.add("resilience.retry.max_attempts", "must be non-negative")
	}
	if r.Retry.Multiplier != 0 && r.Retry.Multiplier < 1 {
		v.add("resilience.retry.multiplier", "must be at least 1, got %g", r.Retry.Multiplier)
	}
	if r.CircuitBreaker.Threshold < 0 {
		v.add("resilience.circuit_breaker.threshold", "must be non-negative")
	}
	if r.Bulkhead.MaxConcurrent < 0 {
		v.add("resilience.bulkhead.max_concurrent", "must be non-negative")
	}
}

func (v *validator) calendar(c CalendarConfig) {
	for year, weeks := range c.Weeks {
		if weeks != 52 && weeks != 53 {
			v.add(fmt.Sprintf("calendar.weeks.%d", year), "must be 52 or 53, got %d", weeks)
		}
	}
}
