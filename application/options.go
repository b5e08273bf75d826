package application

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/drawcal/domain/cache"
	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/domain/relation"
	"github.com/felixgeelhaar/drawcal/infrastructure/telemetry"
)

// Option configures the engine.
type Option func(*EngineConfig)

// WithStore sets the calendar store.
func WithStore(s calendar.Store) Option {
	return func(c *EngineConfig) {
		c.Store = s
	}
}

// WithRegistry sets the relation registry.
func WithRegistry(r *relation.Registry) Option {
	return func(c *EngineConfig) {
		c.Registry = r
	}
}

// WithWeekCalendar sets the week table used for window arithmetic.
func WithWeekCalendar(w calendar.WeekCalendar) Option {
	return func(c *EngineConfig) {
		c.Weeks = w
	}
}

// WithCache enables result caching with the given TTL.
func WithCache(ch cache.Cache, ttl time.Duration) Option {
	return func(c *EngineConfig) {
		c.Cache = ch
		c.CacheTTL = ttl
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *EngineConfig) {
		c.Metrics = m
	}
}

// WithTracer sets the tracer used for search spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *EngineConfig) {
		c.Tracer = t
	}
}

// WithBuilderOptions configures the window builder.
func WithBuilderOptions(opts ...BuilderOption) Option {
	return func(c *EngineConfig) {
		c.Builder = append(c.Builder, opts...)
	}
}

// New creates an engine from options.
func New(opts ...Option) (*Engine, error) {
	config := EngineConfig{}
	for _, opt := range opts {
		opt(&config)
	}
	return NewEngine(config)
}
