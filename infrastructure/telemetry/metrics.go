// Package telemetry provides OpenTelemetry metrics for the drawcal service.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	searches      metric.Int64Counter
	matches       metric.Int64Counter
	storeFetches  metric.Int64Counter
	cacheHits     metric.Int64Counter
	cacheMisses   metric.Int64Counter
	rateLimitHits metric.Int64Counter
	errors        metric.Int64Counter

	// Histograms
	searchDuration metric.Float64Histogram
	fetchDuration  metric.Float64Histogram
	windowCount    metric.Int64Histogram

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/drawcal").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// Provider overrides the global meter provider.
	Provider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/drawcal",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config.MeterName = DefaultMetricsConfig().MeterName
	}

	provider := config.Provider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	mp.searches, err = mp.meter.Int64Counter(
		"drawcal.searches",
		metric.WithDescription("Number of relation searches"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		return err
	}

	mp.matches, err = mp.meter.Int64Counter(
		"drawcal.matches",
		metric.WithDescription("Number of records matched by relation filters"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return err
	}

	mp.storeFetches, err = mp.meter.Int64Counter(
		"drawcal.store.fetches",
		metric.WithDescription("Number of calendar store round trips"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	mp.cacheHits, err = mp.meter.Int64Counter(
		"drawcal.cache.hits",
		metric.WithDescription("Number of search cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	mp.cacheMisses, err = mp.meter.Int64Counter(
		"drawcal.cache.misses",
		metric.WithDescription("Number of search cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return err
	}

	mp.rateLimitHits, err = mp.meter.Int64Counter(
		"drawcal.ratelimit.hits",
		metric.WithDescription("Number of rate limited requests"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	mp.errors, err = mp.meter.Int64Counter(
		"drawcal.errors",
		metric.WithDescription("Number of errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	mp.searchDuration, err = mp.meter.Float64Histogram(
		"drawcal.search.duration",
		metric.WithDescription("Duration of relation searches"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.fetchDuration, err = mp.meter.Float64Histogram(
		"drawcal.store.duration",
		metric.WithDescription("Duration of calendar store round trips"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.windowCount, err = mp.meter.Int64Histogram(
		"drawcal.search.windows",
		metric.WithDescription("Number of windows returned per search"),
		metric.WithUnit("{window}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordSearch records a completed search.
func (mp *MetricsProvider) RecordSearch(ctx context.Context, relation string, matches, windows int, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("relation", relation),
		attribute.String("outcome", outcome),
	}

	mp.searches.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.matches.Add(ctx, int64(matches), metric.WithAttributes(attribute.String("relation", relation)))
	mp.searchDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	mp.windowCount.Record(ctx, int64(windows), metric.WithAttributes(attribute.String("relation", relation)))
}

// RecordStoreFetch records a store round trip.
func (mp *MetricsProvider) RecordStoreFetch(ctx context.Context, operation string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	}

	mp.storeFetches.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.fetchDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if !success {
		mp.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error.type", "store_fetch"),
			attribute.String("operation", operation),
		))
	}
}

// RecordCacheHit records a cache hit.
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context, relation string) {
	mp.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("relation", relation)))
}

// RecordCacheMiss records a cache miss.
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context, relation string) {
	mp.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("relation", relation)))
}

// RecordRateLimitHit records a rejected request.
func (mp *MetricsProvider) RecordRateLimitHit(ctx context.Context, client string) {
	mp.rateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("client", client)))
}

// RecordError records an error.
func (mp *MetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
	attrs := []attribute.KeyValue{
		attribute.String("error.type", errorType),
	}
	for k, v := range details {
		attrs = append(attrs, attribute.String(k, v))
	}

	mp.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// NoopMetricsProvider is a no-op metrics provider for testing or when metrics are disabled.
type NoopMetricsProvider struct{}

// RecordSearch is a no-op.
func (n *NoopMetricsProvider) RecordSearch(ctx context.Context, relation string, matches, windows int, outcome string, duration time.Duration) {
}

// RecordStoreFetch is a no-op.
func (n *NoopMetricsProvider) RecordStoreFetch(ctx context.Context, operation string, success bool, duration time.Duration) {
}

// RecordCacheHit is a no-op.
func (n *NoopMetricsProvider) RecordCacheHit(ctx context.Context, relation string) {}

// RecordCacheMiss is a no-op.
func (n *NoopMetricsProvider) RecordCacheMiss(ctx context.Context, relation string) {}

// RecordRateLimitHit is a no-op.
func (n *NoopMetricsProvider) RecordRateLimitHit(ctx context.Context, client string) {}

// RecordError is a no-op.
func (n *NoopMetricsProvider) RecordError(ctx context.Context, errorType string, details map[string]string) {
}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordSearch(ctx context.Context, relation string, matches, windows int, outcome string, duration time.Duration)
	RecordStoreFetch(ctx context.Context, operation string, success bool, duration time.Duration)
	RecordCacheHit(ctx context.Context, relation string)
	RecordCacheMiss(ctx context.Context, relation string)
	RecordRateLimitHit(ctx context.Context, client string)
	RecordError(ctx context.Context, errorType string, details map[string]string)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = (*NoopMetricsProvider)(nil)
)
