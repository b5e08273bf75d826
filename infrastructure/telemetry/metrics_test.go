package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupTestMetrics creates a provider backed by a manual reader.
func setupTestMetrics(t *testing.T) (*metric.ManualReader, *MetricsProvider) {
	t.Helper()

	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))

	cfg := DefaultMetricsConfig()
	cfg.Provider = provider
	mp := NewMetricsProvider(cfg)
	if mp.Error() != nil {
		t.Fatalf("failed to create metrics provider: %v", mp.Error())
	}

	return reader, mp
}

func collect(t *testing.T, reader *metric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func sumInt64(t *testing.T, rm metricdata.ResourceMetrics, name string) (int64, bool) {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("%s: expected Sum[int64], got %T", name, m.Data)
			}
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total, true
		}
	}
	return 0, false
}

func TestNewMetricsProvider(t *testing.T) {
	t.Parallel()

	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	if mp == nil {
		t.Fatal("NewMetricsProvider returned nil")
	}
}

func TestNewMetricsProvider_EmptyNameUsesDefault(t *testing.T) {
	t.Parallel()

	reader := metric.NewManualReader()
	mp := NewMetricsProvider(MetricsConfig{Provider: metric.NewMeterProvider(metric.WithReader(reader))})
	if mp.Error() != nil {
		t.Errorf("unexpected error: %v", mp.Error())
	}
}

func TestMetricsProvider_RecordSearch(t *testing.T) {
	t.Parallel()

	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()
	mp.RecordSearch(ctx, "brotherpair", 5, 3, "ok", 12*time.Millisecond)
	mp.RecordSearch(ctx, "brotherpair", 0, 0, "not_found", time.Millisecond)

	rm := collect(t, reader)

	searches, ok := sumInt64(t, rm, "drawcal.searches")
	if !ok {
		t.Fatal("drawcal.searches metric not found")
	}
	if searches != 2 {
		t.Errorf("searches = %d, want 2", searches)
	}

	matches, ok := sumInt64(t, rm, "drawcal.matches")
	if !ok {
		t.Fatal("drawcal.matches metric not found")
	}
	if matches != 5 {
		t.Errorf("matches = %d, want 5", matches)
	}
}

func TestMetricsProvider_RecordStoreFetch(t *testing.T) {
	t.Parallel()

	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()
	mp.RecordStoreFetch(ctx, "fetch_by_weeks", true, time.Millisecond)
	mp.RecordStoreFetch(ctx, "fetch_by_weeks", false, time.Millisecond)

	rm := collect(t, reader)

	fetches, _ := sumInt64(t, rm, "drawcal.store.fetches")
	if fetches != 2 {
		t.Errorf("fetches = %d, want 2", fetches)
	}
	errs, _ := sumInt64(t, rm, "drawcal.errors")
	if errs != 1 {
		t.Errorf("errors = %d, want 1", errs)
	}
}

func TestMetricsProvider_CacheAndRateLimit(t *testing.T) {
	t.Parallel()

	reader, mp := setupTestMetrics(t)
	defer reader.Shutdown(context.Background())

	ctx := context.Background()
	mp.RecordCacheHit(ctx, "natsatpair")
	mp.RecordCacheHit(ctx, "natsatpair")
	mp.RecordCacheMiss(ctx, "natsatpair")
	mp.RecordRateLimitHit(ctx, "127.0.0.1")
	mp.RecordError(ctx, "validation", map[string]string{"relation": "x"})

	rm := collect(t, reader)

	tests := []struct {
		name string
		want int64
	}{
		{"drawcal.cache.hits", 2},
		{"drawcal.cache.misses", 1},
		{"drawcal.ratelimit.hits", 1},
		{"drawcal.errors", 1},
	}
	for _, tt := range tests {
		got, ok := sumInt64(t, rm, tt.name)
		if !ok {
			t.Errorf("%s metric not found", tt.name)
			continue
		}
		if got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestNoopMetricsProvider(t *testing.T) {
	t.Parallel()

	var m Metrics = &NoopMetricsProvider{}
	ctx := context.Background()

	m.RecordSearch(ctx, "x", 1, 1, "ok", time.Second)
	m.RecordStoreFetch(ctx, "x", true, time.Second)
	m.RecordCacheHit(ctx, "x")
	m.RecordCacheMiss(ctx, "x")
	m.RecordRateLimitHit(ctx, "x")
	m.RecordError(ctx, "x", nil)
}
