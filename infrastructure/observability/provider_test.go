package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/metric"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.ServiceName != "drawcal" {
		t.Errorf("ServiceName = %s, want drawcal", cfg.ServiceName)
	}
	if cfg.Tracing.Enabled || cfg.Metrics.Enabled {
		t.Error("tracing and metrics should be disabled by default")
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.Tracing.SampleRate)
	}
}

func TestNew_Disabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p, err := New(ctx)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, span := p.Tracer("test").Start(ctx, "op")
	if span.SpanContext().IsValid() {
		t.Error("noop tracer produced a valid span context")
	}
	span.End()

	if _, err := p.CollectMetrics(ctx); err == nil {
		t.Error("CollectMetrics() should fail when metrics are disabled")
	}
	if err := p.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNew_StdoutTracing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p, err := New(ctx, WithTracing(ExporterStdout, "", false), WithSampleRate(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Shutdown(ctx)

	_, span := p.Tracer("test").Start(ctx, "op")
	defer span.End()
	if !span.SpanContext().IsValid() {
		t.Error("sdk tracer should produce a valid span context")
	}
}

func TestNew_UnknownExporter(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), WithTracing(ExporterType("zipkin"), "", false))
	if !errors.Is(err, ErrUnknownExporter) {
		t.Errorf("New() error = %v, want ErrUnknownExporter", err)
	}
}

func TestNew_Metrics(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	p, err := New(ctx, WithServiceName("drawcal-test"), WithMetrics(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer p.Shutdown(ctx)

	counter, err := p.MeterProvider().Meter("test").Int64Counter("drawcal.test.counter")
	if err != nil {
		t.Fatalf("Int64Counter() error = %v", err)
	}
	counter.Add(ctx, 3, metric.WithAttributes())

	rm, err := p.CollectMetrics(ctx)
	if err != nil {
		t.Fatalf("CollectMetrics() error = %v", err)
	}
	if len(rm.ScopeMetrics) != 1 || len(rm.ScopeMetrics[0].Metrics) != 1 {
		t.Fatalf("ScopeMetrics = %+v, want one metric", rm.ScopeMetrics)
	}
	if name := rm.ScopeMetrics[0].Metrics[0].Name; name != "drawcal.test.counter" {
		t.Errorf("metric name = %s", name)
	}
}

func TestSampler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}
