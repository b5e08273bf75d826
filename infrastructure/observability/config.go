// Package observability sets up OpenTelemetry tracing and metrics for the
// service.
package observability

import (
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// ExporterType selects where spans are sent.
type ExporterType string

const (
	// ExporterOTLP sends spans to an OTLP/gRPC collector.
	ExporterOTLP ExporterType = "otlp"
	// ExporterStdout pretty-prints spans to stdout.
	ExporterStdout ExporterType = "stdout"
	// ExporterNoop drops spans.
	ExporterNoop ExporterType = "noop"
)

// Config configures the provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	Tracing TracingConfig
	Metrics MetricsConfig
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled  bool
	Exporter ExporterType
	Endpoint string
	Insecure bool

	// SampleRate is the fraction of traces kept (0.0-1.0).
	SampleRate         float64
	BatchTimeout       time.Duration
	MaxExportBatchSize int
}

// MetricsConfig configures the SDK meter provider.
type MetricsConfig struct {
	Enabled bool

	// Reader collects metrics. Nil means a manual reader that is drained
	// through Provider.CollectMetrics.
	Reader sdkmetric.Reader
}

// DefaultConfig returns a configuration with everything disabled.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "drawcal",
		ServiceVersion: "dev",
		Environment:    "development",
		Tracing: TracingConfig{
			Exporter:           ExporterNoop,
			SampleRate:         1.0,
			BatchTimeout:       5 * time.Second,
			MaxExportBatchSize: 512,
		},
	}
}

// Option configures the provider.
type Option func(*Config)

// WithServiceName sets the service name.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// WithServiceVersion sets the service version.
func WithServiceVersion(version string) Option {
	return func(c *Config) {
		c.ServiceVersion = version
	}
}

// WithEnvironment sets the deployment environment.
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithTracing enables span export.
func WithTracing(exporter ExporterType, endpoint string, insecure bool) Option {
	return func(c *Config) {
		c.Tracing.Enabled = true
		c.Tracing.Exporter = exporter
		c.Tracing.Endpoint = endpoint
		c.Tracing.Insecure = insecure
	}
}

// WithSampleRate sets the trace sampling rate.
func WithSampleRate(rate float64) Option {
	return func(c *Config) {
		c.Tracing.SampleRate = rate
	}
}

// WithMetrics enables the SDK meter provider with an optional reader.
func WithMetrics(reader sdkmetric.Reader) Option {
	return func(c *Config) {
		c.Metrics.Enabled = true
		c.Metrics.Reader = reader
	}
}
