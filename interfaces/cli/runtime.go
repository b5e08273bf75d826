package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/drawcal/application"
	"github.com/felixgeelhaar/drawcal/domain/cache"
	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/domain/config"
	"github.com/felixgeelhaar/drawcal/infrastructure/observability"
	"github.com/felixgeelhaar/drawcal/infrastructure/resilience"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/badger"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/memory"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/postgres"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/redis"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/sqlite"
	"github.com/felixgeelhaar/drawcal/infrastructure/telemetry"
)

// runtime holds the wired service and everything that must be released
// when a command ends.
type runtime struct {
	engine   *application.Engine
	metrics  telemetry.Metrics
	provider *observability.Provider
	closers  []func() error
}

// Close releases resources in reverse acquisition order.
func (r *runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if r.provider != nil {
		if err := r.provider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildRuntime wires store, cache, telemetry and engine from cfg.
func buildRuntime(ctx context.Context, cfg *config.ServiceConfig) (_ *runtime, err error) {
	rt := &runtime{metrics: &telemetry.NoopMetricsProvider{}}
	defer func() {
		if err != nil {
			_ = rt.Close(context.Background())
		}
	}()

	if cfg.Telemetry.Enabled {
		if rt.provider, err = openTelemetry(ctx, cfg); err != nil {
			return nil, err
		}
		rt.provider.Install()
		rt.metrics = telemetry.NewMetricsProvider(telemetry.MetricsConfig{
			MeterName:    telemetry.DefaultMetricsConfig().MeterName,
			MeterVersion: Version,
			Provider:     rt.provider.MeterProvider(),
		})
	}

	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeStore)

	if cfg.Resilience.Enabled {
		store = resilience.New(store, resilienceConfig(cfg.Resilience))
	}

	ch, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	rt.closers = append(rt.closers, closeCache)

	opts := []application.Option{
		application.WithStore(store),
		application.WithWeekCalendar(calendar.NewWeekCalendar(cfg.Calendar.Weeks)),
		application.WithMetrics(rt.metrics),
		application.WithBuilderOptions(
			application.WithBatchSize(cfg.Storage.BatchSize),
			application.WithFetchConcurrency(cfg.Storage.FetchConcurrency),
		),
	}
	if ch != nil {
		opts = append(opts, application.WithCache(ch, cfg.Cache.TTL.Duration()))
	}
	if rt.provider != nil {
		opts = append(opts, application.WithTracer(rt.provider.Tracer("github.com/felixgeelhaar/drawcal/application")))
	}

	if rt.engine, err = application.New(opts...); err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return rt, nil
}

func noClose() error { return nil }

// openStore opens the configured calendar store.
func openStore(ctx context.Context, cfg config.StorageConfig) (calendar.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		if cfg.Fixture == "" {
			return memory.NewStore(), noClose, nil
		}
		store, err := memory.LoadFile(cfg.Fixture)
		if err != nil {
			return nil, nil, fmt.Errorf("load fixture: %w", err)
		}
		return store, noClose, nil

	case config.DriverSQLite:
		var opts []sqlite.Option
		if cfg.SQLite.DSN != "" {
			opts = append(opts, sqlite.WithDSN(cfg.SQLite.DSN))
		}
		if cfg.SQLite.JournalMode != "" {
			opts = append(opts, sqlite.WithJournalMode(cfg.SQLite.JournalMode))
		}
		store, err := sqlite.NewStore(sqlite.DefaultConfig(), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, store.Close, nil

	case config.DriverPostgres:
		pg := cfg.Postgres
		var opts []postgres.ConfigOption
		if pg.Host != "" {
			opts = append(opts, postgres.WithHost(pg.Host))
		}
		if pg.Port != 0 {
			opts = append(opts, postgres.WithPort(pg.Port))
		}
		if pg.Database != "" {
			opts = append(opts, postgres.WithDatabase(pg.Database))
		}
		if pg.User != "" {
			opts = append(opts, postgres.WithCredentials(pg.User, pg.Password))
		}
		if pg.SSLMode != "" {
			opts = append(opts, postgres.WithSSLMode(pg.SSLMode))
		}
		if pg.MaxConns > 0 {
			opts = append(opts, postgres.WithPoolSize(min(2, pg.MaxConns), pg.MaxConns))
		}
		schema := postgres.DefaultConfig().Schema
		if pg.Schema != "" {
			schema = pg.Schema
		}
		pool, err := postgres.NewPool(ctx, postgres.DefaultConfig(), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return postgres.NewStore(pool, schema), func() error { pool.Close(); return nil }, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", calendar.ErrInvalidArgument, cfg.Driver)
	}
}

// openCache opens the configured result cache. A nil cache disables
// caching.
func openCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, func() error, error) {
	switch cfg.Driver {
	case "", config.CacheNone:
		return nil, noClose, nil

	case config.CacheMemory:
		var opts []memory.CacheOption
		if cfg.MaxSize > 0 {
			opts = append(opts, memory.WithMaxSize(cfg.MaxSize))
		}
		return memory.NewCache(opts...), noClose, nil

	case config.CacheRedis:
		var opts []redis.ConfigOption
		if cfg.Redis.Address != "" {
			opts = append(opts, redis.WithAddress(cfg.Redis.Address))
		}
		if cfg.Redis.Password != "" {
			opts = append(opts, redis.WithPassword(cfg.Redis.Password))
		}
		if cfg.Redis.DB != 0 {
			opts = append(opts, redis.WithDB(cfg.Redis.DB))
		}
		if cfg.Redis.KeyPrefix != "" {
			opts = append(opts, redis.WithKeyPrefix(cfg.Redis.KeyPrefix))
		}
		c, err := redis.NewCache(ctx, redis.DefaultConfig(), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis cache: %w", err)
		}
		return c, c.Close, nil

	case config.CacheBadger:
		var opts []badger.Option
		if cfg.Badger.Dir != "" {
			opts = append(opts, badger.WithDir(cfg.Badger.Dir))
		}
		c, err := badger.NewCache(badger.DefaultConfig(), opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger cache: %w", err)
		}
		return c, c.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown cache driver %q", calendar.ErrInvalidArgument, cfg.Driver)
	}
}

func resilienceConfig(cfg config.ResilienceConfig) resilience.Config {
	return resilience.Config{
		MaxConcurrent:           cfg.Bulkhead.MaxConcurrent,
		CircuitBreakerThreshold: cfg.CircuitBreaker.Threshold,
		CircuitBreakerTimeout:   cfg.CircuitBreaker.Timeout.Duration(),
		RetryMaxAttempts:        cfg.Retry.MaxAttempts,
		RetryInitialDelay:       cfg.Retry.InitialDelay.Duration(),
		RetryBackoffMultiplier:  cfg.Retry.Multiplier,
		Timeout:                 cfg.Timeout.Duration(),
	}
}

func openTelemetry(ctx context.Context, cfg *config.ServiceConfig) (*observability.Provider, error) {
	opts := []observability.Option{
		observability.WithServiceName(cfg.Name),
		observability.WithServiceVersion(Version),
		observability.WithMetrics(nil),
	}
	if cfg.Telemetry.Environment != "" {
		opts = append(opts, observability.WithEnvironment(cfg.Telemetry.Environment))
	}
	if exporter := observability.ExporterType(cfg.Telemetry.Exporter); exporter != "" && exporter != observability.ExporterNoop {
		opts = append(opts,
			observability.WithTracing(exporter, cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure),
			observability.WithSampleRate(cfg.Telemetry.SampleRate),
		)
	}

	provider, err := observability.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("set up telemetry: %w", err)
	}
	return provider, nil
}
