// Package application provides the search engine over the draw calendar.
package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/drawcal/domain/cache"
	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/domain/relation"
	"github.com/felixgeelhaar/drawcal/infrastructure/logging"
	"github.com/felixgeelhaar/drawcal/infrastructure/telemetry"
)

const tracerName = "github.com/felixgeelhaar/drawcal/application"

// Query is one relation search request.
type Query struct {
	// Relation is the registered relation name; it doubles as the
	// confirmation token.
	Relation string
	// Day restricts matches to one weekday. Empty searches all days.
	Day string
	// Sessions selects AM and/or PM for session-scoped relations.
	Sessions relation.Sessions
	// Number and Number2 are the relation's parameters, if any.
	Number  string
	Number2 string
	// Years optionally bounds the matched records.
	Years calendar.YearRange
}

// CacheKey returns a canonical key identifying the query's result.
func (q Query) CacheKey() string {
	flag := func(b bool) string {
		if b {
			return "1"
		}
		return "0"
	}
	return strings.Join([]string{
		q.Relation,
		strings.ToLower(q.Day),
		flag(q.Sessions.AM) + flag(q.Sessions.PM),
		q.Number,
		q.Number2,
		strconv.Itoa(q.Years.From),
		strconv.Itoa(q.Years.To),
	}, "|")
}

// Engine validates queries, filters the store through relation predicates
// and assembles window sets.
type Engine struct {
	store    calendar.Store
	registry *relation.Registry
	weeks    calendar.WeekCalendar
	builder  *WindowBuilder
	cache    cache.Cache
	cacheTTL time.Duration
	metrics  telemetry.Metrics
	tracer   trace.Tracer
}

// EngineConfig contains configuration for the engine.
type EngineConfig struct {
	Store    calendar.Store
	Registry *relation.Registry
	Weeks    calendar.WeekCalendar
	Builder  []BuilderOption
	Cache    cache.Cache
	CacheTTL time.Duration
	Metrics  telemetry.Metrics
	Tracer   trace.Tracer
}

// NewEngine creates a new engine with the given configuration.
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Store == nil {
		return nil, errors.New("store is required")
	}

	e := &Engine{
		store:    config.Store,
		registry: config.Registry,
		weeks:    config.Weeks,
		cache:    config.Cache,
		cacheTTL: config.CacheTTL,
		metrics:  config.Metrics,
		tracer:   config.Tracer,
	}

	if e.registry == nil {
		e.registry = relation.Default()
	}
	if e.metrics == nil {
		e.metrics = &telemetry.NoopMetricsProvider{}
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}
	e.builder = NewWindowBuilder(e.store, e.weeks, config.Builder...)

	return e, nil
}

// plan is a validated query ready to run.
type plan struct {
	def       relation.Definition
	filter    calendar.Filter
	predicate calendar.Predicate
}

// Validate checks q without touching the store.
func (e *Engine) Validate(q Query) error {
	_, err := e.plan(q)
	return err
}

func (e *Engine) plan(q Query) (plan, error) {
	def, err := e.registry.Lookup(q.Relation)
	if err != nil {
		return plan{}, err
	}

	var filter calendar.Filter
	if q.Day != "" {
		day, err := calendar.ParseDay(q.Day)
		if err != nil {
			return plan{}, err
		}
		filter.Day = day
	}

	if q.Years.From != 0 && q.Years.To != 0 && q.Years.From > q.Years.To {
		return plan{}, fmt.Errorf("%w: year range %d..%d is empty", calendar.ErrInvalidArgument, q.Years.From, q.Years.To)
	}
	filter.Years = q.Years

	predicate, err := def.Compile(relation.Args{
		Sessions: q.Sessions,
		Number:   q.Number,
		Number2:  q.Number2,
	})
	if err != nil {
		return plan{}, err
	}

	return plan{def: def, filter: filter, predicate: predicate}, nil
}

// Search runs q and returns one window per distinct matched base week.
// It returns ErrInvalidArgument for bad queries, ErrNotFound when nothing
// matches and ErrStorageFailure when the store cannot be read.
func (e *Engine) Search(ctx context.Context, q Query) (calendar.WindowSet, error) {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "search", trace.WithAttributes(
		attribute.String("relation", q.Relation),
		attribute.String("day", q.Day),
	))
	defer span.End()

	p, err := e.plan(q)
	if err != nil {
		e.finish(ctx, span, q, 0, 0, start, err)
		return nil, err
	}

	if set, ok := e.lookupCache(ctx, q); ok {
		span.SetAttributes(attribute.Bool("cached", true))
		logging.Debug().
			Add(logging.Relation(q.Relation), logging.Windows(len(set)), logging.Cached(true)).
			Msg("search served from cache")
		e.metrics.RecordSearch(ctx, q.Relation, 0, len(set), "cached", time.Since(start))
		return set, nil
	}

	fetchStart := time.Now()
	matched, err := e.store.FetchFiltered(ctx, p.filter, p.predicate)
	e.metrics.RecordStoreFetch(ctx, "fetch_filtered", err == nil, time.Since(fetchStart))
	if err != nil {
		err = storageError(fmt.Errorf("filter %s: %w", q.Relation, err))
		e.finish(ctx, span, q, 0, 0, start, err)
		return nil, err
	}
	calendar.SortByID(matched)
	span.SetAttributes(attribute.Int("matches", len(matched)))

	if len(matched) == 0 {
		err = fmt.Errorf("%w: relation %s", calendar.ErrNotFound, q.Relation)
		e.finish(ctx, span, q, 0, 0, start, err)
		return nil, err
	}

	fetchStart = time.Now()
	set, err := e.builder.BuildWindowSet(ctx, matched)
	e.metrics.RecordStoreFetch(ctx, "fetch_by_weeks", err == nil, time.Since(fetchStart))
	if err != nil {
		e.finish(ctx, span, q, len(matched), 0, start, err)
		return nil, err
	}
	if len(set) == 0 {
		err = fmt.Errorf("%w: relation %s produced no windows", calendar.ErrNotFound, q.Relation)
		e.finish(ctx, span, q, len(matched), 0, start, err)
		return nil, err
	}

	e.storeCache(ctx, q, set)
	e.finish(ctx, span, q, len(matched), len(set), start, nil)
	return set, nil
}

// finish records the outcome of a search on logs, metrics and the span.
func (e *Engine) finish(ctx context.Context, span trace.Span, q Query, matches, windows int, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := outcomeOf(err)
	e.metrics.RecordSearch(ctx, q.Relation, matches, windows, outcome, elapsed)

	switch outcome {
	case "ok":
		span.SetAttributes(attribute.Int("windows", windows))
		logging.Info().
			Add(logging.Relation(q.Relation), logging.Str("day", q.Day),
				logging.Matches(matches), logging.Windows(windows), logging.Duration(elapsed)).
			Msg("search complete")
	case "not_found", "invalid_argument", "canceled":
		span.SetAttributes(attribute.String("outcome", outcome))
		logging.Debug().
			Add(logging.Relation(q.Relation), logging.Str("outcome", outcome), logging.ErrorField(err)).
			Msg("search rejected")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.metrics.RecordError(ctx, outcome, map[string]string{"relation": q.Relation})
		logging.Error().
			Add(logging.Relation(q.Relation), logging.Duration(elapsed), logging.ErrorField(err)).
			Msg("search failed")
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, calendar.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, calendar.ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "storage_failure"
	}
}

// Relations lists the registered relations.
func (e *Engine) Relations() []relation.Info {
	defs := e.registry.Definitions()
	out := make([]relation.Info, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Info())
	}
	return out
}

// All returns every record in ID order.
func (e *Engine) All(ctx context.Context) ([]calendar.Record, error) {
	records, err := e.store.FetchAll(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: calendar is empty", calendar.ErrNotFound)
	}
	return records, nil
}

// Year returns the records of one year in ID order.
func (e *Engine) Year(ctx context.Context, year int) ([]calendar.Record, error) {
	if year <= 0 {
		return nil, fmt.Errorf("%w: year %d", calendar.ErrInvalidArgument, year)
	}
	records, err := e.store.FetchByYear(ctx, year)
	if err != nil {
		return nil, storageError(err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: year %d", calendar.ErrNotFound, year)
	}
	return records, nil
}

// Latest returns the n most recently inserted records in ascending ID order.
func (e *Engine) Latest(ctx context.Context, n int) ([]calendar.Record, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", calendar.ErrInvalidArgument, n)
	}
	records, err := e.store.FetchLatest(ctx, n)
	if err != nil {
		return nil, storageError(err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: calendar is empty", calendar.ErrNotFound)
	}
	return records, nil
}

// Neighborhood returns the normalized weeks a window around (year, week)
// covers. The base week must lie inside year.
func (e *Engine) Neighborhood(year, week int) ([]calendar.WeekKey, error) {
	if year <= 0 || week < 1 || week > e.weeks.WeeksIn(year) {
		return nil, fmt.Errorf("%w: week %d of %d", calendar.ErrInvalidArgument, week, year)
	}
	return e.weeks.Neighborhood(calendar.WeekKey{Year: year, Week: week}), nil
}

// Weeks returns the engine's week table.
func (e *Engine) Weeks() calendar.WeekCalendar {
	return e.weeks
}
