package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

const (
	// defaultBatchSize is the number of weeks requested per FetchByWeeks call.
	defaultBatchSize = 64
	// defaultFetchConcurrency bounds concurrent batch fetches.
	defaultFetchConcurrency = 4
)

// WindowBuilder turns matched records into deduplicated, ordered windows.
type WindowBuilder struct {
	store       calendar.Store
	weeks       calendar.WeekCalendar
	batchSize   int
	concurrency int
}

// BuilderOption configures a WindowBuilder.
type BuilderOption func(*WindowBuilder)

// WithBatchSize sets how many weeks are fetched per store round trip.
func WithBatchSize(n int) BuilderOption {
	return func(b *WindowBuilder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithFetchConcurrency bounds the number of concurrent store round trips.
func WithFetchConcurrency(n int) BuilderOption {
	return func(b *WindowBuilder) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewWindowBuilder creates a builder over store using the given week table.
func NewWindowBuilder(store calendar.Store, weeks calendar.WeekCalendar, opts ...BuilderOption) *WindowBuilder {
	b := &WindowBuilder{
		store:       store,
		weeks:       weeks,
		batchSize:   defaultBatchSize,
		concurrency: defaultFetchConcurrency,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BuildWindow fetches the four weeks around rec concurrently and assembles
// one window. It fails as a whole if any fetch fails.
func (b *WindowBuilder) BuildWindow(ctx context.Context, rec calendar.Record) (calendar.Window, error) {
	base := rec.Key()
	keys := b.weeks.Neighborhood(base)
	parts := make([][]calendar.Record, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for i, k := range keys {
		g.Go(func() error {
			records, err := b.store.FetchByYearWeek(gctx, k.Year, k.Week)
			if err != nil {
				return fmt.Errorf("fetch week %s: %w", k, err)
			}
			parts[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return calendar.Window{}, storageError(err)
	}
	if err := ctx.Err(); err != nil {
		return calendar.Window{}, storageError(err)
	}

	return assemble(base, parts...), nil
}

// BuildWindowSet builds one window per distinct base week of matched, the
// first record of each base week in the given order winning. All weeks
// needed by every window are fetched up front in batches. The windows are
// returned ordered by their minimum record ID.
func (b *WindowBuilder) BuildWindowSet(ctx context.Context, matched []calendar.Record) (calendar.WindowSet, error) {
	if len(matched) == 0 {
		return calendar.WindowSet{}, nil
	}

	var (
		bases  []calendar.WeekKey
		hoods  [][]calendar.WeekKey
		needed []calendar.WeekKey
	)
	seenBase := make(map[calendar.WeekKey]struct{})
	seenWeek := make(map[calendar.WeekKey]struct{})
	for _, rec := range matched {
		base := rec.Key()
		if _, ok := seenBase[base]; ok {
			continue
		}
		seenBase[base] = struct{}{}

		hood := b.weeks.Neighborhood(base)
		bases = append(bases, base)
		hoods = append(hoods, hood)
		for _, k := range hood {
			if _, ok := seenWeek[k]; ok {
				continue
			}
			seenWeek[k] = struct{}{}
			needed = append(needed, k)
		}
	}

	byWeek, err := b.fetchWeeks(ctx, needed)
	if err != nil {
		return nil, err
	}

	windows := make([]calendar.Window, 0, len(bases))
	for i, base := range bases {
		parts := make([][]calendar.Record, 0, len(hoods[i]))
		for _, k := range hoods[i] {
			parts = append(parts, byWeek[k])
		}
		w := assemble(base, parts...)
		if len(w.Records) == 0 {
			continue
		}
		windows = append(windows, w)
	}
	calendar.SortWindows(windows)

	return calendar.WindowSet(windows), nil
}

// fetchWeeks batch-fetches keys, issuing up to b.concurrency round trips
// at once. Any failure cancels the rest.
func (b *WindowBuilder) fetchWeeks(ctx context.Context, keys []calendar.WeekKey) (map[calendar.WeekKey][]calendar.Record, error) {
	var (
		mu     sync.Mutex
		result = make(map[calendar.WeekKey][]calendar.Record, len(keys))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for start := 0; start < len(keys); start += b.batchSize {
		end := min(start+b.batchSize, len(keys))
		batch := keys[start:end]
		g.Go(func() error {
			got, err := b.store.FetchByWeeks(gctx, batch)
			if err != nil {
				return fmt.Errorf("fetch %d weeks from %s: %w", len(batch), batch[0], err)
			}
			mu.Lock()
			for k, records := range got {
				result[k] = records
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storageError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, storageError(err)
	}
	return result, nil
}

// assemble concatenates per-week records into a window sorted by weekday
// then ID, unique by ID.
func assemble(base calendar.WeekKey, parts ...[]calendar.Record) calendar.Window {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	all := make([]calendar.Record, 0, n)
	for _, p := range parts {
		all = append(all, p...)
	}
	return calendar.Window{Base: base, Records: calendar.SortRecords(all)}
}

// storageError marks err as a storage failure unless it already is one.
func storageError(err error) error {
	if err == nil || errors.Is(err, calendar.ErrStorageFailure) {
		return err
	}
	return errors.Join(calendar.ErrStorageFailure, err)
}
