package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/drawcal/domain/cache"
	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/domain/relation"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/memory"
)

// brokenCache fails every operation.
type brokenCache struct{}

var errCacheDown = errors.New("cache down")

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errCacheDown
}
func (brokenCache) Set(context.Context, string, []byte, cache.SetOptions) error {
	return errCacheDown
}
func (brokenCache) Delete(context.Context, string) error         { return errCacheDown }
func (brokenCache) Exists(context.Context, string) (bool, error) { return false, errCacheDown }
func (brokenCache) Clear(context.Context) error                  { return errCacheDown }

func TestSearch_ServedFromCache(t *testing.T) {
	t.Parallel()

	store := newCountingStore(fixture()...)
	ch := memory.NewCache()
	e := newTestEngine(t, store, WithCache(ch, time.Minute))
	q := Query{Relation: "samepair", Sessions: relation.BothSessions()}

	first, err := e.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := e.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if n := store.filtered.Load(); n != 1 {
		t.Errorf("FetchFiltered calls = %d, want 1", n)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("cached result differs (-first +second):\n%s", diff)
	}
	if stats := ch.Stats(); stats.Hits != 1 {
		t.Errorf("cache hits = %d, want 1", stats.Hits)
	}

	if err := e.InvalidateCache(context.Background()); err != nil {
		t.Fatalf("InvalidateCache() error = %v", err)
	}
	if _, err := e.Search(context.Background(), q); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if n := store.filtered.Load(); n != 2 {
		t.Errorf("FetchFiltered calls after invalidation = %d, want 2", n)
	}
}

func TestSearch_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	store := newCountingStore(fixture()...)
	ch := memory.NewCache()
	e := newTestEngine(t, store, WithCache(ch, time.Minute))
	q := Query{Relation: "number", Number: "99", Sessions: relation.BothSessions()}

	for range 2 {
		if _, err := e.Search(context.Background(), q); !errors.Is(err, calendar.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}
	if n := store.filtered.Load(); n != 2 {
		t.Errorf("FetchFiltered calls = %d, want 2", n)
	}
	if stats := ch.Stats(); stats.Size != 0 {
		t.Errorf("cache size = %d, want 0", stats.Size)
	}
}

func TestSearch_CacheFailureFallsBackToStore(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, memory.NewStore(fixture()...), WithCache(brokenCache{}, time.Minute))

	set, err := e.Search(context.Background(), Query{Relation: "samepair", Sessions: relation.BothSessions()})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(set) != 3 {
		t.Errorf("len(set) = %d, want 3", len(set))
	}
}

func TestSearch_DiscardsCorruptCacheEntry(t *testing.T) {
	t.Parallel()

	store := newCountingStore(fixture()...)
	ch := memory.NewCache()
	e := newTestEngine(t, store, WithCache(ch, time.Minute))
	q := Query{Relation: "samepair", Sessions: relation.BothSessions()}

	key := cacheKeyPrefix + q.CacheKey()
	if err := ch.Set(context.Background(), key, []byte("{not json"), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	set, err := e.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(set) != 3 {
		t.Errorf("len(set) = %d, want 3", len(set))
	}
	if n := store.filtered.Load(); n != 1 {
		t.Errorf("FetchFiltered calls = %d, want 1", n)
	}

	data, ok, err := ch.Get(context.Background(), key)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v, want fresh entry", ok, err)
	}
	decoded, err := decodeWindowSet(data)
	if err != nil {
		t.Fatalf("decodeWindowSet() error = %v", err)
	}
	if diff := cmp.Diff(set, decoded); diff != "" {
		t.Errorf("re-cached set differs (-want +got):\n%s", diff)
	}
}

func TestInvalidateCache_WithoutCache(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, memory.NewStore())
	if err := e.InvalidateCache(context.Background()); err != nil {
		t.Errorf("InvalidateCache() error = %v", err)
	}
}
