package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/domain/relation"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/memory"
)

func newTestEngine(t *testing.T, store calendar.Store, opts ...Option) *Engine {
	t.Helper()

	e, err := New(append([]Option{WithStore(store)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func windowIDs(set calendar.WindowSet) [][]int64 {
	out := make([][]int64, len(set))
	for i, w := range set {
		out[i] = ids(w.Records)
	}
	return out
}

func TestNew_RequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := New(); err == nil {
		t.Error("New() without store should fail")
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()

	both := relation.BothSessions()

	tests := []struct {
		name  string
		query Query
		want  [][]int64
	}{
		{
			name:  "same pair across year boundary",
			query: Query{Relation: "samepair", Sessions: both},
			want:  [][]int64{{1, 2, 3}, {4, 5}, {6, 7}},
		},
		{
			name:  "day filter",
			query: Query{Relation: "samepair", Day: "friday", Sessions: both},
			want:  [][]int64{{4, 5}},
		},
		{
			name:  "am only",
			query: Query{Relation: "number", Number: "45", Sessions: relation.Sessions{AM: true}},
			want:  [][]int64{{1, 2, 3}},
		},
		{
			name:  "pm only",
			query: Query{Relation: "number", Number: "13", Sessions: relation.Sessions{PM: true}},
			want:  [][]int64{{1, 2, 3}},
		},
		{
			name:  "year range",
			query: Query{Relation: "samepair", Sessions: both, Years: calendar.YearRange{From: 2024, To: 2024}},
			want:  [][]int64{{1, 2, 3}, {4, 5}, {6, 7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t, memory.NewStore(fixture()...))
			set, err := e.Search(context.Background(), tt.query)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, windowIDs(set)); diff != "" {
				t.Errorf("windows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSearch_InvalidArgumentSkipsStore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query Query
	}{
		{"unknown relation", Query{Relation: "nosuchpair", Sessions: relation.BothSessions()}},
		{"bad day", Query{Relation: "samepair", Day: "Saturday", Sessions: relation.BothSessions()}},
		{"malformed number", Query{Relation: "number", Number: "4", Sessions: relation.BothSessions()}},
		{"no session", Query{Relation: "number", Number: "45"}},
		{"empty year range", Query{Relation: "samepair", Sessions: relation.BothSessions(), Years: calendar.YearRange{From: 2025, To: 2024}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newCountingStore(fixture()...)
			e := newTestEngine(t, store)

			_, err := e.Search(context.Background(), tt.query)
			if !errors.Is(err, calendar.ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
			if n := store.filtered.Load(); n != 0 {
				t.Errorf("store queried %d times for an invalid query", n)
			}
		})
	}
}

func TestSearch_NotFound(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, memory.NewStore(fixture()...))

	set, err := e.Search(context.Background(), Query{Relation: "number", Number: "99", Sessions: relation.BothSessions()})
	if !errors.Is(err, calendar.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if set != nil {
		t.Errorf("set = %v, want nil", set)
	}
}

func TestSearch_SentinelNeverMatches(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, memory.NewStore(rec(1, 2024, 1, calendar.Monday, "aa", "aa")))

	_, err := e.Search(context.Background(), Query{Relation: "samepair", Sessions: relation.BothSessions()})
	if !errors.Is(err, calendar.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearch_StorageFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		store *failingStore
	}{
		{"filter", &failingStore{Store: memory.NewStore(fixture()...), failFilter: true}},
		{"window fetch", &failingStore{Store: memory.NewStore(fixture()...)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t, tt.store)
			set, err := e.Search(context.Background(), Query{Relation: "samepair", Sessions: relation.BothSessions()})
			if !errors.Is(err, calendar.ErrStorageFailure) {
				t.Errorf("err = %v, want ErrStorageFailure", err)
			}
			if !calendar.IsRetryable(err) {
				t.Errorf("IsRetryable(%v) = false, want true", err)
			}
			if set != nil {
				t.Errorf("set = %v, want nil", set)
			}
		})
	}
}

func TestSearch_Canceled(t *testing.T) {
	t.Parallel()

	metrics := &recordingMetrics{}
	e := newTestEngine(t, memory.NewStore(fixture()...), WithMetrics(metrics))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Search(ctx, Query{Relation: "samepair", Sessions: relation.BothSessions()}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(metrics.errors) != 0 {
		t.Errorf("errors recorded = %v, want none", metrics.errors)
	}
	if len(metrics.outcomes) != 1 || metrics.outcomes[0] != "canceled" {
		t.Errorf("outcomes = %v, want [canceled]", metrics.outcomes)
	}
}

func TestSearch_Idempotent(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, memory.NewStore(fixture()...))
	q := Query{Relation: "samepair", Sessions: relation.BothSessions()}

	first, err := e.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := e.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("repeated search differs:\n%s\n%s", a, b)
	}
}

func TestSearch_WeekCalendarOverride(t *testing.T) {
	t.Parallel()

	// With 2024 at 53 weeks the window around 2024-W52 ends at 2024-W53
	// and no longer reaches 2025-W01.
	store := memory.NewStore(
		rec(1, 2024, 52, calendar.Monday, "22", "22"),
		rec(2, 2024, 53, calendar.Monday, "10", "11"),
		rec(3, 2025, 1, calendar.Monday, "12", "13"),
	)
	e := newTestEngine(t, store, WithWeekCalendar(calendar.NewWeekCalendar(map[int]int{2024: 53})))

	set, err := e.Search(context.Background(), Query{Relation: "samepair", Sessions: relation.BothSessions()})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if diff := cmp.Diff([][]int64{{1, 2}}, windowIDs(set)); diff != "" {
		t.Errorf("windows mismatch (-want +got):\n%s", diff)
	}
}

func TestCalendarQueries(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, memory.NewStore(fixture()...))
	ctx := context.Background()

	all, err := e.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if diff := cmp.Diff([]int64{1, 2, 3, 4, 5, 6, 7}, ids(all)); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}

	year, err := e.Year(ctx, 2025)
	if err != nil {
		t.Fatalf("Year() error = %v", err)
	}
	if diff := cmp.Diff([]int64{6}, ids(year)); diff != "" {
		t.Errorf("Year() mismatch (-want +got):\n%s", diff)
	}

	latest, err := e.Latest(ctx, 2)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if diff := cmp.Diff([]int64{6, 7}, ids(latest)); diff != "" {
		t.Errorf("Latest() mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.Year(ctx, 1999); !errors.Is(err, calendar.ErrNotFound) {
		t.Errorf("Year(1999) err = %v, want ErrNotFound", err)
	}
	if _, err := e.Latest(ctx, 0); !errors.Is(err, calendar.ErrInvalidArgument) {
		t.Errorf("Latest(0) err = %v, want ErrInvalidArgument", err)
	}
	if _, err := newTestEngine(t, memory.NewStore()).All(ctx); !errors.Is(err, calendar.ErrNotFound) {
		t.Errorf("All() on empty store err = %v, want ErrNotFound", err)
	}
}

func TestNeighborhood(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, memory.NewStore())

	got, err := e.Neighborhood(2025, 1)
	if err != nil {
		t.Fatalf("Neighborhood() error = %v", err)
	}
	want := []calendar.WeekKey{{Year: 2024, Week: 51}, {Year: 2024, Week: 52}, {Year: 2025, Week: 1}, {Year: 2025, Week: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Neighborhood mismatch (-want +got):\n%s", diff)
	}

	if _, err := e.Neighborhood(2024, 53); !errors.Is(err, calendar.ErrInvalidArgument) {
		t.Errorf("Neighborhood(2024, 53) err = %v, want ErrInvalidArgument", err)
	}
}

func TestRelations(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, memory.NewStore())
	infos := e.Relations()
	if len(infos) != len(relation.Builtin()) {
		t.Errorf("len(Relations()) = %d, want %d", len(infos), len(relation.Builtin()))
	}
}

func TestQuery_CacheKey(t *testing.T) {
	t.Parallel()

	a := Query{Relation: "number", Day: "Monday", Number: "45", Sessions: relation.Sessions{AM: true}}
	b := Query{Relation: "number", Day: "MONDAY", Number: "45", Sessions: relation.Sessions{AM: true}}
	c := Query{Relation: "number", Day: "Monday", Number: "45", Sessions: relation.Sessions{PM: true}}

	if a.CacheKey() != b.CacheKey() {
		t.Errorf("day case changed cache key: %q vs %q", a.CacheKey(), b.CacheKey())
	}
	if a.CacheKey() == c.CacheKey() {
		t.Errorf("session change kept cache key %q", a.CacheKey())
	}
}
