package application

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/drawcal/domain/cache"
	"github.com/felixgeelhaar/drawcal/domain/calendar"
	"github.com/felixgeelhaar/drawcal/infrastructure/logging"
)

// cacheKeyPrefix namespaces search results inside a shared cache.
const cacheKeyPrefix = "search:"

// cachedWindow is the cache encoding of a window. Unlike the API encoding
// it keeps the base week.
type cachedWindow struct {
	Base    calendar.WeekKey  `json:"base"`
	Records []calendar.Record `json:"records"`
}

func encodeWindowSet(set calendar.WindowSet) ([]byte, error) {
	out := make([]cachedWindow, len(set))
	for i, w := range set {
		out[i] = cachedWindow{Base: w.Base, Records: w.Records}
	}
	return json.Marshal(out)
}

func decodeWindowSet(data []byte) (calendar.WindowSet, error) {
	var in []cachedWindow
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	set := make(calendar.WindowSet, len(in))
	for i, w := range in {
		set[i] = calendar.Window{Base: w.Base, Records: w.Records}
	}
	return set, nil
}

// lookupCache returns a cached result for q. Cache failures are logged and
// treated as misses.
func (e *Engine) lookupCache(ctx context.Context, q Query) (calendar.WindowSet, bool) {
	if e.cache == nil {
		return nil, false
	}

	key := cacheKeyPrefix + q.CacheKey()
	data, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		logging.Warn().
			Add(logging.Relation(q.Relation), logging.Component("cache"), logging.ErrorField(err)).
			Msg("cache lookup failed")
		e.metrics.RecordCacheMiss(ctx, q.Relation)
		return nil, false
	}
	if !ok {
		e.metrics.RecordCacheMiss(ctx, q.Relation)
		return nil, false
	}

	set, err := decodeWindowSet(data)
	if err != nil {
		logging.Warn().
			Add(logging.Relation(q.Relation), logging.Component("cache"), logging.ErrorField(err)).
			Msg("discarding undecodable cache entry")
		_ = e.cache.Delete(ctx, key)
		e.metrics.RecordCacheMiss(ctx, q.Relation)
		return nil, false
	}

	e.metrics.RecordCacheHit(ctx, q.Relation)
	return set, true
}

// storeCache saves a successful result. Only non-empty results are cached.
func (e *Engine) storeCache(ctx context.Context, q Query, set calendar.WindowSet) {
	if e.cache == nil || len(set) == 0 {
		return
	}

	data, err := encodeWindowSet(set)
	if err != nil {
		logging.Warn().
			Add(logging.Relation(q.Relation), logging.Component("cache"), logging.ErrorField(err)).
			Msg("cannot encode search result")
		return
	}
	if err := e.cache.Set(ctx, cacheKeyPrefix+q.CacheKey(), data, cache.SetOptions{TTL: e.cacheTTL}); err != nil {
		logging.Warn().
			Add(logging.Relation(q.Relation), logging.Component("cache"), logging.ErrorField(err)).
			Msg("cache store failed")
	}
}

// InvalidateCache drops every cached search result, for use after the
// calendar table has been appended to.
func (e *Engine) InvalidateCache(ctx context.Context) error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Clear(ctx)
}
