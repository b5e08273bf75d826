package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/drawcal/domain/cache"
)

func newTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()

	opts = append([]Option{WithInMemory()}, opts...)
	c, err := NewCache(DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SetGet(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "search:a", []byte(`[[{"id":1}]]`), cache.SetOptions{}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, found, err := c.Get(ctx, "search:a")
	if err != nil || !found {
		t.Fatalf("Get() = %v, %v", found, err)
	}
	if string(got) != `[[{"id":1}]]` {
		t.Errorf("Get() = %s", got)
	}

	if _, found, _ := c.Get(ctx, "search:b"); found {
		t.Error("Get() found missing key")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, size 1", stats)
	}
}

func TestCache_InvalidKey(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	if err := c.Set(context.Background(), "", nil, cache.SetOptions{}); !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidKey", err)
	}
}

func TestCache_TTL(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "short", []byte("v"), cache.SetOptions{TTL: time.Second}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ok, _ := c.Exists(ctx, "short"); !ok {
		t.Fatal("Exists() = false before expiry")
	}

	time.Sleep(2 * time.Second)
	if ok, _ := c.Exists(ctx, "short"); ok {
		t.Error("Exists() = true after expiry")
	}
}

func TestCache_DeleteClear(t *testing.T) {
	t.Parallel()

	c := newTestCache(t, WithKeyPrefix("t:"))
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), cache.SetOptions{}); err != nil {
			t.Fatalf("Set(%s) error = %v", k, err)
		}
	}
	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if ok, _ := c.Exists(ctx, "a"); ok {
		t.Error("Exists(a) = true after Delete")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if size := c.Stats().Size; size != 0 {
		t.Errorf("Size = %d after Clear, want 0", size)
	}
}

func TestCache_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	c, err := NewCache(DefaultConfig(), WithInMemory())
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
