package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/drawcal/domain/cache"
	"github.com/felixgeelhaar/drawcal/infrastructure/storage/memory"
)

func TestNewCache(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		c := memory.NewCache()
		if got := c.Stats().MaxSize; got != memory.DefaultCacheSize {
			t.Errorf("MaxSize = %d, want %d", got, memory.DefaultCacheSize)
		}
	})

	t.Run("custom max size", func(t *testing.T) {
		t.Parallel()

		c := memory.NewCache(memory.WithMaxSize(5))
		if got := c.Stats().MaxSize; got != 5 {
			t.Errorf("MaxSize = %d, want 5", got)
		}
	})

	t.Run("ignores non-positive max size", func(t *testing.T) {
		t.Parallel()

		c := memory.NewCache(memory.WithMaxSize(0))
		if got := c.Stats().MaxSize; got != memory.DefaultCacheSize {
			t.Errorf("MaxSize = %d, want %d", got, memory.DefaultCacheSize)
		}
	})
}

func TestCache_SetGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		c := memory.NewCache()
		if err := c.Set(ctx, "search:x", []byte("[]"), cache.SetOptions{}); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		value, found, err := c.Get(ctx, "search:x")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if !found || string(value) != "[]" {
			t.Errorf("Get() = %q, %v, want \"[]\", true", value, found)
		}
	})

	t.Run("miss", func(t *testing.T) {
		t.Parallel()

		c := memory.NewCache()
		_, found, err := c.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if found {
			t.Error("Get() found absent key")
		}
		if got := c.Stats().Misses; got != 1 {
			t.Errorf("Misses = %d, want 1", got)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()

		c := memory.NewCache()
		err := c.Set(ctx, "", []byte("v"), cache.SetOptions{})
		if !errors.Is(err, cache.ErrInvalidKey) {
			t.Errorf("Set() error = %v, want ErrInvalidKey", err)
		}
	})

	t.Run("stored value is a copy", func(t *testing.T) {
		t.Parallel()

		c := memory.NewCache()
		buf := []byte("abc")
		_ = c.Set(ctx, "k", buf, cache.SetOptions{})
		buf[0] = 'z'

		got, _, _ := c.Get(ctx, "k")
		if string(got) != "abc" {
			t.Errorf("Get() = %q, want abc", got)
		}
		got[0] = 'y'
		again, _, _ := c.Get(ctx, "k")
		if string(again) != "abc" {
			t.Errorf("Get() after mutation = %q, want abc", again)
		}
	})
}

func TestCache_TTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	c := memory.NewCache(memory.WithClock(func() time.Time { return now }))

	if err := c.Set(ctx, "k", []byte("v"), cache.SetOptions{TTL: time.Minute}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ok, _ := c.Exists(ctx, "k"); !ok {
		t.Fatal("Exists() = false before expiry")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("Exists() = true after expiry")
	}
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("Get() found expired key")
	}
	if got := c.Stats().Size; got != 0 {
		t.Errorf("Size = %d, want 0 after expired Get", got)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := memory.NewCache(memory.WithMaxSize(2))
	_ = c.Set(ctx, "a", []byte("1"), cache.SetOptions{})
	_ = c.Set(ctx, "b", []byte("2"), cache.SetOptions{})
	_, _, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("3"), cache.SetOptions{})

	tests := []struct {
		key  string
		want bool
	}{
		{"a", true},
		{"b", false},
		{"c", true},
	}
	for _, tt := range tests {
		if ok, _ := c.Exists(ctx, tt.key); ok != tt.want {
			t.Errorf("Exists(%q) = %v, want %v", tt.key, ok, tt.want)
		}
	}
	if got := c.Stats().Size; got != 2 {
		t.Errorf("Size = %d, want 2", got)
	}
}

func TestCache_DeleteClear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := memory.NewCache()
	_ = c.Set(ctx, "a", []byte("1"), cache.SetOptions{})
	_ = c.Set(ctx, "b", []byte("2"), cache.SetOptions{})

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
	if ok, _ := c.Exists(ctx, "a"); ok {
		t.Error("Exists(a) = true after Delete")
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got := c.Stats().Size; got != 0 {
		t.Errorf("Size = %d, want 0", got)
	}
}

func TestCache_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := memory.NewCache()
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want context.Canceled", err)
	}
	if err := c.Set(ctx, "k", nil, cache.SetOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("Set() error = %v, want context.Canceled", err)
	}
}
