package cache

import (
	"errors"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := NewInMemoryCache[string, int](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("empty cache returned a value")
	}
	c.Set("a", 1, 0)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("get: %v %v", v, ok)
	}
	if c.Size() != 1 {
		t.Errorf("size: %d", c.Size())
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("deleted key still present")
	}
}

func TestExpiry(t *testing.T) {
	c := NewInMemoryCache[string, string](time.Minute)
	c.Set("k", "v", 10*time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("fresh value missing")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expired value still served")
	}
}

func TestClear(t *testing.T) {
	c := NewInMemoryCache[int, int](time.Minute)
	c.Set(1, 1, 0)
	c.Set(2, 2, 0)
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("size after clear: %d", c.Size())
	}
}

func TestResponseCacheFetch(t *testing.T) {
	rc := NewResponseCache(time.Minute)

	fills := 0
	fill := func() ([]byte, error) {
		fills++
		return []byte(`{"ok":true}`), nil
	}
	for i := 0; i < 3; i++ {
		body, err := rc.Fetch("/api/balance", fill)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if string(body) != `{"ok":true}` {
			t.Errorf("body: %s", body)
		}
	}
	if fills != 1 {
		t.Errorf("fills: %d, want 1", fills)
	}
}

func TestResponseCacheErrorNotCached(t *testing.T) {
	rc := NewResponseCache(time.Minute)

	calls := 0
	boom := errors.New("venue down")
	fill := func() ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return []byte(`{}`), nil
	}

	if _, err := rc.Fetch("k", fill); !errors.Is(err, boom) {
		t.Fatalf("want fill error, got %v", err)
	}
	// The failure was not cached; the retry fills.
	if _, err := rc.Fetch("k", fill); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls: %d, want 2", calls)
	}
}
