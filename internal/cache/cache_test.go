package cache

import (
	"testing"
	"time"
)

func TestCache_GetPut(t *testing.T) {
	c := New[string](5*time.Second, 100)

	c.Put("AAPL", "payload")

	got, ok := c.Get("AAPL")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "payload" {
		t.Errorf("unexpected payload: %s", got)
	}
}

func TestCache_Miss(t *testing.T) {
	c := New[string](5*time.Second, 100)

	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected cache miss for nonexistent key")
	}
}

func TestCache_KeyCanonicalization(t *testing.T) {
	c := New[string](5*time.Second, 100)

	c.Put("aapl", "payload")

	// Different case and surrounding whitespace hit the same entry
	for _, key := range []string{"AAPL", " aapl ", "Aapl"} {
		got, ok := c.Get(key)
		if !ok {
			t.Fatalf("expected cache hit for key %q", key)
		}
		if got != "payload" {
			t.Errorf("unexpected payload for key %q: %s", key, got)
		}
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	c := New[string](60*time.Second, 100)

	now := time.Now()
	c.now = func() time.Time { return now }

	c.Put("AAPL", "payload")

	// Should be found immediately
	if _, ok := c.Get("AAPL"); !ok {
		t.Fatal("expected cache hit before expiry")
	}

	// Advance past the TTL: entry was never removed but must read as absent
	now = now.Add(61 * time.Second)

	if _, ok := c.Get("AAPL"); ok {
		t.Error("expected cache miss after TTL expiration")
	}

	// Expired entry is removed lazily by the failed lookup
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be deleted, %d entries remain", c.Len())
	}
}

func TestCache_PutOverwrites(t *testing.T) {
	c := New[string](5*time.Second, 100)

	c.Put("AAPL", "old")
	c.Put("AAPL", "new")

	got, ok := c.Get("AAPL")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "new" {
		t.Errorf("expected overwritten payload, got %s", got)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry after overwrite, got %d", c.Len())
	}
}

func TestCache_MaxEntries(t *testing.T) {
	c := New[string](5*time.Second, 3)

	c.Put("key1", "data")
	c.Put("key2", "data")
	c.Put("key3", "data")

	for _, k := range []string{"key1", "key2", "key3"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to be in cache", k)
		}
	}

	// Adding a 4th should evict the oldest (key1)
	c.Put("key4", "data")

	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be evicted (oldest entry)")
	}
	if _, ok := c.Get("key4"); !ok {
		t.Error("expected key4 to be in cache")
	}
}

func TestCache_UnboundedWhenZeroCapacity(t *testing.T) {
	c := New[string](5*time.Second, 0)

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		c.Put(k, "data")
	}

	if c.Len() != 5 {
		t.Errorf("expected 5 entries with no capacity bound, got %d", c.Len())
	}
}
