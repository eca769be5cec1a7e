package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCacheGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("expected a=1, got %q %v", v, ok)
	}
	c.Set("a", "2")
	if v, _ := c.Get("a"); v != "2" {
		t.Fatalf("expected overwrite, got %q", v)
	}
	if c.Size() != 1 {
		t.Fatalf("expected size 1, got %d", c.Size())
	}
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected a deleted")
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // b becomes the oldest
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatalf("expected b evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("expected %s retained", k)
		}
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("c", "3")

	if removed := c.CleanExpired(); removed != 2 {
		t.Fatalf("expected 2 expired entries, got %d", removed)
	}
	if _, ok := c.Get("c"); !ok {
		t.Fatalf("expected fresh entry to survive")
	}
	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := c.Get("c"); ok {
		t.Fatalf("expected c to expire on read")
	}
}

func TestManagerCleanAll(t *testing.T) {
	a, clockA := newTestCache(10, time.Minute)
	b, clockB := newTestCache(10, time.Minute)
	a.Set("x", "1")
	b.Set("y", "2")
	b.Set("z", "3")
	clockA.t = clockA.t.Add(time.Hour)
	clockB.t = clockB.t.Add(time.Hour)

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)
	if n := m.CleanAll(); n != 3 {
		t.Fatalf("expected 3 removed, got %d", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}
