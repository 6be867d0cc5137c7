package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
	if c.Evictions() != 1 {
		t.Errorf("Evictions() = %d, want 1", c.Evictions())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](4, time.Minute).WithClock(clock.Now)
	c.Set("k", "v")

	clock.t = clock.t.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to be gone")
	}

	c.Set("x", "1")
	c.Set("y", "2")
	clock.t = clock.t.Add(2 * time.Minute)
	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
	if c.Evictions() != 3 {
		t.Errorf("Evictions() = %d, want 3", c.Evictions())
	}
}

func TestClipStore(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewClipStore(2, 10*time.Minute).WithClock(clock.Now)

	clip := store.Put("audio/mpeg", []byte("ID3"))
	if clip.ID == "" {
		t.Fatal("expected clip id")
	}
	if !clip.CreatedAt.Equal(clock.t) {
		t.Errorf("CreatedAt = %v", clip.CreatedAt)
	}

	got, ok := store.Get(clip.ID)
	if !ok || string(got.Data) != "ID3" || got.ContentType != "audio/mpeg" {
		t.Fatalf("Get() = %+v, %v", got, ok)
	}

	store.Release(clip.ID)
	if _, ok := store.Get(clip.ID); ok {
		t.Error("expected released clip to be gone")
	}
}

func TestManager_Sweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewClipStore(4, time.Minute).WithClock(clock.Now)
	store.Put("audio/mpeg", []byte("a"))
	store.Put("audio/mpeg", []byte("b"))

	m := NewManager(nil)
	m.Register(store)
	clock.t = clock.t.Add(time.Hour)

	if n := m.Sweep(); n != 2 {
		t.Errorf("Sweep() = %d, want 2", n)
	}
	m.Stop()
}
