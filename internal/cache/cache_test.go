package cache

import (
	"testing"
	"time"
)

func TestStore_SetAndGet(t *testing.T) {
	store := NewStore(Config{TTL: time.Minute})
	defer store.Stop()

	store.Set("books:all", []string{"a", "b"})

	value, ok := store.Get("books:all")
	if !ok {
		t.Fatal("expected cache hit")
	}
	books, ok := value.([]string)
	if !ok || len(books) != 2 {
		t.Errorf("expected cached slice of 2, got %v", value)
	}
}

func TestStore_Get_MissingKey(t *testing.T) {
	store := NewStore(Config{TTL: time.Minute})
	defer store.Stop()

	if _, ok := store.Get("nope"); ok {
		t.Error("expected cache miss for missing key")
	}
}

func TestStore_Get_ExpiredEntry(t *testing.T) {
	store := NewStore(Config{TTL: 10 * time.Millisecond, Cleanup: time.Hour})
	defer store.Stop()

	store.Set("books:all", "stale")
	time.Sleep(20 * time.Millisecond)

	if _, ok := store.Get("books:all"); ok {
		t.Error("expected expired entry to be a miss")
	}
}

func TestStore_Invalidate(t *testing.T) {
	store := NewStore(Config{TTL: time.Minute})
	defer store.Stop()

	store.Set("books:all", "a")
	store.Set("users:all", "b")

	store.Invalidate("books:all", "users:all")

	if _, ok := store.Get("books:all"); ok {
		t.Error("expected books:all to be invalidated")
	}
	if _, ok := store.Get("users:all"); ok {
		t.Error("expected users:all to be invalidated")
	}
}

func TestStore_Invalidate_UnknownKeyIsNoop(t *testing.T) {
	store := NewStore(Config{TTL: time.Minute})
	defer store.Stop()

	store.Set("books:all", "a")
	store.Invalidate("unknown")

	if _, ok := store.Get("books:all"); !ok {
		t.Error("expected unrelated entry to survive invalidation")
	}
}

func TestStore_Set_OverwritesExisting(t *testing.T) {
	store := NewStore(Config{TTL: time.Minute})
	defer store.Stop()

	store.Set("books:all", "old")
	store.Set("books:all", "new")

	value, ok := store.Get("books:all")
	if !ok || value != "new" {
		t.Errorf("expected overwritten value, got %v", value)
	}
}

func TestStore_CleanupRemovesExpired(t *testing.T) {
	store := NewStore(Config{TTL: 5 * time.Millisecond, Cleanup: 10 * time.Millisecond})
	defer store.Stop()

	store.Set("books:all", "a")

	// Wait for the sweeper to run at least once past expiry
	deadline := time.Now().Add(500 * time.Millisecond)
	for store.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if store.Len() != 0 {
		t.Errorf("expected sweeper to remove expired entries, %d remain", store.Len())
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(Config{TTL: time.Minute})
	defer store.Stop()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				store.Set("key", j)
				store.Get("key")
				store.Invalidate("key")
			}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
