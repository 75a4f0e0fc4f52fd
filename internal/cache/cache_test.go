package cache

import (
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func openTestStore(t *testing.T, now *time.Time) *Store {
	t.Helper()

	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return *now
	}

	s, err := Open(filepath.Join(t.TempDir(), "cache.db"), 24*time.Hour, WithClock(clock))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKeyNormalization(t *testing.T) {
	t.Parallel()

	if Key(`"CARREFOUR" recrutement`) != Key(`"carrefour"  RECRUTEMENT`) {
		t.Error("equivalent queries must share a key")
	}
	if Key("a", "b") == Key("ab") {
		t.Error("part boundaries must affect the key")
	}
}

func TestRoundTripWithinTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)

	key := Key("carrefour recrutement")
	if err := s.Put(key, "duckduckgo", []byte(`{"results":[]}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(23 * time.Hour)
	payload, backend, hit, err := s.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !hit {
		t.Fatal("want hit within ttl")
	}
	if backend != "duckduckgo" {
		t.Errorf("backend = %q, want duckduckgo", backend)
	}
	if string(payload) != `{"results":[]}` {
		t.Errorf("payload = %q", payload)
	}
}

func TestExpiredEntryIsMissAndEvicted(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)

	key := Key("stale query")
	if err := s.Put(key, "bing", []byte("payload")); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(24 * time.Hour)
	_, _, hit, err := s.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if hit {
		t.Fatal("read at exactly ttl must miss")
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("expired entry not evicted, %d entries remain", stats.Entries)
	}
}

func TestPutReplacesExisting(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)

	key := Key("some query")
	if err := s.Put(key, "bing", []byte("old")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(key, "google", []byte("new")); err != nil {
		t.Fatalf("replace: %v", err)
	}

	payload, backend, hit, err := s.Get(key)
	if err != nil || !hit {
		t.Fatalf("get: hit=%v err=%v", hit, err)
	}
	if string(payload) != "new" || backend != "google" {
		t.Errorf("got (%q, %q), want (new, google)", payload, backend)
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)

	if err := s.Put(Key("old"), "bing", []byte("a")); err != nil {
		t.Fatal(err)
	}
	now = now.Add(72 * time.Hour)
	if err := s.Put(Key("fresh"), "bing", []byte("b")); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Sweep(48 * time.Hour)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Entries != 1 {
		t.Errorf("entries = %d, want 1", stats.Entries)
	}
}

func TestStatsCounters(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := openTestStore(t, &now)

	if _, _, _, err := s.Get(Key("absent")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(Key("present"), "bing", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := s.Get(Key("present")); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("hits=%d misses=%d, want 1/1", stats.Hits, stats.Misses)
	}
}
