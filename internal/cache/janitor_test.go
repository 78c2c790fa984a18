package cache

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

// writeAged creates an entry and backdates its files by age.
func writeAged(t *testing.T, store *Store, key, format string, age time.Duration) string {
	t.Helper()
	path, err := store.Write(key, format, "text for "+key, strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	old := time.Now().Add(-age)
	for _, p := range []string{path, store.sidecarPath(key)} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatalf("Chtimes failed: %v", err)
		}
	}
	return path
}

func TestJanitor_DeletesOnlyAgedEntries(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	const retainDays = 5

	aged := writeAged(t, store, "Amy_11111111111111111111111111111111", "mp3",
		(retainDays+1)*24*time.Hour)
	fresh := writeAged(t, store, "Amy_22222222222222222222222222222222", "mp3",
		(retainDays-1)*24*time.Hour)

	j := NewJanitor(store, retainDays)
	deleted := j.MaybeSweep()

	// Aged audio plus its sidecar.
	if deleted != 2 {
		t.Errorf("Expected 2 deletions, got %d", deleted)
	}
	if _, err := os.Stat(aged); !os.IsNotExist(err) {
		t.Error("Aged entry should have been deleted")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("Fresh entry should survive the sweep: %v", err)
	}
}

func TestJanitor_SweepsAreThrottled(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	j := NewJanitor(store, 1)

	writeAged(t, store, "Amy_11111111111111111111111111111111", "mp3", 48*time.Hour)
	if deleted := j.MaybeSweep(); deleted != 2 {
		t.Fatalf("First sweep expected 2 deletions, got %d", deleted)
	}

	// A second eligible entry appears inside the same throttle window.
	survivor := writeAged(t, store, "Amy_22222222222222222222222222222222", "mp3", 48*time.Hour)
	if deleted := j.MaybeSweep(); deleted != 0 {
		t.Errorf("Throttled sweep deleted %d files", deleted)
	}
	if _, err := os.Stat(survivor); err != nil {
		t.Errorf("Entry deleted despite throttle: %v", err)
	}

	// Once the window has elapsed the sweep runs again.
	j.mu.Lock()
	j.lastSweep = time.Now().Add(-49 * time.Hour)
	j.mu.Unlock()
	if deleted := j.MaybeSweep(); deleted != 2 {
		t.Errorf("Post-window sweep expected 2 deletions, got %d", deleted)
	}
}

func TestJanitor_DisabledNeverDeletes(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	path := writeAged(t, store, "Amy_11111111111111111111111111111111", "mp3",
		365*24*time.Hour)

	j := NewJanitor(store, 0)
	if deleted := j.MaybeSweep(); deleted != 0 {
		t.Errorf("Disabled janitor deleted %d files", deleted)
	}
	if deleted := j.Sweep(); deleted != 0 {
		t.Errorf("Disabled forced sweep deleted %d files", deleted)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Entry deleted with eviction disabled: %v", err)
	}
}

func TestJanitor_ForcedSweepBypassesThrottle(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	j := NewJanitor(store, 1)

	// Exhaust the throttle window.
	j.MaybeSweep()

	writeAged(t, store, "Amy_11111111111111111111111111111111", "mp3", 48*time.Hour)
	if deleted := j.Sweep(); deleted != 2 {
		t.Errorf("Forced sweep expected 2 deletions, got %d", deleted)
	}
}

func TestJanitor_ConcurrentCallersRunOneSweep(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	j := NewJanitor(store, 1)

	writeAged(t, store, "Amy_11111111111111111111111111111111", "mp3", 48*time.Hour)

	results := make(chan int, 16)
	for i := 0; i < 16; i++ {
		go func() {
			results <- j.MaybeSweep()
		}()
	}

	total := 0
	for i := 0; i < 16; i++ {
		select {
		case n := <-results:
			total += n
		case <-time.After(5 * time.Second):
			t.Fatal("Test timed out")
		}
	}

	// Exactly one caller passes the throttle gate; the entry and its
	// sidecar are deleted once.
	if total != 2 {
		t.Errorf("Expected 2 deletions across all callers, got %d", total)
	}
}

func TestJanitor_SweepCountsManyEntries(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	j := NewJanitor(store, 2)

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("Amy_%032d", i)
		writeAged(t, store, key, "mp3", 100*24*time.Hour)
	}

	if deleted := j.Sweep(); deleted != 10 {
		t.Errorf("Expected 10 deletions (5 audio + 5 sidecars), got %d", deleted)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty folder, found %d files", len(entries))
	}
}
