package cache

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultSweepInterval is the minimum time between two sweeps,
// regardless of how often the cache is used.
const DefaultSweepInterval = 48 * time.Hour

// Janitor ages out cache entries that have not been accessed within
// the retention window. It is invoked on every cache interaction and
// throttles itself so full folder scans happen at most once per sweep
// interval. Retention state is owned by the janitor and guarded by a
// mutex, so at most one caller passes the throttle gate per window.
type Janitor struct {
	store      *Store
	retainDays int
	interval   time.Duration

	mu        sync.Mutex
	lastSweep time.Time
}

// NewJanitor creates a janitor for the store. retainDays is the number
// of days an entry may go unused before becoming eligible for
// deletion; 0 disables eviction entirely.
func NewJanitor(store *Store, retainDays int) *Janitor {
	return &Janitor{
		store:      store,
		retainDays: retainDays,
		interval:   DefaultSweepInterval,
	}
}

// SetSweepInterval overrides the minimum interval between sweeps.
func (j *Janitor) SetSweepInterval(d time.Duration) {
	j.mu.Lock()
	j.interval = d
	j.mu.Unlock()
}

// MaybeSweep runs a sweep if eviction is enabled and no sweep has run
// within the sweep interval. It returns the number of files deleted.
func (j *Janitor) MaybeSweep() int {
	if j.retainDays == 0 {
		return 0
	}

	now := time.Now()
	j.mu.Lock()
	if now.Sub(j.lastSweep) <= j.interval {
		j.mu.Unlock()
		return 0
	}
	// Commit the throttle window before scanning, so a slow or failing
	// scan does not cause the next call to immediately rescan.
	j.lastSweep = now
	j.mu.Unlock()

	return j.sweep(now)
}

// Sweep runs a sweep immediately, bypassing the throttle. Eviction
// must still be enabled for anything to be deleted.
func (j *Janitor) Sweep() int {
	if j.retainDays == 0 {
		return 0
	}

	now := time.Now()
	j.mu.Lock()
	j.lastSweep = now
	j.mu.Unlock()

	return j.sweep(now)
}

// sweep deletes every file whose last-modified time is older than the
// retention window. Deletion is best-effort: individual failures are
// logged and skipped, and files removed by a racing process are
// tolerated.
func (j *Janitor) sweep(now time.Time) int {
	entries, err := j.store.List()
	if err != nil {
		log.Warn("Cache sweep could not list entries", "error", err)
		return 0
	}

	maxAge := time.Duration(j.retainDays) * 24 * time.Hour
	deleted := 0
	for _, e := range entries {
		if now.Sub(e.ModTime) <= maxAge {
			continue
		}
		if err := j.store.Remove(e.Path); err != nil {
			log.Warn("Cache sweep could not delete file", "path", e.Path, "error", err)
			continue
		}
		deleted++
	}

	log.Debug("Cache sweep finished", "deleted", deleted, "scanned", len(entries))
	if deleted > 0 {
		log.Info("Cache sweep deleted aged entries", "count", deleted)
	}
	return deleted
}
