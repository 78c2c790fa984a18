package cache

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// Synthesizer produces an audio stream for a piece of text. Output is
// assumed deterministic for identical inputs; the cache's correctness
// depends on that.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice, format string) (io.ReadCloser, error)
}

// Stats holds cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	LastSweep time.Time
}

// Cache is the read-through entry point. On a hit it refreshes the
// entry's last-access time and returns the existing file; on a miss it
// invokes the synthesizer, persists the result, and returns the new
// file. Every interaction gives the janitor a chance to sweep.
type Cache struct {
	store   *Store
	janitor *Janitor
	synth   Synthesizer

	// Concurrent misses for the same key share one synthesis+write.
	flight singleflight.Group

	mu    sync.Mutex
	stats Stats
}

// New creates a cache over dir with the given retention window in days
// (0 disables eviction). synth fills misses and may be nil for a
// lookup-only cache.
func New(dir string, retainDays int, synth Synthesizer) (*Cache, error) {
	store, err := NewStore(dir)
	if err != nil {
		return nil, err
	}
	return &Cache{
		store:   store,
		janitor: NewJanitor(store, retainDays),
		synth:   synth,
	}, nil
}

// Get returns the path of the cached audio file for the given text,
// voice label, and audio format, synthesizing and persisting it first
// if absent. The returned path is ready to be streamed by the caller;
// audio contents are never loaded into memory here.
func (c *Cache) Get(ctx context.Context, text, voice, format string) (string, error) {
	key, err := DeriveKey(text, voice)
	if err != nil {
		return "", err
	}

	v, err, _ := c.flight.Do(key+"."+strings.ToLower(format), func() (interface{}, error) {
		return c.lookup(ctx, key, text, voice, format)
	})

	if n := c.janitor.MaybeSweep(); n > 0 {
		c.mu.Lock()
		c.stats.Evictions += int64(n)
		c.stats.LastSweep = time.Now()
		c.mu.Unlock()
	}

	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cache) lookup(ctx context.Context, key, text, voice, format string) (string, error) {
	if c.store.Exists(key, format) {
		c.store.Touch(key, format)
		c.count(func(s *Stats) { s.Hits++ })
		log.Debug("Cache hit", "key", key, "format", format)
		return c.store.Path(key, format), nil
	}

	c.count(func(s *Stats) { s.Misses++ })
	if c.synth == nil {
		return "", ErrNoSynthesizer
	}

	log.Debug("Cache miss, synthesizing", "key", key, "format", format)
	stream, err := c.synth.Synthesize(ctx, text, voice, format)
	if err != nil {
		return "", fmt.Errorf("synthesis failed: %w", err)
	}
	defer stream.Close()

	path, err := c.store.Write(key, format, text, stream)
	if err != nil {
		return "", fmt.Errorf("failed to cache %s: %w", key, err)
	}
	return path, nil
}

// Purge runs a forced sweep, bypassing the throttle, and returns the
// number of files deleted.
func (c *Cache) Purge() int {
	n := c.janitor.Sweep()
	if n > 0 {
		c.mu.Lock()
		c.stats.Evictions += int64(n)
		c.stats.LastSweep = time.Now()
		c.mu.Unlock()
	}
	return n
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Store exposes the underlying artifact store for enumeration.
func (c *Cache) Store() *Store {
	return c.store
}

// SetSweepInterval overrides the janitor's minimum interval between
// sweeps.
func (c *Cache) SetSweepInterval(d time.Duration) {
	c.janitor.SetSweepInterval(d)
}

func (c *Cache) count(f func(*Stats)) {
	c.mu.Lock()
	f(&c.stats)
	c.mu.Unlock()
}
