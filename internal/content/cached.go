package content

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/tilog/internal/cache"
	"github.com/starford/tilog/internal/metrics"
	"github.com/starford/tilog/internal/models"
)

// Defaults for the build-time cache.
const (
	DefaultCacheTTL     = 5 * time.Minute
	DefaultLockStale    = 5 * time.Second
	DefaultLockWait     = 10 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// CachedOptions wires the collaborators of a Cached source.
type CachedOptions struct {
	// Memory is the in-process cache. Required.
	Memory *cache.Memory[[]models.RawNote]
	// Disk is the cache shared with other processes. Nil disables it.
	Disk *cache.File[[]models.RawNote]
	// Lock guards rebuilds. Nil means an in-process MemLock.
	Lock         cache.Locker
	Clock        cache.Clock
	LockWait     time.Duration
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Cached serves FetchValid from the build-time caches and rebuilds them
// under an advisory lock so that concurrent workers scan the directory once.
type Cached struct {
	src      Source
	mem      *cache.Memory[[]models.RawNote]
	disk     *cache.File[[]models.RawNote]
	lock     cache.Locker
	clock    cache.Clock
	lockWait time.Duration
	poll     time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	// generation is bumped by Invalidate. A scan started under an older
	// generation is returned to its caller but never cached.
	generation atomic.Uint64
}

// NewCached wraps src with the build-time caches.
func NewCached(src Source, opts CachedOptions) *Cached {
	c := &Cached{
		src:      src,
		mem:      opts.Memory,
		disk:     opts.Disk,
		lock:     opts.Lock,
		clock:    opts.Clock,
		lockWait: opts.LockWait,
		poll:     opts.PollInterval,
		logger:   opts.Logger,
		metrics:  metrics.Default(),
	}
	if c.mem == nil {
		c.mem = cache.NewMemory[[]models.RawNote](DefaultCacheTTL, opts.Clock)
	}
	if c.lock == nil {
		c.lock = &cache.MemLock{}
	}
	if c.clock == nil {
		c.clock = cache.SystemClock
	}
	if c.lockWait <= 0 {
		c.lockWait = DefaultLockWait
	}
	if c.poll <= 0 {
		c.poll = DefaultPollInterval
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// FetchValid returns the valid raw notes, from cache when possible.
func (c *Cached) FetchValid(ctx context.Context) ([]models.RawNote, error) {
	if notes, ok := c.mem.Get(); ok {
		c.lookup("memory", "hit")
		return notes, nil
	}
	c.lookup("memory", "miss")

	if notes, ok := c.loadDisk(); ok {
		c.mem.Put(notes)
		return notes, nil
	}

	deadline := c.clock.Now().Add(c.lockWait)
	for {
		acquired, err := c.lock.TryAcquire()
		if err != nil {
			c.logger.Warn("cache: lock unavailable, reading directly", slog.String("error", err.Error()))
			break
		}
		if acquired {
			return c.rebuildLocked(ctx)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.poll):
		}

		// The holder may live in this process.
		if notes, ok := c.mem.Get(); ok {
			return notes, nil
		}
		if notes, ok := c.loadDisk(); ok {
			c.mem.Put(notes)
			return notes, nil
		}
		if !c.clock.Now().Before(deadline) {
			c.metrics.LockWaitTimeouts.Inc()
			c.logger.Warn("cache: lock wait timed out, reading directly",
				slog.Duration("waited", c.lockWait))
			break
		}
	}

	gen := c.generation.Load()
	notes, err := c.src.FetchValid(ctx)
	if err != nil {
		return nil, err
	}
	c.metrics.CacheRebuildsTotal.Inc()
	if c.current(gen) {
		c.mem.Put(notes)
	}
	return notes, nil
}

// Invalidate clears the in-process and on-disk caches. Scans already in
// flight do not repopulate them.
func (c *Cached) Invalidate() error {
	c.generation.Add(1)
	c.mem.Invalidate()
	if c.disk == nil {
		return nil
	}
	return c.disk.Clear()
}

func (c *Cached) rebuildLocked(ctx context.Context) ([]models.RawNote, error) {
	defer func() {
		if err := c.lock.Release(); err != nil {
			c.logger.Warn("cache: release lock failed", slog.String("error", err.Error()))
		}
	}()

	// Another worker may have finished between our miss and the acquire.
	if notes, ok := c.loadDisk(); ok {
		c.mem.Put(notes)
		return notes, nil
	}

	gen := c.generation.Load()
	notes, err := c.src.FetchValid(ctx)
	if err != nil {
		return nil, err
	}
	c.metrics.CacheRebuildsTotal.Inc()

	if !c.current(gen) {
		c.logger.Debug("cache: invalidated during rebuild, result not cached")
		return notes, nil
	}
	if c.disk != nil {
		if err := c.disk.Store(notes); err != nil {
			c.logger.Warn("cache: store failed", slog.String("path", c.disk.Path()), slog.String("error", err.Error()))
		}
	}
	c.mem.Put(notes)
	return notes, nil
}

func (c *Cached) current(gen uint64) bool {
	return c.generation.Load() == gen
}

func (c *Cached) loadDisk() ([]models.RawNote, bool) {
	if c.disk == nil {
		return nil, false
	}
	notes, ok, err := c.disk.Load()
	if err != nil {
		c.logger.Warn("cache: ignoring unusable cache file",
			slog.String("path", c.disk.Path()), slog.String("error", err.Error()))
	}
	if !ok {
		c.lookup("disk", "miss")
		return nil, false
	}
	c.lookup("disk", "hit")
	return notes, true
}

func (c *Cached) lookup(layer, result string) {
	c.metrics.CacheLookupsTotal.WithLabelValues(layer, result).Inc()
}
