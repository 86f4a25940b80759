package indexing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/armon/go-radix"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// cacheEntry is one resident index and its expiry.
type cacheEntry struct {
	store     *IndexStore
	expiresAt time.Time
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// TTL bounds how long a built index is served. Resident entries expire
	// TTL after the build started; entries loaded from disk expire TTL after
	// the recorded BuiltAt, which has second precision.
	TTL          time.Duration
	CacheDir     string
	BuildWorkers int
	// Now replaces the wall clock; tests use it to step across the TTL.
	Now    func() time.Time
	Logger zerolog.Logger
}

// Manager is the process-wide registry of built indexes. It serves resident
// entries without blocking, falls back to the disk tier, and lets at most one
// build per directory key run at a time.
type Manager struct {
	mu      sync.RWMutex
	entries *radix.Tree // key -> *cacheEntry
	gens    map[string]uint64
	// keys whose disk file must not be trusted until the next build
	bypassDisk map[string]struct{}

	group  singleflight.Group
	disk   *DiskCache
	ttl    time.Duration
	now    func() time.Time
	worker int
	log    zerolog.Logger

	builds atomic.Int64
}

// NewManager creates an empty registry.
func NewManager(opts ManagerOptions) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		entries:    radix.New(),
		gens:       make(map[string]uint64),
		bypassDisk: make(map[string]struct{}),
		disk:       &DiskCache{Root: opts.CacheDir, TTL: ttl, Now: now},
		ttl:        ttl,
		now:        now,
		worker:     max(opts.BuildWorkers, 1),
		log:        opts.Logger,
	}
}

// TTL is the lifetime of a cache entry.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Disk exposes the persistence tier.
func (m *Manager) Disk() *DiskCache { return m.disk }

// Builds is the number of index builds started by this manager.
func (m *Manager) Builds() int64 { return m.builds.Load() }

// Lookup returns the resident entry for key if it has not expired.
func (m *Manager) Lookup(key string) (*IndexStore, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.residentLocked(key)
}

func (m *Manager) residentLocked(key string) (*IndexStore, bool) {
	v, ok := m.entries.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(*cacheEntry)
	if !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.store, true
}

// GetOrBuild returns a valid index for key: from memory, else from disk,
// else from a fresh build. Concurrent callers for one key share one build.
// A caller whose ctx ends stops waiting; the build itself still completes
// and populates the cache.
func (m *Manager) GetOrBuild(ctx context.Context, key string, lister ListingProvider) (*IndexStore, error) {
	if store, ok := m.Lookup(key); ok {
		return store, nil
	}

	ch := m.group.DoChan(key, func() (any, error) {
		return m.loadOrBuild(context.WithoutCancel(ctx), key, lister)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*IndexStore), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// loadOrBuild runs inside the single-flight call for key.
func (m *Manager) loadOrBuild(ctx context.Context, key string, lister ListingProvider) (*IndexStore, error) {
	m.mu.RLock()
	// another flight may have installed an entry after our memory check
	if store, ok := m.residentLocked(key); ok {
		m.mu.RUnlock()
		return store, nil
	}
	_, bypass := m.bypassDisk[key]
	gen := m.gens[key]
	m.mu.RUnlock()

	if !bypass {
		store, err := m.disk.Load(key)
		switch {
		case err == nil:
			m.install(key, gen, store, store.ExpiresAt(m.ttl))
			m.log.Debug().Str("dir", key).Time("built_at", store.BuiltAt).Msg("Index loaded from disk")
			return store, nil
		case errors.Is(err, ErrNotFound):
		case errors.Is(err, ErrExpired):
			m.log.Debug().Str("dir", key).Msg("Index on disk expired, rebuilding")
		default:
			m.log.Warn().Err(err).Str("dir", key).Msg("Index on disk unreadable, rebuilding")
		}
	}

	return m.build(ctx, key, gen, lister)
}

func (m *Manager) build(ctx context.Context, key string, gen uint64, lister ListingProvider) (*IndexStore, error) {
	m.builds.Add(1)
	start := time.Now()

	records, err := lister.List(ctx, key)
	if err != nil {
		if errors.Is(err, ErrListingFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrListingFailed, key, err)
	}

	builtAt := m.now()
	store := BuildParallel(key, namesFromRecords(key, records), builtAt, m.worker)

	if !m.persist(key, gen, store) {
		m.log.Debug().Str("dir", key).Msg("Index invalidated during build, result not cached")
		return store, nil
	}
	m.install(key, gen, store, builtAt.Add(m.ttl))

	m.log.Info().
		Str("dir", key).
		Int("entries", store.EntryCount()).
		Int("trigrams", store.TrigramCount()).
		Dur("duration", time.Since(start)).
		Msg("Index built")
	return store, nil
}

// persist saves store unless key was invalidated after the flight began,
// and reports whether the generation still matched. The read lock is held
// across the write so an invalidation cannot slip in between the check and
// the save and be overwritten by this older result.
func (m *Manager) persist(key string, gen uint64, store *IndexStore) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.gens[key] != gen {
		return false
	}
	if err := m.disk.Save(store); err != nil {
		m.log.Warn().Err(err).Str("dir", key).Msg("Index not persisted, keeping in-memory copy")
	}
	return true
}

// install publishes store unless key was invalidated after the flight began.
func (m *Manager) install(key string, gen uint64, store *IndexStore, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[key] != gen {
		return
	}
	m.entries.Insert(key, &cacheEntry{store: store, expiresAt: expiresAt})
	delete(m.bypassDisk, key)
}

// DiskTrusted reports whether the disk file for key may be served. It is
// false after an invalidation until the next successful build.
func (m *Manager) DiskTrusted(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, bypass := m.bypassDisk[key]
	return !bypass
}

// Invalidate drops the resident entry for key and forces the next
// GetOrBuild to rebuild from a fresh listing, ignoring the disk tier.
func (m *Manager) Invalidate(key string) {
	m.mu.Lock()
	m.invalidateLocked(key)
	m.mu.Unlock()
	m.group.Forget(key)
}

func (m *Manager) invalidateLocked(key string) {
	m.entries.Delete(key)
	m.gens[key]++
	m.bypassDisk[key] = struct{}{}
}

// InvalidateTree invalidates every key equal to dir, above it or below it,
// whether resident or only on disk, and deletes their cache files so other
// processes sharing the cache directory rebuild as well.
func (m *Manager) InvalidateTree(dir string) []string {
	diskKeys, err := m.disk.Keys()
	if err != nil {
		m.log.Warn().Err(err).Str("dir", dir).Msg("Cannot list cache files, invalidating resident indexes only")
	}

	m.mu.Lock()
	var keys []string
	seen := make(map[string]struct{})
	add := func(k string) {
		if _, dup := seen[k]; dup {
			return
		}
		if !within(k, dir) && !within(dir, k) {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
		m.invalidateLocked(k)
	}
	collect := func(k string, _ any) bool {
		add(k)
		return false
	}
	m.entries.WalkPath(dir, collect)
	m.entries.WalkPrefix(dir, collect)
	for _, k := range diskKeys {
		add(k)
	}
	// removed under the lock so a build persisting a newer generation
	// cannot have its file deleted
	for _, k := range keys {
		if err := m.disk.Remove(k); err != nil {
			m.log.Warn().Err(err).Str("dir", k).Msg("Failed to remove invalidated cache file")
		}
	}
	m.mu.Unlock()

	for _, k := range keys {
		m.group.Forget(k)
	}
	return keys
}

// Keys lists the resident directory keys in order.
func (m *Manager) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, m.entries.Len())
	m.entries.Walk(func(k string, _ any) bool {
		keys = append(keys, k)
		return false
	})
	return keys
}
