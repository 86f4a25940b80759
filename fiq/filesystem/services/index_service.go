package services

import (
	"context"
	"errors"
	"os"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"
)

// IndexService exposes build, status and clear for a directory's name index.
type IndexService struct {
	engine *indexing.Engine
}

// NewIndexService wraps engine.
func NewIndexService(engine *indexing.Engine) *IndexService {
	return &IndexService{engine: engine}
}

// Rebuild discards the cached index for dir and builds a fresh one.
func (s *IndexService) Rebuild(ctx context.Context, dir string) (*types.RebuildResult, error) {
	store, err := s.engine.Rebuild(ctx, dir)
	if err != nil {
		return nil, err
	}
	return &types.RebuildResult{
		Directory: store.Key,
		Entries:   store.EntryCount(),
		Trigrams:  store.TrigramCount(),
		BuiltAt:   store.BuiltAt,
		CacheFile: s.engine.Cache().Disk().Path(store.Key),
	}, nil
}

// Status reports the resident and on-disk state of dir's index without building one.
func (s *IndexService) Status(dir string) (*types.IndexStatus, error) {
	key, err := indexing.CanonicalKey(dir)
	if err != nil {
		return nil, err
	}
	cache := s.engine.Cache()
	status := &types.IndexStatus{
		Directory: key,
		CacheFile: cache.Disk().Path(key),
	}
	if _, err := os.Stat(status.CacheFile); err == nil {
		status.OnDisk = true
	}

	store, ok := cache.Lookup(key)
	if ok {
		status.Resident = true
	} else {
		if !cache.DiskTrusted(key) {
			// invalidated in this process; the file is stale until the next build
			return status, nil
		}
		var loadErr error
		store, loadErr = cache.Disk().Load(key)
		if loadErr != nil {
			if errors.Is(loadErr, indexing.ErrExpired) || errors.Is(loadErr, indexing.ErrNotFound) || errors.Is(loadErr, indexing.ErrCorrupt) {
				return status, nil
			}
			return nil, loadErr
		}
	}

	status.Valid = true
	built := store.BuiltAt
	expires := store.ExpiresAt(cache.TTL())
	status.BuiltAt = &built
	status.ExpiresAt = &expires
	status.Entries = store.EntryCount()
	status.Trigrams = store.TrigramCount()
	return status, nil
}

// Clear drops the resident index for dir and deletes its cache file.
func (s *IndexService) Clear(dir string) (string, error) {
	key, err := indexing.CanonicalKey(dir)
	if err != nil {
		return "", err
	}
	cache := s.engine.Cache()
	cache.Invalidate(key)
	if err := cache.Disk().Remove(key); err != nil {
		return "", err
	}
	return key, nil
}
