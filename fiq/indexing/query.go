package indexing

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
)

// Engine answers name-glob queries from the trigram index.
type Engine struct {
	cache  *Manager
	lister ListingProvider
	log    zerolog.Logger
}

// NewEngine wires a query engine to a cache manager and the walker that feeds it.
func NewEngine(cache *Manager, lister ListingProvider, log zerolog.Logger) *Engine {
	return &Engine{cache: cache, lister: lister, log: log}
}

// Cache returns the manager backing the engine.
func (e *Engine) Cache() *Manager { return e.cache }

// ValidatePattern rejects globs that cannot be matched against a base name.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("%w: empty pattern", ErrMalformedPattern)
	}
	if strings.ContainsRune(pattern, '/') {
		return fmt.Errorf("%w: %q: patterns match file names and cannot contain '/'", ErrMalformedPattern, pattern)
	}
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("%w: %q", ErrMalformedPattern, pattern)
	}
	return nil
}

// Resolve returns every file under dir whose base name matches pattern,
// in index order. It returns ErrUnindexable, without touching the index,
// when the pattern lacks a literal run of MinLiteralRun bytes.
func (e *Engine) Resolve(ctx context.Context, dir, pattern string) ([]Match, error) {
	matches, _, err := e.ResolveIn(ctx, dir, pattern)
	return matches, err
}

// ResolveIn is Resolve that also returns the index the matches came from.
func (e *Engine) ResolveIn(ctx context.Context, dir, pattern string) ([]Match, *IndexStore, error) {
	if err := ValidatePattern(pattern); err != nil {
		return nil, nil, err
	}
	if _, ok := ExtractLiteralRun(pattern); !ok {
		return nil, nil, ErrUnindexable
	}
	tris := queryTrigrams(pattern)
	if len(tris) == 0 {
		return nil, nil, ErrUnindexable
	}

	key, err := CanonicalKey(dir)
	if err != nil {
		return nil, nil, err
	}
	store, err := e.cache.GetOrBuild(ctx, key, e.lister)
	if err != nil {
		return nil, nil, err
	}

	candidates := Intersect(store, tris)
	matches := make([]Match, 0, candidates.GetCardinality())
	it := candidates.Iterator()
	for it.HasNext() {
		id := it.Next()
		name := store.Name(id)
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrMalformedPattern, err)
		}
		if !ok {
			continue
		}
		rel := store.Names[id]
		matches = append(matches, Match{
			Index:   id,
			RelPath: rel,
			Path:    filepath.Join(store.Key, filepath.FromSlash(rel)),
			Name:    name,
		})
	}

	e.log.Debug().
		Str("dir", key).
		Str("pattern", pattern).
		Uint64("candidates", candidates.GetCardinality()).
		Int("matches", len(matches)).
		Msg("Index query")
	return matches, store, nil
}

// Rebuild discards any cached index for dir and builds a fresh one.
func (e *Engine) Rebuild(ctx context.Context, dir string) (*IndexStore, error) {
	key, err := CanonicalKey(dir)
	if err != nil {
		return nil, err
	}
	e.cache.Invalidate(key)
	return e.cache.GetOrBuild(ctx, key, e.lister)
}

// Intersect returns the files whose names contain every trigram in tris.
// Lists are intersected smallest first and the loop stops once the running
// result is empty.
func Intersect(store *IndexStore, tris []Trigram) *roaring.Bitmap {
	if len(tris) == 0 {
		return roaring.New()
	}
	lists := make([]*roaring.Bitmap, 0, len(tris))
	for _, t := range tris {
		bm, ok := store.postings[t]
		if !ok {
			return roaring.New()
		}
		lists = append(lists, bm)
	}
	sort.Slice(lists, func(i, j int) bool {
		return lists[i].GetCardinality() < lists[j].GetCardinality()
	})

	acc := lists[0].Clone()
	for _, bm := range lists[1:] {
		if acc.IsEmpty() {
			break
		}
		acc.And(bm)
	}
	return acc
}
