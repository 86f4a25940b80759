package indexing

import (
	"context"
	"path"
	"slices"
	"sort"
	"time"

	roaring "github.com/RoaringBitmap/roaring"
)

// FileRecord holds the attributes the walker reports for one regular file.
type FileRecord struct {
	Path    string    `json:"path"` // absolute
	Name    string    `json:"name"` // base name
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modified"`
}

// ListingProvider lists every file under root, honoring ignore rules.
type ListingProvider interface {
	List(ctx context.Context, root string) ([]FileRecord, error)
}

// ListingFunc adapts a function to ListingProvider.
type ListingFunc func(ctx context.Context, root string) ([]FileRecord, error)

func (f ListingFunc) List(ctx context.Context, root string) ([]FileRecord, error) {
	return f(ctx, root)
}

// IndexStore is an immutable trigram index over the file names of one directory.
// Once built it is shared read-only; rebuilding replaces it wholesale.
type IndexStore struct {
	// Key is the canonical directory the index was built for.
	Key string
	// Names are slash-separated paths relative to Key. Position is the file reference.
	Names   []string
	BuiltAt time.Time

	postings map[Trigram]*roaring.Bitmap
}

// EntryCount is the number of indexed files.
func (s *IndexStore) EntryCount() int { return len(s.Names) }

// TrigramCount is the number of distinct trigram keys.
func (s *IndexStore) TrigramCount() int { return len(s.postings) }

// Name returns the base name of file i.
func (s *IndexStore) Name(i uint32) string { return path.Base(s.Names[i]) }

// Postings returns the sorted file indices containing t, or nil.
func (s *IndexStore) Postings(t Trigram) []uint32 {
	bm, ok := s.postings[t]
	if !ok {
		return nil
	}
	return bm.ToArray()
}

// Trigrams returns every key in ascending byte order.
func (s *IndexStore) Trigrams() []Trigram {
	out := make([]Trigram, 0, len(s.postings))
	for t := range s.postings {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Equal reports whether two stores hold the same key, names, timestamp and postings.
func (s *IndexStore) Equal(o *IndexStore) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Key != o.Key || !s.BuiltAt.Equal(o.BuiltAt) || len(s.Names) != len(o.Names) || len(s.postings) != len(o.postings) {
		return false
	}
	for i := range s.Names {
		if s.Names[i] != o.Names[i] {
			return false
		}
	}
	for t, bm := range s.postings {
		other, ok := o.postings[t]
		if !ok || !slices.Equal(bm.ToArray(), other.ToArray()) {
			return false
		}
	}
	return true
}

// ExpiresAt is BuiltAt plus ttl.
func (s *IndexStore) ExpiresAt(ttl time.Duration) time.Time { return s.BuiltAt.Add(ttl) }

// Match is a verified query hit.
type Match struct {
	Index   uint32 `json:"index"`
	RelPath string `json:"rel_path"`
	Path    string `json:"path"`
	Name    string `json:"name"`
}
