package indexing

import (
	"path"
	"strings"
	"time"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/sourcegraph/conc/pool"
)

// parallelBuildThreshold is the name count below which partitioning costs
// more than it saves.
const parallelBuildThreshold = 4096

type partialPostings map[Trigram]*roaring.Bitmap

// Build indexes names serially. Trigrams come from each name's base name.
func Build(key string, names []string, builtAt time.Time) *IndexStore {
	return BuildParallel(key, names, builtAt, 1)
}

// BuildParallel splits names into contiguous partitions, indexes each on its
// own goroutine and merges the partial postings with bitmap union. The
// result does not depend on the worker count.
func BuildParallel(key string, names []string, builtAt time.Time, workers int) *IndexStore {
	store := &IndexStore{
		Key:     key,
		Names:   names,
		BuiltAt: time.Unix(builtAt.Unix(), 0),
	}
	if store.Names == nil {
		store.Names = []string{}
	}

	if workers <= 1 || len(names) < parallelBuildThreshold {
		store.postings = indexRange(names, 0, len(names))
		optimize(store.postings)
		return store
	}

	chunk := (len(names) + workers - 1) / workers
	p := pool.NewWithResults[partialPostings]().WithMaxGoroutines(workers)
	for lo := 0; lo < len(names); lo += chunk {
		hi := min(lo+chunk, len(names))
		p.Go(func() partialPostings {
			return indexRange(names, lo, hi)
		})
	}

	merged := make(partialPostings)
	for _, part := range p.Wait() {
		for t, bm := range part {
			if acc, ok := merged[t]; ok {
				acc.Or(bm)
				continue
			}
			merged[t] = bm
		}
	}
	optimize(merged)
	store.postings = merged
	return store
}

// indexRange builds postings for names[lo:hi] using absolute indices.
func indexRange(names []string, lo, hi int) partialPostings {
	out := make(partialPostings)
	var scratch []Trigram
	for i := lo; i < hi; i++ {
		base := strings.ToLower(path.Base(names[i]))
		scratch = appendTrigrams(scratch[:0], base)
		for _, t := range scratch {
			bm, ok := out[t]
			if !ok {
				bm = roaring.New()
				out[t] = bm
			}
			bm.Add(uint32(i))
		}
	}
	return out
}

func optimize(postings partialPostings) {
	for _, bm := range postings {
		bm.RunOptimize()
	}
}

// namesFromRecords converts walker output into index names relative to root.
func namesFromRecords(root string, records []FileRecord) []string {
	names := make([]string, 0, len(records))
	prefix := strings.TrimSuffix(toSlash(root), "/") + "/"
	for _, r := range records {
		p := toSlash(r.Path)
		names = append(names, strings.TrimPrefix(p, prefix))
	}
	return names
}
