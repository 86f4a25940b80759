package services

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// DuplicateService finds files with identical content
type DuplicateService struct {
	walker  FileWalker
	workers int
	log     zerolog.Logger
}

// NewDuplicateService creates a duplicate finder hashing on up to workers goroutines.
func NewDuplicateService(walker FileWalker, workers int, log zerolog.Logger) *DuplicateService {
	return &DuplicateService{walker: walker, workers: max(workers, 1), log: log}
}

// hashed is one file and the digest computed for it in a pass.
type hashed struct {
	rec  indexing.FileRecord
	hash string
	ok   bool
}

// Find groups files of at least opts.MinSize bytes by size, narrows each
// group by a hash of the first opts.PartialBytes, then confirms with a
// full SHA-256.
func (d *DuplicateService) Find(ctx context.Context, dir string, opts options.DuplicatesOptions) (*types.DuplicatesResult, error) {
	if err := common.ValidateDirectory(dir); err != nil {
		return nil, err
	}
	records, _, err := d.walker.Walk(ctx, dir, opts.Recursive)
	if err != nil {
		return nil, err
	}

	bySize := make(map[int64][]indexing.FileRecord)
	for _, r := range records {
		if r.Size >= opts.MinSize {
			bySize[r.Size] = append(bySize[r.Size], r)
		}
	}
	candidates := make([][]indexing.FileRecord, 0, len(bySize))
	for _, group := range bySize {
		if len(group) > 1 {
			candidates = append(candidates, group)
		}
	}

	if opts.PartialBytes > 0 {
		candidates, err = d.refine(ctx, candidates, func(path string) (string, error) {
			return partialHash(path, opts.PartialBytes)
		})
		if err != nil {
			return nil, err
		}
	}

	groups, err := d.hashGroups(ctx, candidates, common.SHA256File)
	if err != nil {
		return nil, err
	}

	result := &types.DuplicatesResult{
		Directory:         dir,
		TotalFilesScanned: len(records),
		Groups:            make([]types.DuplicateGroup, 0),
	}
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		files := make([]string, len(g))
		for i, h := range g {
			files[i] = h.rec.Path
		}
		slices.Sort(files)
		result.Groups = append(result.Groups, types.DuplicateGroup{
			Hash:  g[0].hash,
			Size:  g[0].rec.Size,
			Files: files,
		})
	}
	slices.SortFunc(result.Groups, func(a, b types.DuplicateGroup) int {
		if c := cmp.Compare(b.WastedBytes(), a.WastedBytes()); c != 0 {
			return c
		}
		return strings.Compare(a.Hash, b.Hash)
	})
	for _, g := range result.Groups {
		result.TotalWastedBytes += g.WastedBytes()
	}

	d.log.Debug().
		Str("dir", dir).
		Int("scanned", len(records)).
		Int("groups", len(result.Groups)).
		Int64("wasted", result.TotalWastedBytes).
		Msg("Duplicate scan complete")
	return result, nil
}

// refine splits each candidate group by hash and keeps subgroups of two or more.
func (d *DuplicateService) refine(ctx context.Context, candidates [][]indexing.FileRecord, hash func(string) (string, error)) ([][]indexing.FileRecord, error) {
	groups, err := d.hashGroups(ctx, candidates, hash)
	if err != nil {
		return nil, err
	}
	out := make([][]indexing.FileRecord, 0, len(groups))
	for _, g := range groups {
		if len(g) < 2 {
			continue
		}
		recs := make([]indexing.FileRecord, len(g))
		for i, h := range g {
			recs[i] = h.rec
		}
		out = append(out, recs)
	}
	return out, nil
}

// hashGroups hashes every file of every group on the worker pool and
// regroups them by (size, digest). Unreadable files are dropped.
func (d *DuplicateService) hashGroups(ctx context.Context, candidates [][]indexing.FileRecord, hash func(string) (string, error)) ([][]hashed, error) {
	p := pool.NewWithResults[hashed]().WithMaxGoroutines(d.workers)
	for _, group := range candidates {
		for _, rec := range group {
			p.Go(func() hashed {
				if ctx.Err() != nil {
					return hashed{rec: rec}
				}
				sum, err := hash(rec.Path)
				if err != nil {
					d.log.Warn().Err(err).Str("path", rec.Path).Msg("Skipping unreadable file")
					return hashed{rec: rec}
				}
				return hashed{rec: rec, hash: sum, ok: true}
			})
		}
	}
	results := p.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type groupKey struct {
		size int64
		hash string
	}
	index := make(map[groupKey]int)
	var groups [][]hashed
	for _, h := range results {
		if !h.ok {
			continue
		}
		k := groupKey{h.rec.Size, h.hash}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], h)
	}
	return groups, nil
}

// partialHash is the xxhash of the first n bytes of the file at path.
func partialHash(path string, n int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.CopyN(h, f, n); err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
