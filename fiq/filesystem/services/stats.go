package services

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

// NoExtension labels files without an extension in the per-extension breakdown.
const NoExtension = "(no ext)"

// StatsService summarizes the files in a directory tree
type StatsService struct {
	walker FileWalker
	log    zerolog.Logger
}

// NewStatsService creates a new statistics service
func NewStatsService(walker FileWalker, log zerolog.Logger) *StatsService {
	return &StatsService{walker: walker, log: log}
}

// Scan walks dir and reports totals, a per-extension breakdown, the
// largest files and the size distribution.
func (s *StatsService) Scan(ctx context.Context, dir string, opts options.StatsOptions) (*types.StatsResult, error) {
	if err := common.ValidateDirectory(dir); err != nil {
		return nil, err
	}
	records, _, err := s.walker.Walk(ctx, dir, opts.Recursive)
	if err != nil {
		return nil, err
	}

	result := &types.StatsResult{
		Directory:  dir,
		TotalFiles: len(records),
	}

	byExt := make(map[string]*types.ExtensionStat)
	for _, r := range records {
		result.TotalSize += r.Size
		ext := common.Extension(r.Name)
		if ext == "" {
			ext = NoExtension
		}
		es, ok := byExt[ext]
		if !ok {
			es = &types.ExtensionStat{Extension: ext}
			byExt[ext] = es
		}
		es.Count++
		es.TotalSize += r.Size
	}

	result.ByExtension = make([]types.ExtensionStat, 0, len(byExt))
	for _, es := range byExt {
		result.ByExtension = append(result.ByExtension, *es)
	}
	slices.SortFunc(result.ByExtension, func(a, b types.ExtensionStat) int {
		if c := cmp.Compare(b.TotalSize, a.TotalSize); c != 0 {
			return c
		}
		return strings.Compare(a.Extension, b.Extension)
	})

	result.LargestFiles = largestFiles(records, opts.TopN)
	result.SizeDistribution = sizeDistribution(records)

	s.log.Debug().
		Str("dir", dir).
		Int("files", result.TotalFiles).
		Int("extensions", len(result.ByExtension)).
		Msg("Stats scan complete")
	return result, nil
}

func largestFiles(records []indexing.FileRecord, n int) []types.FileEntry {
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b indexing.FileRecord) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	n = max(min(n, len(sorted)), 0)
	out := make([]types.FileEntry, 0, n)
	for _, r := range sorted[:n] {
		out = append(out, types.FileEntry{Path: r.Path, Size: r.Size})
	}
	return out
}

func sizeDistribution(records []indexing.FileRecord) types.SizeDistribution {
	if len(records) == 0 {
		return types.SizeDistribution{}
	}
	sizes := make([]float64, len(records))
	for i, r := range records {
		sizes[i] = float64(r.Size)
	}
	slices.Sort(sizes)
	return types.SizeDistribution{
		Mean:   stat.Mean(sizes, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sizes, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sizes, nil),
		P99:    stat.Quantile(0.99, stat.Empirical, sizes, nil),
	}
}
