package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

const (
	maxContentMatches = 10
	maxLineBytes      = 200
	maxScanLine       = 16 << 20
)

// SearchService filters files by name, size, date and content. Name
// queries go through the trigram index when one is available.
type SearchService struct {
	walker  FileWalker
	engine  *indexing.Engine
	workers int
	now     func() time.Time
	log     zerolog.Logger
}

// NewSearchService creates a search service. A nil engine disables the
// index and every search walks the tree.
func NewSearchService(walker FileWalker, engine *indexing.Engine, workers int, log zerolog.Logger) *SearchService {
	return &SearchService{
		walker:  walker,
		engine:  engine,
		workers: max(workers, 1),
		now:     time.Now,
		log:     log,
	}
}

// searchFilters are SearchOptions after parsing.
type searchFilters struct {
	name         string
	content      string
	minSize      *int64
	maxSize      *int64
	newer, older *time.Time
}

func (s *SearchService) parseFilters(opts options.SearchOptions) (searchFilters, error) {
	f := searchFilters{name: opts.Name, content: opts.Content}
	if f.name != "" {
		if err := indexing.ValidatePattern(f.name); err != nil {
			return f, err
		}
	}
	parseSize := func(raw string) (*int64, error) {
		if raw == "" {
			return nil, nil
		}
		n, err := ParseSize(raw)
		if err != nil {
			return nil, err
		}
		return &n, nil
	}
	parseTime := func(raw string) (*time.Time, error) {
		if raw == "" {
			return nil, nil
		}
		t, err := ParseTime(raw, s.now())
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	var err error
	if f.minSize, err = parseSize(opts.MinSize); err != nil {
		return f, err
	}
	if f.maxSize, err = parseSize(opts.MaxSize); err != nil {
		return f, err
	}
	if f.newer, err = parseTime(opts.Newer); err != nil {
		return f, err
	}
	if f.older, err = parseTime(opts.Older); err != nil {
		return f, err
	}
	return f, nil
}

// Search applies the filters in order name, size, date, content.
func (s *SearchService) Search(ctx context.Context, dir string, opts options.SearchOptions) (*types.SearchResult, error) {
	if err := common.ValidateDirectory(dir); err != nil {
		return nil, err
	}
	filters, err := s.parseFilters(opts)
	if err != nil {
		return nil, err
	}

	result := &types.SearchResult{Directory: dir}

	candidates, nameDone, err := s.nameCandidates(ctx, dir, filters.name, opts.Recursive, result)
	if err != nil {
		return nil, err
	}

	filtered := candidates[:0]
	for _, r := range candidates {
		if !nameDone && filters.name != "" {
			if ok, _ := doublestar.Match(filters.name, r.Name); !ok {
				continue
			}
		}
		if filters.minSize != nil && r.Size < *filters.minSize {
			continue
		}
		if filters.maxSize != nil && r.Size > *filters.maxSize {
			continue
		}
		if filters.newer != nil && r.ModTime.Before(*filters.newer) {
			continue
		}
		if filters.older != nil && r.ModTime.After(*filters.older) {
			continue
		}
		filtered = append(filtered, r)
	}

	if filters.content != "" {
		result.Matches, err = s.searchContent(ctx, filtered, filters.content)
		if err != nil {
			return nil, err
		}
	} else {
		result.Matches = make([]types.SearchMatch, 0, len(filtered))
		for _, r := range filtered {
			result.Matches = append(result.Matches, types.SearchMatch{Path: r.Path, Size: r.Size, Modified: r.ModTime})
		}
	}

	slices.SortFunc(result.Matches, func(a, b types.SearchMatch) int {
		return strings.Compare(a.Path, b.Path)
	})
	result.TotalMatches = len(result.Matches)
	return result, nil
}

// nameCandidates returns the records to filter. When the index answered
// the name filter it reports nameDone so the glob is not checked twice.
func (s *SearchService) nameCandidates(ctx context.Context, dir, name string, recursive bool, result *types.SearchResult) ([]indexing.FileRecord, bool, error) {
	if name != "" && recursive && s.engine != nil {
		matches, store, err := s.engine.ResolveIn(ctx, dir, name)
		switch {
		case err == nil:
			result.UsedIndex = true
			result.FilesScanned = store.EntryCount()
			return s.statMatches(matches), true, nil
		case errors.Is(err, indexing.ErrUnindexable):
			s.log.Debug().Str("pattern", name).Msg("Pattern not indexable, walking")
		case errors.Is(err, indexing.ErrMalformedPattern),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return nil, false, err
		default:
			s.log.Warn().Err(err).Str("dir", dir).Msg("Index unavailable, falling back to full walk")
		}
	}

	records, _, err := s.walker.Walk(ctx, dir, recursive)
	if err != nil {
		return nil, false, err
	}
	result.FilesScanned = len(records)
	return records, false, nil
}

// statMatches turns index hits into records, dropping files that have
// vanished or stopped being regular files since the index was built.
func (s *SearchService) statMatches(matches []indexing.Match) []indexing.FileRecord {
	records := make([]indexing.FileRecord, 0, len(matches))
	for _, m := range matches {
		info, err := os.Lstat(m.Path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.log.Warn().Err(err).Str("path", m.Path).Msg("Cannot stat indexed file")
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		records = append(records, indexing.FileRecord{
			Path:    m.Path,
			Name:    m.Name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return records
}

func (s *SearchService) searchContent(ctx context.Context, records []indexing.FileRecord, query string) ([]types.SearchMatch, error) {
	needle := strings.ToLower(query)
	p := pool.NewWithResults[*types.SearchMatch]().WithMaxGoroutines(s.workers)
	for _, r := range records {
		p.Go(func() *types.SearchMatch {
			if ctx.Err() != nil {
				return nil
			}
			lines, err := grepFile(r.Path, needle)
			if err != nil {
				s.log.Debug().Err(err).Str("path", r.Path).Msg("Skipping file in content search")
				return nil
			}
			if len(lines) == 0 {
				return nil
			}
			return &types.SearchMatch{Path: r.Path, Size: r.Size, Modified: r.ModTime, ContentMatches: lines}
		})
	}
	results := p.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := make([]types.SearchMatch, 0, len(results))
	for _, m := range results {
		if m != nil {
			matches = append(matches, *m)
		}
	}
	return matches, nil
}

// errBinary marks files skipped by content search.
var errBinary = errors.New("binary file")

// grepFile returns up to maxContentMatches lines of the file at path that
// contain needle, compared in lowercase. Files containing NUL are skipped.
func grepFile(path, needle string) ([]types.ContentMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanLine)

	var out []types.ContentMatch
	lineNo := 0
	for scanner.Scan() && len(out) < maxContentMatches {
		lineNo++
		raw := scanner.Bytes()
		if bytes.IndexByte(raw, 0) >= 0 {
			return nil, fmt.Errorf("%s: %w", path, errBinary)
		}
		line := strings.TrimSuffix(string(raw), "\r")
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		out = append(out, types.ContentMatch{LineNumber: lineNo, Line: truncateLine(line)})
	}
	if err := scanner.Err(); err != nil && len(out) == 0 {
		return nil, err
	}
	return out, nil
}

// truncateLine cuts line to maxLineBytes on a rune boundary and marks the cut.
func truncateLine(line string) string {
	line = strings.ToValidUTF8(line, "�")
	if len(line) <= maxLineBytes {
		return line
	}
	end := maxLineBytes
	for end > 0 && !utf8.RuneStart(line[end]) {
		end--
	}
	return line[:end] + "..."
}
