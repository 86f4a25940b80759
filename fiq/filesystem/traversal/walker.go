package traversal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/config"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"

	"github.com/rs/zerolog"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
)

// Walker lists regular files below a directory using a bounded pool of
// goroutines, one directory level at a time.
type Walker struct {
	threads       int
	includeHidden bool
	ignoreFiles   []string
	skipDirs      map[string]struct{}
	metrics       *common.DirectoryMetrics
	log           zerolog.Logger
}

// ignoreRules is a compiled ignore file and the directory it applies below.
type ignoreRules struct {
	base    string
	matcher *ignore.GitIgnore
}

// pendingDir is a directory queued for the next level along with the
// ignore rules inherited from its ancestors.
type pendingDir struct {
	path  string
	rules []ignoreRules
}

// NewWalker creates a walker from the walker configuration.
func NewWalker(cfg config.WalkerConfig, log zerolog.Logger) *Walker {
	skip := make(map[string]struct{}, len(cfg.SkipDirs))
	for _, d := range cfg.SkipDirs {
		skip[d] = struct{}{}
	}
	return &Walker{
		threads:       max(cfg.Threads, 1),
		includeHidden: cfg.IncludeHidden,
		ignoreFiles:   slices.Clone(cfg.IgnoreFiles),
		skipDirs:      skip,
		metrics:       &common.DirectoryMetrics{},
		log:           log,
	}
}

// List walks root recursively. It satisfies indexing.ListingProvider.
func (w *Walker) List(ctx context.Context, root string) ([]indexing.FileRecord, error) {
	records, _, err := w.Walk(ctx, root, true)
	return records, err
}

// Walk returns every regular file under root sorted by path. With recursive
// false only the direct children of root are listed. Failure to read root
// is an error; unreadable subdirectories are logged and skipped.
func (w *Walker) Walk(ctx context.Context, root string, recursive bool) ([]indexing.FileRecord, types.WalkStats, error) {
	start := time.Now()
	records, stats, err := w.walk(ctx, root, recursive)
	w.metrics.RecordTraversal(start, stats.FilesProcessed, stats.DirsProcessed, err == nil)
	return records, stats, err
}

// Metrics returns the counters accumulated over every walk.
func (w *Walker) Metrics() common.MetricsSnapshot { return w.metrics.Snapshot() }

func (w *Walker) walk(ctx context.Context, root string, recursive bool) ([]indexing.FileRecord, types.WalkStats, error) {
	var stats types.WalkStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, fmt.Errorf("root path cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	start := time.Now()
	rootEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read directory %s: %w", abs, err)
	}

	var (
		mu      sync.Mutex
		records []indexing.FileRecord
	)

	collect := func(files []indexing.FileRecord) {
		if len(files) == 0 {
			return
		}
		mu.Lock()
		records = append(records, files...)
		mu.Unlock()
	}

	rootDir := pendingDir{path: abs, rules: w.loadRules(abs, nil)}
	files, children := w.processEntries(rootDir, rootEntries, &stats)
	atomic.AddInt64(&stats.DirsProcessed, 1)
	collect(files)

	currentLevel := children
	for recursive && len(currentLevel) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		var nextMu sync.Mutex
		nextLevel := make([]pendingDir, 0, len(currentLevel))

		levelPool := pool.New().WithMaxGoroutines(w.threads).WithContext(ctx)
		for _, dir := range currentLevel {
			levelPool.Go(func(ctx context.Context) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				entries, err := os.ReadDir(dir.path)
				if err != nil {
					atomic.AddInt64(&stats.ErrorsFound, 1)
					w.log.Warn().Err(err).Str("path", dir.path).Msg("Skipping unreadable directory")
					return nil
				}
				dir.rules = w.loadRules(dir.path, dir.rules)
				files, children := w.processEntries(dir, entries, &stats)
				atomic.AddInt64(&stats.DirsProcessed, 1)
				collect(files)

				nextMu.Lock()
				nextLevel = append(nextLevel, children...)
				nextMu.Unlock()
				return nil
			})
		}
		if err := levelPool.Wait(); err != nil {
			return nil, stats, err
		}
		currentLevel = nextLevel
	}

	slices.SortFunc(records, func(a, b indexing.FileRecord) int {
		return strings.Compare(a.Path, b.Path)
	})

	w.log.Debug().
		Str("root", abs).
		Int64("dirs", stats.DirsProcessed).
		Int64("files", stats.FilesProcessed).
		Int64("ignored", stats.Ignored).
		Int64("errors", stats.ErrorsFound).
		Dur("duration", time.Since(start)).
		Msg("Walk complete")

	return records, stats, nil
}

// processEntries splits one directory's entries into file records and
// subdirectories to visit. Symlinks and special files are not followed.
func (w *Walker) processEntries(dir pendingDir, entries []os.DirEntry, stats *types.WalkStats) ([]indexing.FileRecord, []pendingDir) {
	files := make([]indexing.FileRecord, 0, len(entries))
	var children []pendingDir

	for _, entry := range entries {
		name := entry.Name()
		childPath := filepath.Join(dir.path, name)

		if !w.includeHidden && strings.HasPrefix(name, ".") {
			atomic.AddInt64(&stats.Ignored, 1)
			continue
		}
		if entry.IsDir() {
			if _, skip := w.skipDirs[name]; skip {
				continue
			}
		}
		if w.ignored(dir.rules, childPath, entry.IsDir()) {
			atomic.AddInt64(&stats.Ignored, 1)
			continue
		}

		switch {
		case entry.IsDir():
			children = append(children, pendingDir{path: childPath, rules: dir.rules})
		case entry.Type().IsRegular():
			info, err := entry.Info()
			if err != nil {
				// removed between ReadDir and Info
				if !errors.Is(err, fs.ErrNotExist) {
					atomic.AddInt64(&stats.ErrorsFound, 1)
				}
				continue
			}
			files = append(files, indexing.FileRecord{
				Path:    childPath,
				Name:    name,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			})
		}
	}

	atomic.AddInt64(&stats.FilesProcessed, int64(len(files)))
	return files, children
}

// loadRules returns inherited plus any ignore files present in dir.
func (w *Walker) loadRules(dir string, inherited []ignoreRules) []ignoreRules {
	rules := inherited
	for _, name := range w.ignoreFiles {
		ignorePath := filepath.Join(dir, name)
		if _, err := os.Stat(ignorePath); err != nil {
			continue
		}
		matcher, err := ignore.CompileIgnoreFile(ignorePath)
		if err != nil {
			w.log.Warn().Err(err).Str("path", ignorePath).Msg("Failed to compile ignore file")
			continue
		}
		if len(rules) == len(inherited) {
			// children share the parent's slice; copy before extending
			rules = slices.Clone(inherited)
		}
		rules = append(rules, ignoreRules{base: dir, matcher: matcher})
	}
	return rules
}

func (w *Walker) ignored(rules []ignoreRules, path string, isDir bool) bool {
	for _, r := range rules {
		rel, err := filepath.Rel(r.base, path)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if r.matcher.MatchesPath(rel) || (isDir && r.matcher.MatchesPath(rel+"/")) {
			return true
		}
	}
	return false
}
