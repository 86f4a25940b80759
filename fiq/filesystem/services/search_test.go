package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndexedSearch(t *testing.T) (*SearchService, *indexing.Engine) {
	t.Helper()
	walker := newTestWalker()
	manager := indexing.NewManager(indexing.ManagerOptions{
		TTL:          time.Hour,
		CacheDir:     t.TempDir(),
		BuildWorkers: 2,
		Logger:       zerolog.Nop(),
	})
	engine := indexing.NewEngine(manager, walker, zerolog.Nop())
	return NewSearchService(walker, engine, 4, zerolog.Nop()), engine
}

func matchPaths(t *testing.T, root string, res *types.SearchResult) []string {
	t.Helper()
	out := make([]string, 0, len(res.Matches))
	for _, m := range res.Matches {
		out = append(out, rel(t, root, m.Path))
	}
	return out
}

func searchFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.rs":       "fn main() {\n    println!(\"Hello\");\n}\n",
		"src/lib.rs":        "pub fn hello() {}\n",
		"src/util_test.go":  "package util\n",
		"docs/README.md":    "# Readme\nhello world\n",
		"docs/report.pdf":   strings.Repeat("x", 5000),
		"archive/old.rs":    "// old\n",
		"notes/todo.txt":    "buy milk\n",
		"notes/HELLO.txt":   "HeLLo there\n",
		"bin/blob.dat":      "hello\x00binary\n",
		"deep/a/b/c/x.rs":   "fn x() {}\n",
		"deep/a/b/c/y.json": "{}\n",
	})
	return root
}

func TestSearchIndexedMatchesFallback(t *testing.T) {
	root := searchFixture(t)
	indexed, _ := newIndexedSearch(t)
	walking := NewSearchService(newTestWalker(), nil, 4, zerolog.Nop())

	for _, pattern := range []string{"*.rs", "*.json", "README*", "*_test.go", "*.{rs,go}", "*.txt"} {
		want, err := walking.Search(context.Background(), root, options.SearchOptions{Recursive: true, Name: pattern})
		require.NoError(t, err, pattern)
		got, err := indexed.Search(context.Background(), root, options.SearchOptions{Recursive: true, Name: pattern})
		require.NoError(t, err, pattern)

		assert.Equal(t, matchPaths(t, root, want), matchPaths(t, root, got), pattern)
		assert.False(t, want.UsedIndex, pattern)
		assert.Equal(t, 11, want.FilesScanned)
	}

	res, err := indexed.Search(context.Background(), root, options.SearchOptions{Recursive: true, Name: "*.rs"})
	require.NoError(t, err)
	assert.True(t, res.UsedIndex)
	assert.Equal(t, 11, res.FilesScanned)
	assert.Equal(t, []string{"archive/old.rs", "deep/a/b/c/x.rs", "src/lib.rs", "src/main.rs"}, matchPaths(t, root, res))
	assert.Equal(t, 4, res.TotalMatches)
}

func TestSearchUnindexablePatternWalks(t *testing.T) {
	root := searchFixture(t)
	svc, engine := newIndexedSearch(t)

	res, err := svc.Search(context.Background(), root, options.SearchOptions{Recursive: true, Name: "*.md"})
	require.NoError(t, err)
	assert.False(t, res.UsedIndex)
	assert.Equal(t, []string{"docs/README.md"}, matchPaths(t, root, res))
	assert.Zero(t, engine.Cache().Builds())
}

func TestSearchNonRecursiveSkipsIndex(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"top.rs": "x", "sub/low.rs": "y"})
	svc, engine := newIndexedSearch(t)

	res, err := svc.Search(context.Background(), root, options.SearchOptions{Name: "*.rs"})
	require.NoError(t, err)
	assert.False(t, res.UsedIndex)
	assert.Equal(t, []string{"top.rs"}, matchPaths(t, root, res))
	assert.Zero(t, engine.Cache().Builds())
}

func TestSearchDropsDeletedFiles(t *testing.T) {
	root := searchFixture(t)
	svc, _ := newIndexedSearch(t)
	opts := options.SearchOptions{Recursive: true, Name: "*.rs"}

	_, err := svc.Search(context.Background(), root, opts)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "src", "lib.rs")))
	res, err := svc.Search(context.Background(), root, opts)
	require.NoError(t, err)
	assert.True(t, res.UsedIndex)
	assert.NotContains(t, matchPaths(t, root, res), "src/lib.rs")
	assert.Len(t, res.Matches, 3)
}

func TestSearchAddedFileHiddenUntilRebuild(t *testing.T) {
	root := searchFixture(t)
	svc, engine := newIndexedSearch(t)
	opts := options.SearchOptions{Recursive: true, Name: "*.rs"}

	_, err := svc.Search(context.Background(), root, opts)
	require.NoError(t, err)

	writeTree(t, root, map[string]string{"src/new.rs": "fn new() {}\n"})
	res, err := svc.Search(context.Background(), root, opts)
	require.NoError(t, err)
	assert.NotContains(t, matchPaths(t, root, res), "src/new.rs", "index is only refreshed by TTL or rebuild")

	_, err = engine.Rebuild(context.Background(), root)
	require.NoError(t, err)
	res, err = svc.Search(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Contains(t, matchPaths(t, root, res), "src/new.rs")
}

func TestSearchSizeAndDateFilters(t *testing.T) {
	root := searchFixture(t)
	svc := NewSearchService(newTestWalker(), nil, 2, zerolog.Nop())
	now := time.Now()
	svc.now = func() time.Time { return now }

	res, err := svc.Search(context.Background(), root, options.SearchOptions{Recursive: true, MinSize: "1KB"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/report.pdf"}, matchPaths(t, root, res))

	res, err = svc.Search(context.Background(), root, options.SearchOptions{Recursive: true, MaxSize: "3B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"deep/a/b/c/y.json"}, matchPaths(t, root, res))

	old := now.Add(-30 * 24 * time.Hour)
	setMtime(t, filepath.Join(root, "archive", "old.rs"), old)

	res, err = svc.Search(context.Background(), root, options.SearchOptions{Recursive: true, Older: "7d"})
	require.NoError(t, err)
	assert.Equal(t, []string{"archive/old.rs"}, matchPaths(t, root, res))

	res, err = svc.Search(context.Background(), root, options.SearchOptions{Recursive: true, Newer: "7d", Name: "*.rs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"deep/a/b/c/x.rs", "src/lib.rs", "src/main.rs"}, matchPaths(t, root, res))
}

func TestSearchContent(t *testing.T) {
	root := searchFixture(t)
	svc, _ := newIndexedSearch(t)

	res, err := svc.Search(context.Background(), root, options.SearchOptions{Recursive: true, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/README.md", "notes/HELLO.txt", "src/lib.rs", "src/main.rs"}, matchPaths(t, root, res))

	byPath := map[string]types.SearchMatch{}
	for _, m := range res.Matches {
		byPath[rel(t, root, m.Path)] = m
	}
	assert.Equal(t, []types.ContentMatch{{LineNumber: 2, Line: "hello world"}}, byPath["docs/README.md"].ContentMatches)
	assert.Equal(t, []types.ContentMatch{{LineNumber: 2, Line: `    println!("Hello");`}}, byPath["src/main.rs"].ContentMatches)

	res, err = svc.Search(context.Background(), root, options.SearchOptions{Recursive: true, Content: "hello", Name: "*.rs"})
	require.NoError(t, err)
	assert.True(t, res.UsedIndex)
	assert.Equal(t, []string{"src/lib.rs", "src/main.rs"}, matchPaths(t, root, res))
}

func TestSearchContentLimits(t *testing.T) {
	root := t.TempDir()
	var b strings.Builder
	for range 15 {
		b.WriteString("match line\n")
	}
	long := strings.Repeat("é", 150) + " match"
	writeTree(t, root, map[string]string{
		"many.txt": b.String(),
		"long.txt": long + "\r\n",
	})
	svc := NewSearchService(newTestWalker(), nil, 2, zerolog.Nop())

	res, err := svc.Search(context.Background(), root, options.SearchOptions{Recursive: true, Content: "MATCH"})
	require.NoError(t, err)
	require.Len(t, res.Matches, 2)

	longMatch := res.Matches[0]
	require.Len(t, longMatch.ContentMatches, 1)
	line := longMatch.ContentMatches[0].Line
	assert.True(t, strings.HasSuffix(line, "..."))
	assert.Equal(t, strings.Repeat("é", 100)+"...", line)

	assert.Len(t, res.Matches[1].ContentMatches, 10)
	assert.Equal(t, 10, res.Matches[1].ContentMatches[9].LineNumber)
}

func TestSearchRejectsBadFilters(t *testing.T) {
	root := t.TempDir()
	svc, engine := newIndexedSearch(t)
	ctx := context.Background()

	_, err := svc.Search(ctx, root, options.SearchOptions{Recursive: true, MinSize: "lots"})
	assert.ErrorIs(t, err, common.ErrInvalidSize)

	_, err = svc.Search(ctx, root, options.SearchOptions{Recursive: true, Newer: "last week"})
	assert.ErrorIs(t, err, common.ErrInvalidTime)

	_, err = svc.Search(ctx, root, options.SearchOptions{Recursive: true, Name: "[abc"})
	assert.ErrorIs(t, err, indexing.ErrMalformedPattern)

	_, err = svc.Search(ctx, filepath.Join(root, "missing"), options.SearchOptions{Recursive: true})
	assert.ErrorIs(t, err, common.ErrSourceNotExist)

	assert.Zero(t, engine.Cache().Builds())
}
