package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/fiq/fiq/config"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// connect starts a server over in-memory transports and returns a client session.
func connect(t *testing.T) (*mcp.ClientSession, *filesystem.FileSystem) {
	t.Helper()
	cfg := config.Default()
	cfg.Index.CacheDir = t.TempDir()
	fs := filesystem.New(cfg, zerolog.Nop())
	srv := NewServer(fs, "fiq-test", "0.0.0", zerolog.Nop())

	ctx := context.Background()
	st, ct := mcp.NewInMemoryTransports()
	ss, err := srv.MCPServer().Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.0"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs, fs
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range map[string]string{
		"main.rs":     "fn main() { println!(\"hi\"); }",
		"lib.rs":      "pub mod util;",
		"README.md":   "# fiq\nTODO: docs",
		"src/util.rs": "pub fn util() {}",
		"img/a.png":   "png",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func call(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	return res
}

func decodeText(t *testing.T, res *mcp.CallToolResult, v any) {
	t.Helper()
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func TestListTools(t *testing.T) {
	cs, _ := connect(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"scan_stats", "find_duplicates", "search_files", "organize_files", "rebuild_index",
	}, names)
}

func TestSearchFilesTool(t *testing.T) {
	cs, fs := connect(t)
	root := fixture(t)

	res := call(t, cs, "search_files", map[string]any{"directory": root, "name": "*.rs"})
	require.False(t, res.IsError)

	var out types.SearchResult
	decodeText(t, res, &out)
	assert.True(t, out.UsedIndex)
	assert.Equal(t, 3, out.TotalMatches)
	assert.Equal(t, int64(1), fs.Indexes().Builds())

	// a second call is served by the resident index
	res = call(t, cs, "search_files", map[string]any{"directory": root, "name": "*.rs", "content": "util"})
	decodeText(t, res, &out)
	require.Len(t, out.Matches, 2)
	assert.Equal(t, int64(1), fs.Indexes().Builds())
}

func TestScanStatsTool(t *testing.T) {
	cs, _ := connect(t)
	root := fixture(t)

	res := call(t, cs, "scan_stats", map[string]any{"directory": root, "top_n": 2})
	require.False(t, res.IsError)

	var out types.StatsResult
	decodeText(t, res, &out)
	assert.Equal(t, 5, out.TotalFiles)
	assert.Len(t, out.LargestFiles, 2)
}

func TestFindDuplicatesTool(t *testing.T) {
	cs, _ := connect(t)
	root := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("same"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.txt"), []byte("diff"), 0o644))

	res := call(t, cs, "find_duplicates", map[string]any{"directory": root})
	require.False(t, res.IsError)

	var out types.DuplicatesResult
	decodeText(t, res, &out)
	require.Len(t, out.Groups, 1)
	assert.Len(t, out.Groups[0].Files, 2)
	assert.Equal(t, int64(4), out.TotalWastedBytes)
}

func TestOrganizeFilesDefaultsToDryRun(t *testing.T) {
	cs, _ := connect(t)
	root := fixture(t)

	res := call(t, cs, "organize_files", map[string]any{"directory": root})
	require.False(t, res.IsError)

	var out types.OrganizationResult
	decodeText(t, res, &out)
	assert.True(t, out.DryRun)
	assert.NotEmpty(t, out.Moves)
	assert.FileExists(t, filepath.Join(root, "main.rs"))
	assert.NoDirExists(t, filepath.Join(root, "Code"))
}

func TestOrganizeFilesRejectsUnknownMode(t *testing.T) {
	cs, _ := connect(t)
	root := fixture(t)

	res := call(t, cs, "organize_files", map[string]any{"directory": root, "mode": "merge"})
	assert.True(t, res.IsError)
}

func TestRebuildIndexTool(t *testing.T) {
	cs, fs := connect(t)
	root := fixture(t)

	res := call(t, cs, "rebuild_index", map[string]any{"directory": root})
	require.False(t, res.IsError)

	var out types.RebuildResult
	decodeText(t, res, &out)
	assert.Equal(t, 5, out.Entries)
	assert.FileExists(t, out.CacheFile)
	assert.Equal(t, int64(1), fs.Indexes().Builds())
}

func TestToolErrors(t *testing.T) {
	cs, _ := connect(t)

	tests := []struct {
		name string
		tool string
		args map[string]any
	}{
		{"missing directory", "scan_stats", map[string]any{}},
		{"nonexistent directory", "search_files", map[string]any{"directory": filepath.Join(t.TempDir(), "nope")}},
		{"malformed pattern", "search_files", map[string]any{"directory": t.TempDir(), "name": "[abc"}},
		{"bad size", "search_files", map[string]any{"directory": t.TempDir(), "min_size": "huge"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, cs, tt.tool, tt.args)
			assert.True(t, res.IsError)

			var body map[string]any
			decodeText(t, res, &body)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.tool, body["operation"])
			assert.NotEmpty(t, body["error"])
		})
	}
}
