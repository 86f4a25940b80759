package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command tree against a config whose cache lives in a temp dir.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgDir := t.TempDir()
	cfgPath := filepath.Join(cfgDir, "config.yaml")
	cfg := fmt.Sprintf("index:\n  cacheDir: %s\nlog:\n  level: error\n", filepath.Join(cfgDir, "cache"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range map[string]string{
		"main.go":        "package main\n// TODO: flags\n",
		"util.go":        "package main\n",
		"notes.txt":      "hello",
		"copy/notes.txt": "hello",
		"docs/guide.md":  "# guide",
	} {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestStatsCommand(t *testing.T) {
	root := tree(t)

	out, err := run(t, "stats", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Directory statistics")
	assert.Contains(t, out, "go")
	assert.Contains(t, out, "Size distribution")

	out, err = run(t, "--json", "stats", root)
	require.NoError(t, err)
	var res types.StatsResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 5, res.TotalFiles)
}

func TestSearchCommandJSON(t *testing.T) {
	root := tree(t)

	out, err := run(t, "--json", "search", "--name", "*.go", "--content", "todo", root)
	require.NoError(t, err)

	var res types.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.UsedIndex)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, filepath.Join(root, "main.go"), res.Matches[0].Path)
	require.Len(t, res.Matches[0].ContentMatches, 1)
	assert.Equal(t, 2, res.Matches[0].ContentMatches[0].LineNumber)
}

func TestSearchCommandRejectsBadSize(t *testing.T) {
	root := tree(t)
	_, err := run(t, "search", "--min-size", "lots", root)
	require.Error(t, err)
}

func TestDuplicatesCommand(t *testing.T) {
	root := tree(t)

	out, err := run(t, "duplicates", root)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(root, "notes.txt"))
	assert.Contains(t, out, filepath.Join(root, "copy", "notes.txt"))
}

func TestOrganizeCommandDryRun(t *testing.T) {
	root := tree(t)

	out, err := run(t, "organize", "--dry-run", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Planned moves")
	assert.Contains(t, out, filepath.Join(root, "Code", "main.go"))
	assert.FileExists(t, filepath.Join(root, "main.go"))

	_, err = run(t, "organize", "--by", "colour", root)
	require.Error(t, err)
}

func TestIndexCommands(t *testing.T) {
	root := tree(t)

	out, err := run(t, "index", "status", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Valid")
	assert.Contains(t, out, "no")

	out, err = run(t, "--json", "index", "build", root)
	require.NoError(t, err)
	var built types.RebuildResult
	require.NoError(t, json.Unmarshal([]byte(out), &built))
	assert.Equal(t, 5, built.Entries)
	assert.FileExists(t, built.CacheFile)

	out, err = run(t, "index", "clear", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared index")
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, "frobnicate")
	require.Error(t, err)
}
