package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/config"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/traversal"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestWalker() *traversal.Walker {
	return traversal.NewWalker(config.Default().Walker, zerolog.Nop())
}

// writeTree creates files under root from a map of slash paths to contents.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func setMtime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// rel strips root from p and returns a slash path.
func rel(t *testing.T, root, p string) string {
	t.Helper()
	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	r, err := filepath.Rel(abs, p)
	require.NoError(t, err)
	return filepath.ToSlash(r)
}
