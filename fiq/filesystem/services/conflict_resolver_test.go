package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func takenSet(paths ...string) ExistsFunc {
	set := map[string]bool{}
	for _, p := range paths {
		set[p] = true
	}
	return func(p string) bool { return set[p] }
}

func TestGenerateUniqueFilename(t *testing.T) {
	cr := NewConflictResolverService()
	dir := filepath.FromSlash("/out/Docs")
	a := filepath.Join(dir, "a.txt")

	assert.Equal(t, filepath.Join(dir, "a_1.txt"), cr.GenerateUniqueFilename(a, takenSet(a)))
	assert.Equal(t, filepath.Join(dir, "a_3.txt"),
		cr.GenerateUniqueFilename(a, takenSet(a, filepath.Join(dir, "a_1.txt"), filepath.Join(dir, "a_2.txt"))))

	noExt := filepath.Join(dir, "Makefile")
	assert.Equal(t, filepath.Join(dir, "Makefile_1"), cr.GenerateUniqueFilename(noExt, takenSet(noExt)))

	dot := filepath.Join(dir, ".env")
	assert.Equal(t, filepath.Join(dir, ".env_1"), cr.GenerateUniqueFilename(dot, takenSet(dot)))
}

func TestResolveConflict(t *testing.T) {
	cr := NewConflictResolverService()
	dst := filepath.FromSlash("/out/a.txt")

	tests := []struct {
		name     string
		strategy options.ConflictStrategy
		exists   ExistsFunc
		want     string
		skip     bool
	}{
		{"free destination", options.ConflictSkip, takenSet(), dst, false},
		{"skip", options.ConflictSkip, takenSet(dst), "", true},
		{"rename", options.ConflictRename, takenSet(dst), filepath.FromSlash("/out/a_1.txt"), false},
		{"overwrite", options.ConflictOverwrite, takenSet(dst), dst, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skip, err := cr.ResolveConflict(dst, tt.strategy, tt.exists)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.skip, skip)
		})
	}

	_, _, err := cr.ResolveConflict(dst, "prompt", takenSet(dst))
	assert.ErrorIs(t, err, common.ErrUnknownConflictMode)
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	assert.False(t, PathExists(p))
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	assert.True(t, PathExists(p))
}
