package indexing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// CanonicalKey resolves dir to the absolute, symlink-free path used as the
// directory key. Different spellings of one directory yield the same key.
func CanonicalKey(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", fmt.Errorf("%w: empty directory", ErrListingFailed)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrListingFailed, dir, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrListingFailed, dir, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrListingFailed, dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrListingFailed, dir)
	}
	return canonicalize(resolved), nil
}

// cacheFileName is the per-key file name inside the cache root.
func cacheFileName(key string) string {
	return fmt.Sprintf("%016x.idx", xxhash.Sum64String(key))
}

// within reports whether child is parent or lies below it.
func within(parent, child string) bool {
	if parent == child {
		return true
	}
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func canonicalize(p string) string {
	p = filepath.Clean(p)
	if len(p) > 1 && strings.HasSuffix(p, string(filepath.Separator)) {
		p = strings.TrimSuffix(p, string(filepath.Separator))
	}
	return p
}

func toSlash(p string) string {
	return filepath.ToSlash(p)
}
