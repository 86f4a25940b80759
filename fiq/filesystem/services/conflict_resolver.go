package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
)

// maxRenameAttempts bounds the _N suffix search.
const maxRenameAttempts = 9999

// ExistsFunc reports whether a destination is taken.
type ExistsFunc func(path string) bool

// PathExists checks the file system without following a final symlink.
func PathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}

// ConflictResolverService decides where a file goes when its destination is taken
type ConflictResolverService struct{}

// NewConflictResolverService creates a new conflict resolver service
func NewConflictResolverService() *ConflictResolverService {
	return &ConflictResolverService{}
}

// ResolveConflict returns the path to write to, or skip=true when the
// file should be left where it is. exists decides what counts as taken so
// dry runs can include destinations they have already planned.
func (cr *ConflictResolverService) ResolveConflict(dstPath string, strategy options.ConflictStrategy, exists ExistsFunc) (resolved string, skip bool, err error) {
	if !exists(dstPath) {
		return dstPath, false, nil
	}
	switch strategy {
	case options.ConflictOverwrite:
		return dstPath, false, nil
	case options.ConflictSkip:
		return "", true, nil
	case options.ConflictRename:
		return cr.GenerateUniqueFilename(dstPath, exists), false, nil
	default:
		return "", false, fmt.Errorf("%w: %q", common.ErrUnknownConflictMode, strategy)
	}
}

// GenerateUniqueFilename returns the first free "name_N.ext" next to path.
func (cr *ConflictResolverService) GenerateUniqueFilename(path string, exists ExistsFunc) string {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	if ext == name {
		ext = ""
	}
	baseName := strings.TrimSuffix(name, ext)

	for counter := 1; counter <= maxRenameAttempts; counter++ {
		newPath := filepath.Join(dir, fmt.Sprintf("%s_%d%s", baseName, counter, ext))
		if !exists(newPath) {
			return newPath
		}
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", baseName, time.Now().UnixNano(), ext))
}
