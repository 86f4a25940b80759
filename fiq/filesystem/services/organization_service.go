package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"

	"github.com/rs/zerolog"
)

// TreeInvalidator drops cached indexes that overlap a directory.
type TreeInvalidator interface {
	InvalidateTree(dir string) []string
}

// OrganizationService moves files into category folders
type OrganizationService struct {
	walker      FileWalker
	conflictMgr *ConflictResolverService
	indexes     TreeInvalidator
	log         zerolog.Logger
}

// NewOrganizationService creates a new organization service. indexes may
// be nil when no index cache is in use.
func NewOrganizationService(walker FileWalker, conflictMgr *ConflictResolverService, indexes TreeInvalidator, log zerolog.Logger) *OrganizationService {
	if conflictMgr == nil {
		conflictMgr = NewConflictResolverService()
	}
	return &OrganizationService{
		walker:      walker,
		conflictMgr: conflictMgr,
		indexes:     indexes,
		log:         log,
	}
}

// OrganizeDirectory moves every file under dir to
// <output>/<category>/<name>. Per-file failures are collected in the
// result and do not stop the run.
func (ors *OrganizationService) OrganizeDirectory(ctx context.Context, dir string, opts options.OrganizationOptions) (*types.OrganizationResult, error) {
	start := time.Now()
	if err := common.ValidateDirectory(dir); err != nil {
		return nil, err
	}
	if _, err := options.ParseOrganizeStrategy(string(opts.By)); err != nil || opts.By == "" {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownStrategy, opts.By)
	}
	if _, err := options.ParseConflictStrategy(string(opts.Conflict)); err != nil || opts.Conflict == "" {
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownConflictMode, opts.Conflict)
	}

	output := opts.OutputDir
	if output == "" {
		output = dir
	}
	outputAbs, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory %s: %w", output, err)
	}

	records, _, err := ors.walker.Walk(ctx, dir, opts.Recursive)
	if err != nil {
		return nil, err
	}

	result := &types.OrganizationResult{
		Directory:  dir,
		TotalFiles: len(records),
		DryRun:     opts.DryRun,
		Moves:      make([]types.FileMove, 0),
		Skipped:    make([]string, 0),
		Errors:     make([]string, 0),
	}

	// destinations claimed by earlier moves of a dry run
	planned := make(map[string]struct{})
	exists := PathExists
	if opts.DryRun {
		exists = func(p string) bool {
			if _, ok := planned[p]; ok {
				return true
			}
			return PathExists(p)
		}
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		category, err := Categorize(opts.By, rec)
		if err != nil {
			return nil, err
		}
		destDir := filepath.Join(outputAbs, filepath.FromSlash(category))
		dest := filepath.Join(destDir, rec.Name)
		if dest == rec.Path {
			continue
		}

		if !opts.DryRun {
			if err := os.MkdirAll(destDir, 0o755); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("failed to create %s: %v", destDir, err))
				continue
			}
		}

		final, skip, err := ors.conflictMgr.ResolveConflict(dest, opts.Conflict, exists)
		if err != nil {
			return nil, err
		}
		if skip {
			result.Skipped = append(result.Skipped, rec.Path)
			continue
		}

		if opts.DryRun {
			planned[final] = struct{}{}
		} else if err := moveFile(rec.Path, final); err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		ors.log.Debug().Str("from", rec.Path).Str("to", final).Bool("dry_run", opts.DryRun).Msg("Organize")
		result.Moves = append(result.Moves, types.FileMove{From: rec.Path, To: final, Size: rec.Size})
	}

	if !opts.DryRun && len(result.Moves) > 0 && ors.indexes != nil {
		ors.invalidate(dir, outputAbs)
	}

	ors.log.Info().
		Str("dir", dir).
		Int("files", result.TotalFiles).
		Int("moves", len(result.Moves)).
		Int("skipped", len(result.Skipped)).
		Int("errors", len(result.Errors)).
		Bool("dry_run", opts.DryRun).
		Dur("duration", time.Since(start)).
		Msg("Directory organization completed")
	return result, nil
}

// invalidate drops cached indexes that the moves may have made stale.
func (ors *OrganizationService) invalidate(dirs ...string) {
	for _, d := range dirs {
		key, err := indexing.CanonicalKey(d)
		if err != nil {
			continue
		}
		if keys := ors.indexes.InvalidateTree(key); len(keys) > 0 {
			ors.log.Debug().Strs("keys", keys).Msg("Invalidated indexes after organize")
		}
	}
}

// moveFile renames src to dst, copying across file systems.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return fmt.Errorf("failed to move %s to %s: %w", src, dst, err)
	}
	if err := common.CopyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("copied %s to %s but failed to remove source: %w", src, dst, err)
	}
	return nil
}
