package services

import (
	"context"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"
)

// FileWalker lists the regular files below a directory.
type FileWalker interface {
	Walk(ctx context.Context, root string, recursive bool) ([]indexing.FileRecord, types.WalkStats, error)
}
