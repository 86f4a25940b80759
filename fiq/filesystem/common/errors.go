package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Common error types used across filesystem packages
var (
	ErrPathEmpty           = errors.New("path cannot be empty")
	ErrPathInvalid         = errors.New("path contains invalid characters")
	ErrNotDirectory        = errors.New("path is not a directory")
	ErrSourceNotExist      = errors.New("source does not exist")
	ErrInvalidSize         = errors.New("invalid size")
	ErrInvalidTime         = errors.New("invalid time")
	ErrUnknownStrategy     = errors.New("unknown organize strategy")
	ErrUnknownConflictMode = errors.New("unknown conflict mode")
)

// ValidateContextCancellation checks if context is cancelled and returns appropriate error
func ValidateContextCancellation(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// ValidateDirectory checks that path names an existing directory.
func ValidateDirectory(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrPathEmpty
	}
	if strings.Contains(path, "\x00") {
		return ErrPathInvalid
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotExist, path)
		}
		return fmt.Errorf("failed to access directory %s: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return nil
}
