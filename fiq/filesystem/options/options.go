package options

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
)

// ConflictStrategy defines how to handle an existing destination file
type ConflictStrategy string

const (
	ConflictOverwrite ConflictStrategy = "overwrite"
	ConflictSkip      ConflictStrategy = "skip"
	ConflictRename    ConflictStrategy = "rename"
)

// ParseConflictStrategy accepts skip, rename or overwrite in any case.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch c := ConflictStrategy(strings.ToLower(strings.TrimSpace(s))); c {
	case ConflictOverwrite, ConflictSkip, ConflictRename:
		return c, nil
	case "":
		return ConflictRename, nil
	default:
		return "", fmt.Errorf("%w: %q (expected skip, rename or overwrite)", common.ErrUnknownConflictMode, s)
	}
}

// OrganizeStrategy selects how files are grouped into category folders.
type OrganizeStrategy string

const (
	OrganizeByType OrganizeStrategy = "type"
	OrganizeByDate OrganizeStrategy = "date"
	OrganizeBySize OrganizeStrategy = "size"
)

// ParseOrganizeStrategy accepts type, date or size in any case.
func ParseOrganizeStrategy(s string) (OrganizeStrategy, error) {
	switch o := OrganizeStrategy(strings.ToLower(strings.TrimSpace(s))); o {
	case OrganizeByType, OrganizeByDate, OrganizeBySize:
		return o, nil
	case "":
		return OrganizeByType, nil
	default:
		return "", fmt.Errorf("%w: %q (expected type, date or size)", common.ErrUnknownStrategy, s)
	}
}

// StatsOptions configures a directory statistics scan
type StatsOptions struct {
	Recursive bool
	TopN      int // number of largest files to report
}

// DuplicatesOptions configures duplicate detection
type DuplicatesOptions struct {
	Recursive    bool
	MinSize      int64 // files smaller than this are ignored
	PartialBytes int64 // prefix hashed before the full-content pass; 0 disables it
}

// SearchOptions holds the raw search filters. Sizes and times are
// strings as typed by the user and parsed by the search service.
type SearchOptions struct {
	Recursive bool
	Name      string
	Content   string
	MinSize   string
	MaxSize   string
	Newer     string
	Older     string
}

// OrganizationOptions configures file organization operations
type OrganizationOptions struct {
	Recursive bool
	By        OrganizeStrategy
	DryRun    bool             // Preview operations without executing
	Conflict  ConflictStrategy // How to handle file conflicts
	OutputDir string           // Target directory; empty organizes in place
}

// DefaultStatsOptions returns the stats defaults.
func DefaultStatsOptions() StatsOptions {
	return StatsOptions{Recursive: true, TopN: 10}
}

// DefaultDuplicatesOptions returns the duplicates defaults.
func DefaultDuplicatesOptions() DuplicatesOptions {
	return DuplicatesOptions{Recursive: true, MinSize: 1, PartialBytes: 4096}
}

// DefaultOrganizationOptions returns the organize defaults. Dry run is off;
// callers that want a preview say so.
func DefaultOrganizationOptions() OrganizationOptions {
	return OrganizationOptions{Recursive: true, By: OrganizeByType, Conflict: ConflictRename}
}
