package types

import "time"

// WalkStats tracks what a single walk saw.
type WalkStats struct {
	DirsProcessed  int64
	FilesProcessed int64
	ErrorsFound    int64
	Ignored        int64
}

// ExtensionStat aggregates files sharing one extension.
type ExtensionStat struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
	TotalSize int64  `json:"total_size"`
}

// FileEntry is a path with its size.
type FileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// SizeDistribution summarizes file sizes in bytes.
type SizeDistribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	P99    float64 `json:"p99"`
}

// StatsResult is the output of a statistics scan
type StatsResult struct {
	Directory        string           `json:"directory"`
	TotalFiles       int              `json:"total_files"`
	TotalSize        int64            `json:"total_size"`
	ByExtension      []ExtensionStat  `json:"by_extension"`
	LargestFiles     []FileEntry      `json:"largest_files"`
	SizeDistribution SizeDistribution `json:"size_distribution"`
}

// DuplicateGroup is a set of files with identical content.
type DuplicateGroup struct {
	Hash  string   `json:"hash"`
	Size  int64    `json:"size"`
	Files []string `json:"files"`
}

// WastedBytes is the space reclaimable by keeping one copy.
func (g DuplicateGroup) WastedBytes() int64 {
	if len(g.Files) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Files)-1)
}

// DuplicatesResult is the output of duplicate detection
type DuplicatesResult struct {
	Directory         string           `json:"directory"`
	Groups            []DuplicateGroup `json:"groups"`
	TotalFilesScanned int              `json:"total_files_scanned"`
	TotalWastedBytes  int64            `json:"total_wasted_bytes"`
}

// ContentMatch is one matching line in a file.
type ContentMatch struct {
	LineNumber int    `json:"line_number"`
	Line       string `json:"line"`
}

// SearchMatch is one file that passed every filter.
type SearchMatch struct {
	Path           string         `json:"path"`
	Size           int64          `json:"size"`
	Modified       time.Time      `json:"modified"`
	ContentMatches []ContentMatch `json:"content_matches,omitempty"`
}

// SearchResult is the output of a search
type SearchResult struct {
	Directory    string        `json:"directory"`
	Matches      []SearchMatch `json:"matches"`
	TotalMatches int           `json:"total_matches"`
	FilesScanned int           `json:"files_scanned"`
	UsedIndex    bool          `json:"used_index"`
}

// FileMove is one planned or executed move.
type FileMove struct {
	From string `json:"from"`
	To   string `json:"to"`
	Size int64  `json:"size"`
}

// OrganizationResult contains the results of an organization operation
type OrganizationResult struct {
	Directory  string     `json:"directory"`
	TotalFiles int        `json:"total_files"`
	Moves      []FileMove `json:"moves"`
	Skipped    []string   `json:"skipped"`
	DryRun     bool       `json:"dry_run"`
	Errors     []string   `json:"errors"`
}

// IndexStatus describes the cached index of one directory.
type IndexStatus struct {
	Directory string     `json:"directory"`
	CacheFile string     `json:"cache_file"`
	Resident  bool       `json:"resident"`
	OnDisk    bool       `json:"on_disk"`
	Valid     bool       `json:"valid"`
	BuiltAt   *time.Time `json:"built_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Entries   int        `json:"entries"`
	Trigrams  int        `json:"trigrams"`
}

// RebuildResult reports a forced index rebuild.
type RebuildResult struct {
	Directory string    `json:"directory"`
	Entries   int       `json:"entries"`
	Trigrams  int       `json:"trigrams"`
	BuiltAt   time.Time `json:"built_at"`
	CacheFile string    `json:"cache_file"`
}
