package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errDirectoryRequired = errors.New("directory is required")

// decodeParams unmarshals tool arguments into p. Missing or empty
// arguments leave p at its defaults.
func decodeParams(raw json.RawMessage, p any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func requireDirectory(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errDirectoryRequired
	}
	return nil
}

// ScanStatsParams are the arguments of scan_stats.
type ScanStatsParams struct {
	Directory string `json:"directory"`
	TopN      *int   `json:"top_n,omitempty"`
	Recursive *bool  `json:"recursive,omitempty"`
}

// FindDuplicatesParams are the arguments of find_duplicates.
type FindDuplicatesParams struct {
	Directory string `json:"directory"`
	MinSize   *int64 `json:"min_size,omitempty"`
	Recursive *bool  `json:"recursive,omitempty"`
}

// SearchFilesParams are the arguments of search_files.
type SearchFilesParams struct {
	Directory string `json:"directory"`
	Name      string `json:"name,omitempty"`
	Content   string `json:"content,omitempty"`
	MinSize   string `json:"min_size,omitempty"`
	MaxSize   string `json:"max_size,omitempty"`
	Newer     string `json:"newer,omitempty"`
	Older     string `json:"older,omitempty"`
	Recursive *bool  `json:"recursive,omitempty"`
}

// OrganizeFilesParams are the arguments of organize_files.
type OrganizeFilesParams struct {
	Directory string `json:"directory"`
	By        string `json:"by,omitempty"`
	DryRun    *bool  `json:"dry_run,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Recursive *bool  `json:"recursive,omitempty"`
	Output    string `json:"output,omitempty"`
}

// RebuildIndexParams are the arguments of rebuild_index.
type RebuildIndexParams struct {
	Directory string `json:"directory"`
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
