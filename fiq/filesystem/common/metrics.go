package common

import (
	"sync"
	"time"
)

// DirectoryMetrics accumulates traversal counters across walks. It is safe
// for concurrent use.
type DirectoryMetrics struct {
	mu sync.RWMutex

	totalTraversals int64
	failed          int64
	totalFiles      int64
	totalDirs       int64
	averageTime     time.Duration
	lastTraversal   time.Time
}

// MetricsSnapshot is a point-in-time copy of DirectoryMetrics.
type MetricsSnapshot struct {
	TotalTraversals  int64         `json:"total_traversals"`
	FailedTraversals int64         `json:"failed_traversals"`
	TotalFiles       int64         `json:"total_files"`
	TotalDirectories int64         `json:"total_directories"`
	AverageTime      time.Duration `json:"average_time"`
	LastTraversal    time.Time     `json:"last_traversal"`
}

// RecordTraversal adds one walk that began at start.
func (dm *DirectoryMetrics) RecordTraversal(start time.Time, files, dirs int64, success bool) {
	duration := time.Since(start)

	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.totalTraversals++
	if !success {
		dm.failed++
	}
	dm.totalFiles += files
	dm.totalDirs += dirs
	// rolling average
	n := time.Duration(dm.totalTraversals)
	dm.averageTime = (dm.averageTime*(n-1) + duration) / n
	dm.lastTraversal = time.Now()
}

// Snapshot returns the current counters.
func (dm *DirectoryMetrics) Snapshot() MetricsSnapshot {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return MetricsSnapshot{
		TotalTraversals:  dm.totalTraversals,
		FailedTraversals: dm.failed,
		TotalFiles:       dm.totalFiles,
		TotalDirectories: dm.totalDirs,
		AverageTime:      dm.averageTime,
		LastTraversal:    dm.lastTraversal,
	}
}
