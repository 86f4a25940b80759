package filesystem

import (
	"context"

	"github.com/ZanzyTHEbar/fiq/fiq/config"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/services"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/traversal"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"
	"github.com/ZanzyTHEbar/fiq/fiq/indexing"

	"github.com/rs/zerolog"
)

// FileSystem wires the walker, the name index and the command services
// together. One instance is shared by every command of a process.
type FileSystem struct {
	config *config.Config

	walker  *traversal.Walker
	indexes *indexing.Manager
	engine  *indexing.Engine

	statsService        *services.StatsService
	duplicateService    *services.DuplicateService
	searchService       *services.SearchService
	organizationService *services.OrganizationService
	indexService        *services.IndexService
}

// New creates the services described by cfg.
func New(cfg *config.Config, log zerolog.Logger) *FileSystem {
	walker := traversal.NewWalker(cfg.Walker, log.With().Str("component", "walker").Logger())
	indexes := indexing.NewManager(indexing.ManagerOptions{
		TTL:          cfg.Index.TTL,
		CacheDir:     cfg.Index.CacheDir,
		BuildWorkers: cfg.Index.BuildWorkers,
		Logger:       log.With().Str("component", "index").Logger(),
	})
	engine := indexing.NewEngine(indexes, walker, log.With().Str("component", "query").Logger())

	searchEngine := engine
	if cfg.Index.Disabled {
		searchEngine = nil
	}

	svcLog := log.With().Str("component", "services").Logger()
	return &FileSystem{
		config:              cfg,
		walker:              walker,
		indexes:             indexes,
		engine:              engine,
		statsService:        services.NewStatsService(walker, svcLog),
		duplicateService:    services.NewDuplicateService(walker, cfg.Walker.Threads, svcLog),
		searchService:       services.NewSearchService(walker, searchEngine, cfg.Walker.Threads, svcLog),
		organizationService: services.NewOrganizationService(walker, services.NewConflictResolverService(), indexes, svcLog),
		indexService:        services.NewIndexService(engine),
	}
}

// Stats summarizes the files under dir.
func (dfs *FileSystem) Stats(ctx context.Context, dir string, opts options.StatsOptions) (*types.StatsResult, error) {
	return dfs.statsService.Scan(ctx, dir, opts)
}

// DuplicatesOptions returns the duplicate defaults with the configured prefix size.
func (dfs *FileSystem) DuplicatesOptions() options.DuplicatesOptions {
	opts := options.DefaultDuplicatesOptions()
	opts.PartialBytes = dfs.config.Duplicates.PartialBytes
	return opts
}

// FindDuplicates groups files under dir with identical content.
func (dfs *FileSystem) FindDuplicates(ctx context.Context, dir string, opts options.DuplicatesOptions) (*types.DuplicatesResult, error) {
	return dfs.duplicateService.Find(ctx, dir, opts)
}

// Search filters the files under dir.
func (dfs *FileSystem) Search(ctx context.Context, dir string, opts options.SearchOptions) (*types.SearchResult, error) {
	return dfs.searchService.Search(ctx, dir, opts)
}

// OrganizeDirectory moves files under dir into category folders.
func (dfs *FileSystem) OrganizeDirectory(ctx context.Context, dir string, opts options.OrganizationOptions) (*types.OrganizationResult, error) {
	return dfs.organizationService.OrganizeDirectory(ctx, dir, opts)
}

// RebuildIndex forces a fresh name index for dir.
func (dfs *FileSystem) RebuildIndex(ctx context.Context, dir string) (*types.RebuildResult, error) {
	return dfs.indexService.Rebuild(ctx, dir)
}

// IndexStatus reports the cached index state of dir.
func (dfs *FileSystem) IndexStatus(dir string) (*types.IndexStatus, error) {
	return dfs.indexService.Status(dir)
}

// ClearIndex drops the cached index of dir from memory and disk.
func (dfs *FileSystem) ClearIndex(dir string) (string, error) {
	return dfs.indexService.Clear(dir)
}

// WalkMetrics returns traversal counters accumulated by this instance.
func (dfs *FileSystem) WalkMetrics() common.MetricsSnapshot { return dfs.walker.Metrics() }

// Indexes exposes the process-wide index cache.
func (dfs *FileSystem) Indexes() *indexing.Manager { return dfs.indexes }

// Config returns the configuration the services were built from.
func (dfs *FileSystem) Config() *config.Config { return dfs.config }

var _ services.FileWalker = (*traversal.Walker)(nil)
