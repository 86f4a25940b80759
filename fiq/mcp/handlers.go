package mcp

import (
	"context"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleScanStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "scan_stats"
	var p ScanStatsParams
	if err := decodeParams(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(op, err)
	}
	if err := requireDirectory(p.Directory); err != nil {
		return createErrorResponse(op, err)
	}

	opts := options.DefaultStatsOptions()
	opts.Recursive = boolOr(p.Recursive, true)
	if p.TopN != nil {
		opts.TopN = *p.TopN
	}

	result, err := s.fs.Stats(ctx, p.Directory, opts)
	if err != nil {
		return createErrorResponse(op, err)
	}
	return createJSONResponse(result)
}

func (s *Server) handleFindDuplicates(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "find_duplicates"
	var p FindDuplicatesParams
	if err := decodeParams(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(op, err)
	}
	if err := requireDirectory(p.Directory); err != nil {
		return createErrorResponse(op, err)
	}

	opts := s.fs.DuplicatesOptions()
	opts.Recursive = boolOr(p.Recursive, true)
	if p.MinSize != nil {
		opts.MinSize = *p.MinSize
	}

	result, err := s.fs.FindDuplicates(ctx, p.Directory, opts)
	if err != nil {
		return createErrorResponse(op, err)
	}
	return createJSONResponse(result)
}

func (s *Server) handleSearchFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "search_files"
	var p SearchFilesParams
	if err := decodeParams(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(op, err)
	}
	if err := requireDirectory(p.Directory); err != nil {
		return createErrorResponse(op, err)
	}

	result, err := s.fs.Search(ctx, p.Directory, options.SearchOptions{
		Recursive: boolOr(p.Recursive, true),
		Name:      p.Name,
		Content:   p.Content,
		MinSize:   p.MinSize,
		MaxSize:   p.MaxSize,
		Newer:     p.Newer,
		Older:     p.Older,
	})
	if err != nil {
		return createErrorResponse(op, err)
	}
	return createJSONResponse(result)
}

func (s *Server) handleOrganizeFiles(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "organize_files"
	var p OrganizeFilesParams
	if err := decodeParams(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(op, err)
	}
	if err := requireDirectory(p.Directory); err != nil {
		return createErrorResponse(op, err)
	}

	by, err := options.ParseOrganizeStrategy(p.By)
	if err != nil {
		return createErrorResponse(op, err)
	}
	mode, err := options.ParseConflictStrategy(p.Mode)
	if err != nil {
		return createErrorResponse(op, err)
	}

	result, err := s.fs.OrganizeDirectory(ctx, p.Directory, options.OrganizationOptions{
		Recursive: boolOr(p.Recursive, true),
		By:        by,
		DryRun:    boolOr(p.DryRun, true),
		Conflict:  mode,
		OutputDir: p.Output,
	})
	if err != nil {
		return createErrorResponse(op, err)
	}
	return createJSONResponse(result)
}

func (s *Server) handleRebuildIndex(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const op = "rebuild_index"
	var p RebuildIndexParams
	if err := decodeParams(req.Params.Arguments, &p); err != nil {
		return createErrorResponse(op, err)
	}
	if err := requireDirectory(p.Directory); err != nil {
		return createErrorResponse(op, err)
	}

	result, err := s.fs.RebuildIndex(ctx, p.Directory)
	if err != nil {
		return createErrorResponse(op, err)
	}
	return createJSONResponse(result)
}
