package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// ToolHandler is the signature of every fiq tool.
type ToolHandler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Server exposes the fiq commands as MCP tools. Concurrent calls share
// one FileSystem and so one index cache.
type Server struct {
	server *mcp.Server
	fs     *filesystem.FileSystem
	log    zerolog.Logger
}

// NewServer creates a server with every tool registered.
func NewServer(fs *filesystem.FileSystem, name, version string, log zerolog.Logger) *Server {
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
		fs:     fs,
		log:    log,
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying SDK server.
func (s *Server) MCPServer() *mcp.Server { return s.server }

// Run serves JSON-RPC over stdin and stdout until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info().Msg("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func directoryProperty() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: "Directory to operate on"}
}

func recursiveProperty() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: "Descend into subdirectories", Default: json.RawMessage("true")}
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "scan_stats",
		Description: "Summarize a directory: file count, total size, per-extension breakdown, largest files and size distribution.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory": directoryProperty(),
				"top_n": {
					Type:        "integer",
					Description: "Number of largest files to list",
					Default:     json.RawMessage("10"),
				},
				"recursive": recursiveProperty(),
			},
			Required: []string{"directory"},
		},
	}, s.withRecovery("scan_stats", s.handleScanStats))

	s.server.AddTool(&mcp.Tool{
		Name:        "find_duplicates",
		Description: "Find files with identical content. Groups are sorted by reclaimable bytes.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory": directoryProperty(),
				"min_size": {
					Type:        "integer",
					Description: "Ignore files smaller than this many bytes",
					Default:     json.RawMessage("1"),
				},
				"recursive": recursiveProperty(),
			},
			Required: []string{"directory"},
		},
	}, s.withRecovery("find_duplicates", s.handleFindDuplicates))

	s.server.AddTool(&mcp.Tool{
		Name:        "search_files",
		Description: "Search files by name glob, content substring, size and modification time. Name globs with a literal run of 3 or more characters are answered from a cached trigram index.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory": directoryProperty(),
				"name":      {Type: "string", Description: "Glob matched against file names, e.g. '*.rs'"},
				"content":   {Type: "string", Description: "Case-insensitive substring to look for inside files"},
				"min_size":  {Type: "string", Description: "Minimum size, e.g. '1KB', '10MB'"},
				"max_size":  {Type: "string", Description: "Maximum size, e.g. '1GB'"},
				"newer":     {Type: "string", Description: "Modified at or after: 'YYYY-MM-DD' or relative '7d', '24h', '30m'"},
				"older":     {Type: "string", Description: "Modified at or before: 'YYYY-MM-DD' or relative '7d', '24h', '30m'"},
				"recursive": recursiveProperty(),
			},
			Required: []string{"directory"},
		},
	}, s.withRecovery("search_files", s.handleSearchFiles))

	s.server.AddTool(&mcp.Tool{
		Name:        "organize_files",
		Description: "Move files into category folders by type, date or size. Defaults to a dry run that only reports the planned moves.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory": directoryProperty(),
				"by": {
					Type:        "string",
					Description: "Grouping strategy",
					Enum:        []any{"type", "date", "size"},
					Default:     json.RawMessage(`"type"`),
				},
				"dry_run": {
					Type:        "boolean",
					Description: "Report planned moves without touching files",
					Default:     json.RawMessage("true"),
				},
				"mode": {
					Type:        "string",
					Description: "What to do when the destination exists",
					Enum:        []any{"skip", "rename", "overwrite"},
					Default:     json.RawMessage(`"rename"`),
				},
				"recursive": recursiveProperty(),
				"output":    {Type: "string", Description: "Target directory; defaults to the source directory"},
			},
			Required: []string{"directory"},
		},
	}, s.withRecovery("organize_files", s.handleOrganizeFiles))

	s.server.AddTool(&mcp.Tool{
		Name:        "rebuild_index",
		Description: "Discard the cached name index of a directory and build a fresh one.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"directory": directoryProperty(),
			},
			Required: []string{"directory"},
		},
	}, s.withRecovery("rebuild_index", s.handleRebuildIndex))
}

// withRecovery turns a panic in a tool into an error result.
func (s *Server) withRecovery(operation string, handler ToolHandler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error().
					Str("operation", operation).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic in tool handler")
				result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
			}
		}()
		return handler(ctx, req)
	}
}
