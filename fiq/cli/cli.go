package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	internal "github.com/ZanzyTHEbar/fiq/fiq"
	"github.com/ZanzyTHEbar/fiq/fiq/config"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem"
	"github.com/ZanzyTHEbar/fiq/fiq/mcp"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	logLevel   string
	jsonOutput bool
	mcpMode    bool

	cfg *config.Config
	log zerolog.Logger
	fs  *filesystem.FileSystem
	out *Printer
}

// setup loads configuration and wires the services once per invocation.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.cfg = cfg
	a.log = internal.GetLeveledLogger(level)
	a.fs = filesystem.New(cfg, a.log)
	a.out = NewPrinter(cmd.OutOrStdout(), a.jsonOutput)
	return nil
}

// runMCP serves the tools on stdio until ctx ends.
func (a *app) runMCP(ctx context.Context) error {
	srv := mcp.NewServer(a.fs, internal.DefaultAppName, internal.DefaultAppVersion, a.log.With().Str("component", "mcp").Logger())
	return srv.Run(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   internal.DefaultAppName,
		Short: "Fast file queries, duplicate detection and organization",
		Long: BrandStyle.Render(internal.DefaultAppName) + ` - fast file queries

Summarize directories, find duplicate files, search by name, content,
size and date, and organize files into category folders. Name searches
are answered from a cached trigram index of file names.`,
		Version:       internal.DefaultAppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.mcpMode {
				return a.runMCP(cmd.Context())
			}
			return cmd.Help()
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("  %s version %s\n", BrandStyle.Render(internal.DefaultAppName), internal.DefaultAppVersion))

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default searches ./config.yaml, ~/.config/fiq, /etc/fiq)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format")
	root.Flags().BoolVar(&a.mcpMode, "mcp", false, "Run as an MCP server on stdio")

	root.AddCommand(
		newStatsCmd(a),
		newDuplicatesCmd(a),
		newSearchCmd(a),
		newOrganizeCmd(a),
		newIndexCmd(a),
		newMCPCmd(a),
	)
	return root
}

// Execute runs the CLI. Errors are printed to stderr before being returned.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		NewPrinter(os.Stderr, false).Error(err)
		return err
	}
	return nil
}

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMCP(cmd.Context())
		},
	}
}

// dirArg returns the directory argument, defaulting to the working directory.
func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
