package cli

import (
	"fmt"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	opts := options.SearchOptions{Recursive: true}

	cmd := &cobra.Command{
		Use:   "search [DIR]",
		Short: "Search files by name, content, size and date",
		Example: `  fiq search --name '*.rs' ~/src
  fiq search --content TODO --newer 7d .
  fiq search --min-size 10MB --older 2024-01-01 /data`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.fs.Search(cmd.Context(), dirArg(args), opts)
			if err != nil {
				return err
			}
			if ok, err := a.out.JSON(res); ok {
				return err
			}
			printSearch(a.out, res)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Name, "name", "", "Glob matched against file names")
	f.StringVar(&opts.Content, "content", "", "Case-insensitive substring to find inside files")
	f.StringVar(&opts.MinSize, "min-size", "", "Minimum size, e.g. 1KB or 10MB")
	f.StringVar(&opts.MaxSize, "max-size", "", "Maximum size, e.g. 1GB")
	f.StringVar(&opts.Newer, "newer", "", "Modified at or after YYYY-MM-DD or Nd/Nh/Nm ago")
	f.StringVar(&opts.Older, "older", "", "Modified at or before YYYY-MM-DD or Nd/Nh/Nm ago")
	f.BoolVarP(&opts.Recursive, "recursive", "r", true, "Descend into subdirectories")
	return cmd
}

func printSearch(p *Printer, res *types.SearchResult) {
	p.Header("Search results")
	for _, m := range res.Matches {
		p.Info(fmt.Sprintf("%s  %s", CodeStyle.Render(m.Path), DimStyle.Render(common.FormatSize(m.Size))))
		for _, cm := range m.ContentMatches {
			p.Indented(fmt.Sprintf("%s %s", DimStyle.Render(fmt.Sprintf("%5d:", cm.LineNumber)), cm.Line), 3)
		}
	}

	source := "walk"
	if res.UsedIndex {
		source = "index"
	}
	p.Newline()
	p.KeyValue("Matches", fmt.Sprint(res.TotalMatches))
	p.KeyValue("Scanned", fmt.Sprintf("%d (%s)", res.FilesScanned, source))
}
