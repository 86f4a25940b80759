package cli

import (
	"fmt"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"

	"github.com/spf13/cobra"
)

func newDuplicatesCmd(a *app) *cobra.Command {
	var (
		minSize   int64
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "duplicates [DIR]",
		Short: "Find files with identical content",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.fs.DuplicatesOptions()
			opts.MinSize = minSize
			opts.Recursive = recursive

			res, err := a.fs.FindDuplicates(cmd.Context(), dirArg(args), opts)
			if err != nil {
				return err
			}
			if ok, err := a.out.JSON(res); ok {
				return err
			}
			printDuplicates(a.out, res)
			return nil
		},
	}
	cmd.Flags().Int64Var(&minSize, "min-size", 1, "Ignore files smaller than this many bytes")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Descend into subdirectories")
	return cmd
}

func printDuplicates(p *Printer, res *types.DuplicatesResult) {
	p.Header("Duplicate files")
	if len(res.Groups) == 0 {
		p.Success(fmt.Sprintf("No duplicates among %d files", res.TotalFilesScanned))
		return
	}

	for _, g := range res.Groups {
		hash := g.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		p.Info(fmt.Sprintf("%s  %s x %d  %s",
			CodeStyle.Render(hash),
			common.FormatSize(g.Size),
			len(g.Files),
			DimStyle.Render("wasted "+common.FormatSize(g.WastedBytes())),
		))
		for _, f := range g.Files {
			p.Bullet(f)
		}
		p.Newline()
	}

	p.KeyValue("Groups", fmt.Sprint(len(res.Groups)))
	p.KeyValue("Scanned", fmt.Sprint(res.TotalFilesScanned))
	p.KeyValue("Wasted", common.FormatSize(res.TotalWastedBytes))
}
