package cli

import (
	"fmt"
	"strconv"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/common"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"

	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	opts := options.DefaultStatsOptions()

	cmd := &cobra.Command{
		Use:   "stats [DIR]",
		Short: "Summarize file counts and sizes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.fs.Stats(cmd.Context(), dirArg(args), opts)
			if err != nil {
				return err
			}
			if ok, err := a.out.JSON(res); ok {
				return err
			}
			printStats(a.out, res)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.TopN, "top", "n", opts.TopN, "Number of largest files to list")
	cmd.Flags().BoolVarP(&opts.Recursive, "recursive", "r", opts.Recursive, "Descend into subdirectories")
	return cmd
}

func printStats(p *Printer, res *types.StatsResult) {
	p.Header("Directory statistics")
	p.KeyValue("Directory", CodeStyle.Render(res.Directory))
	p.KeyValue("Files", strconv.Itoa(res.TotalFiles))
	p.KeyValue("Total size", common.FormatSize(res.TotalSize))

	if len(res.ByExtension) > 0 {
		p.Header("By extension")
		t := NewTable("EXTENSION", "FILES", "SIZE")
		for _, e := range res.ByExtension {
			t.AddRow(e.Extension, strconv.Itoa(e.Count), common.FormatSize(e.TotalSize))
		}
		p.Table(t)
	}

	if len(res.LargestFiles) > 0 {
		p.Header("Largest files")
		t := NewTable("SIZE", "PATH")
		for _, f := range res.LargestFiles {
			t.AddRow(common.FormatSize(f.Size), f.Path)
		}
		p.Table(t)
	}

	d := res.SizeDistribution
	p.Header("Size distribution")
	p.KeyValue("Mean", formatBytes(d.Mean))
	p.KeyValue("Median", formatBytes(d.Median))
	p.KeyValue("P90", formatBytes(d.P90))
	p.KeyValue("P99", formatBytes(d.P99))
}

func formatBytes(v float64) string {
	if v < 0 {
		return fmt.Sprintf("%.0f B", v)
	}
	return common.FormatSize(int64(v + 0.5))
}
