package cli

import (
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/options"
	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"

	"github.com/spf13/cobra"
)

func newOrganizeCmd(a *app) *cobra.Command {
	var (
		by, mode string
		opts     = options.DefaultOrganizationOptions()
	)

	cmd := &cobra.Command{
		Use:   "organize [DIR]",
		Short: "Move files into category folders",
		Example: `  fiq organize --dry-run ~/Downloads
  fiq organize --by date --mode skip --output ~/Sorted ~/Pictures`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if opts.By, err = options.ParseOrganizeStrategy(by); err != nil {
				return err
			}
			if opts.Conflict, err = options.ParseConflictStrategy(mode); err != nil {
				return err
			}

			res, err := a.fs.OrganizeDirectory(cmd.Context(), dirArg(args), opts)
			if err != nil {
				return err
			}
			if ok, err := a.out.JSON(res); ok {
				return err
			}
			return printOrganize(a.out, res)
		},
	}
	f := cmd.Flags()
	f.StringVar(&by, "by", string(options.OrganizeByType), "Grouping strategy: type, date or size")
	f.StringVar(&mode, "mode", string(options.ConflictRename), "When the destination exists: skip, rename or overwrite")
	f.BoolVar(&opts.DryRun, "dry-run", false, "Only report the planned moves")
	f.StringVar(&opts.OutputDir, "output", "", "Target directory (default: organize in place)")
	f.BoolVarP(&opts.Recursive, "recursive", "r", true, "Descend into subdirectories")
	return cmd
}

var errOrganizePartial = errors.New("some files could not be moved")

func printOrganize(p *Printer, res *types.OrganizationResult) error {
	title := "Organized files"
	if res.DryRun {
		title = "Planned moves"
	}
	p.Header(title)

	for _, m := range res.Moves {
		p.Info(fmt.Sprintf("%s %s %s", m.From, DimStyle.Render(SymbolInfo), CodeStyle.Render(m.To)))
	}
	for _, s := range res.Skipped {
		p.Warning("skipped " + s)
	}
	for _, e := range res.Errors {
		p.Error(errors.New(e))
	}

	p.Newline()
	p.KeyValue("Files", fmt.Sprint(res.TotalFiles))
	p.KeyValue("Moves", fmt.Sprint(len(res.Moves)))
	p.KeyValue("Skipped", fmt.Sprint(len(res.Skipped)))
	if res.DryRun && len(res.Moves) > 0 {
		p.Hint("Run without --dry-run to apply")
	}
	if len(res.Errors) > 0 {
		return fmt.Errorf("%w: %d errors", errOrganizePartial, len(res.Errors))
	}
	return nil
}
