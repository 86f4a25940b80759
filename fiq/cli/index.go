package cli

import (
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/fiq/fiq/filesystem/types"

	"github.com/spf13/cobra"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Manage the cached file-name index",
	}

	buildCmd := &cobra.Command{
		Use:   "build [DIR]",
		Short: "Discard the cached index and build a fresh one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.fs.RebuildIndex(cmd.Context(), dirArg(args))
			if err != nil {
				return err
			}
			if ok, err := a.out.JSON(res); ok {
				return err
			}
			a.out.Successf("Indexed %d files (%d trigrams)", res.Entries, res.Trigrams)
			a.out.KeyValue("Directory", CodeStyle.Render(res.Directory))
			a.out.KeyValue("Cache file", res.CacheFile)
			a.out.KeyValue("Expires", res.BuiltAt.Add(a.cfg.Index.TTL).Local().Format(time.DateTime))
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status [DIR]",
		Short: "Show the cached index state without building",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.fs.IndexStatus(dirArg(args))
			if err != nil {
				return err
			}
			if ok, err := a.out.JSON(res); ok {
				return err
			}
			printIndexStatus(a.out, res)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear [DIR]",
		Short: "Drop the cached index from memory and disk",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.fs.ClearIndex(dirArg(args))
			if err != nil {
				return err
			}
			if ok, err := a.out.JSON(map[string]any{"directory": key, "cleared": true}); ok {
				return err
			}
			a.out.Successf("Cleared index for %s", CodeStyle.Render(key))
			return nil
		},
	}

	cmd.AddCommand(buildCmd, statusCmd, clearCmd)
	return cmd
}

func printIndexStatus(p *Printer, s *types.IndexStatus) {
	p.Header("Index status")
	p.KeyValue("Directory", CodeStyle.Render(s.Directory))
	p.KeyValue("Cache file", s.CacheFile)
	p.KeyValue("On disk", yesNo(s.OnDisk))
	p.KeyValue("Resident", yesNo(s.Resident))
	if !s.Valid {
		p.KeyValue("Valid", WarningStyle.Render("no"))
		p.Hint("Run 'fiq index build' or any name search to build it")
		return
	}
	p.KeyValue("Valid", SuccessStyle.Render("yes"))
	p.KeyValue("Built", s.BuiltAt.Local().Format(time.DateTime))
	p.KeyValue("Expires", s.ExpiresAt.Local().Format(time.DateTime))
	p.KeyValue("Entries", fmt.Sprint(s.Entries))
	p.KeyValue("Trigrams", fmt.Sprint(s.Trigrams))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
