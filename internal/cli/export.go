package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timekeeper/internal/export"
	"github.com/sadopc/timekeeper/internal/ledger"
)

func newExportCmd(g *globals) *cobra.Command {
	exp := &cobra.Command{Use: "export", Short: "Export decimal hours per task and day"}

	formats := []struct {
		name  string
		short string
		write func(ledger.HourGrid, string) error
	}{
		{"csv", "Export a CSV sheet, one column per task", export.ToCSV},
		{"json", "Export JSON with per-day entries", export.ToJSON},
	}

	for _, f := range formats {
		var output string
		sub := &cobra.Command{
			Use:   f.name,
			Short: f.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				e, err := g.load(false)
				if err != nil {
					return err
				}
				defer e.Close()
				if err := g.openDocument(cmd, e, false); err != nil {
					return err
				}

				grid, err := e.ws.HourGrid(ledger.Date{}, ledger.Date{}, nil)
				if err != nil {
					return err
				}
				path := output
				if path == "" {
					path = export.DefaultFileName(e.ws.Path(), f.name, g.clock.Now())
				}
				if err := f.write(grid, path); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d task(s), %d day(s) to %s\n", len(grid.Tasks), len(grid.Dates), path)
				return nil
			},
		}
		sub.Flags().StringVarP(&output, "output", "o", "", "output file (default next to the time log)")
		exp.AddCommand(sub)
	}
	return exp
}
