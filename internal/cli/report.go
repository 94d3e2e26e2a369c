package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/timekeeper/internal/ledger"
)

func newReportCmd(g *globals) *cobra.Command {
	report := &cobra.Command{Use: "report", Short: "Per-task time for a day, month or year"}

	run := func(build func(e *env, args []string) (ledger.Report, string, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			e, err := g.load(false)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := g.openDocument(cmd, e, false); err != nil {
				return err
			}
			r, title, err := build(e, args)
			if err != nil {
				return err
			}
			printReport(cmd, title, r)
			return nil
		}
	}

	report.AddCommand(&cobra.Command{
		Use:   "daily [YYYY-MM-DD]",
		Short: "Report one day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(func(e *env, args []string) (ledger.Report, string, error) {
			day := e.ws.Today()
			if len(args) == 1 {
				t, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
				if err != nil {
					return ledger.Report{}, "", fmt.Errorf("bad date %q: want YYYY-MM-DD", args[0])
				}
				day = ledger.DateOf(t)
			}
			return e.ws.DailyReport(day), day.String(), nil
		}),
	})

	report.AddCommand(&cobra.Command{
		Use:   "monthly [YYYY-MM]",
		Short: "Report one month (default this month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(func(e *env, args []string) (ledger.Report, string, error) {
			today := e.ws.Today()
			year, month := today.Year, today.Month
			if len(args) == 1 {
				t, err := time.ParseInLocation("2006-01", args[0], time.Local)
				if err != nil {
					return ledger.Report{}, "", fmt.Errorf("bad month %q: want YYYY-MM", args[0])
				}
				year, month = t.Year(), t.Month()
			}
			return e.ws.MonthlyReport(year, month), fmt.Sprintf("%s %d", month, year), nil
		}),
	})

	report.AddCommand(&cobra.Command{
		Use:   "yearly [YYYY]",
		Short: "Report one year (default this year)",
		Args:  cobra.MaximumNArgs(1),
		RunE: run(func(e *env, args []string) (ledger.Report, string, error) {
			year := e.ws.Today().Year
			if len(args) == 1 {
				y, err := strconv.Atoi(args[0])
				if err != nil || y < 1 || y > 9999 {
					return ledger.Report{}, "", fmt.Errorf("bad year %q: want YYYY", args[0])
				}
				year = y
			}
			return e.ws.YearlyReport(year), strconv.Itoa(year), nil
		}),
	})
	return report
}

func printReport(cmd *cobra.Command, title string, r ledger.Report) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, headerStyle.Render(title))

	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.Time.Elapsed == 0 {
			continue
		}
		share := 0.0
		if r.Total.Elapsed > 0 {
			share = float64(row.Time.Elapsed) / float64(r.Total.Elapsed) * 100
		}
		rows = append(rows, []string{row.Title, hms(row.Time), fmt.Sprintf("%.2f", float64(row.Time.Elapsed)/3600), fmt.Sprintf("%.1f%%", share)})
	}
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, mutedStyle.Render("nothing logged"))
		return
	}
	printTable(out, []string{"Task", "Time", "Hours", "Share"}, rows, 1, 2, 3)
	_, _ = fmt.Fprintf(out, "total %s over %d day(s), %s per day\n", hms(r.Total), r.DaysWorked, hms(r.AveragePerDay()))
}
