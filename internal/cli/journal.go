package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sadopc/timekeeper/internal/store"
)

func newJournalCmd(g *globals) *cobra.Command {
	var (
		taskID string
		action string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show manual edits of logged time, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := store.JournalFilter{Action: action, Limit: limit}
			if taskID != "" {
				id, err := parseTaskID(taskID)
				if err != nil {
					return err
				}
				filter.TaskID = &id
			}

			e, err := g.load(false)
			if err != nil {
				return err
			}
			defer e.Close()

			entries, err := e.store.ListJournal(filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no journal entries")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, je := range entries {
				rows = append(rows, []string{
					je.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					je.Action,
					je.TaskTitle,
					strconv.FormatUint(uint64(je.TaskID), 10),
					je.Day,
					signedHMS(je.Seconds),
					je.Detail,
				})
			}
			printTable(cmd.OutOrStdout(), []string{"When", "Action", "Task", "ID", "Day", "Time", "Detail"}, rows, 3, 5)
			return nil
		},
	}
	cmd.Flags().StringVar(&taskID, "task", "", "only entries for this task id")
	cmd.Flags().StringVar(&action, "action", "", "only this action (add_time, set_day, reset_today, reallocate, ...)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries")
	return cmd
}

func signedHMS(secs int64) string {
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, secs/3600, secs%3600/60, secs%60)
}
