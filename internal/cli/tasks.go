package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sadopc/timekeeper/internal/ledger"
)

func newTasksCmd(g *globals) *cobra.Command {
	tasks := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks with today, month, year and total time",
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

			list := e.ws.Tasks()
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tasks")
				return nil
			}
			rows := make([][]string, 0, len(list)+1)
			for _, t := range list {
				rows = append(rows, []string{strconv.FormatUint(uint64(t.ID), 10), t.Title, hms(t.Today), hms(t.ThisMonth), hms(t.ThisYear), hms(t.Total)})
			}
			totals := e.ws.Totals()
			rows = append(rows, []string{"", "all tasks", hms(totals.Today), hms(totals.ThisMonth), hms(totals.ThisYear), ""})
			printTable(cmd.OutOrStdout(), []string{"ID", "Task", "Today", "Month", "Year", "Total"}, rows, 2, 3, 4, 5)
			return nil
		},
	}

	var description string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load(false)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := g.openDocument(cmd, e, true); err != nil {
				return err
			}
			id, err := e.ws.CreateTask(args[0], description)
			if err != nil {
				return err
			}
			if err := e.ws.Save(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d)\n", args[0], id)
			return nil
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "task description")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a task and its logged time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			e, err := g.load(false)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := g.openDocument(cmd, e, false); err != nil {
				return err
			}
			t, err := e.ws.Task(id)
			if err != nil {
				return err
			}
			if err := e.ws.RemoveTask(id); err != nil {
				return err
			}
			if err := e.ws.Save(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %s (%d)\n", t.Title, id)
			return nil
		},
	}

	tasks.AddCommand(add, remove)
	return tasks
}

func parseTaskID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad task id %q: %w", s, ledger.ErrNotFound)
	}
	return uint32(id), nil
}
