package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timekeeper/internal/datafile"
)

func newRestoreBackupCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "restore-backup",
		Short: "Replace the time log with its .bak copy",
		Long: `Replace the time log with the backup written before the last save.

The restored file is opened afterwards to check that it loads, asking for
its password when it is encrypted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.load(false)
			if err != nil {
				return err
			}
			defer e.Close()

			path := g.dataPath(e)
			if path == "" {
				return errNoDataFile
			}
			// The current file may be unreadable, so restore before opening.
			if err := datafile.RestoreBackup(path); err != nil {
				return err
			}
			e.logger.Info("backup restored", "path", path)
			if err := g.openDocument(cmd, e, false); err != nil {
				return fmt.Errorf("restored %s but it does not open: %w", path, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "restored %s from %s (%d task(s))\n", path, datafile.BackupPath(path), len(e.ws.Tasks()))
			return nil
		},
	}
}
