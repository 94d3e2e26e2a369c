package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/timekeeper/internal/tui"
)

func runTUI(cmd *cobra.Command, g *globals) error {
	e, err := g.load(true)
	if err != nil {
		return err
	}
	defer e.Close()

	opts := tui.Options{
		PollInterval:     e.cfg.Poll(),
		AutosaveInterval: e.cfg.Autosave(),
		Clock:            g.clock,
	}

	// An explicitly named file that does not exist yet is created. A stale
	// last-file entry just starts an empty document.
	explicit := g.dataFile != "" || e.cfg.DataFile != ""
	path := g.dataPath(e)
	switch {
	case path == "":
	case !fileExists(path):
		if explicit {
			if err := e.ws.SaveAs(path); err != nil {
				return err
			}
		} else {
			e.logger.Warn("last file is gone", "path", path)
		}
	default:
		locked, err := e.ws.NeedsPassword(path)
		if err != nil {
			return err
		}
		if locked {
			opts.Unlock = path
		} else if err := e.ws.Open(path, nil); err != nil {
			return err
		}
	}

	p := tea.NewProgram(tui.NewApp(e.ws, e.store, opts), tea.WithAltScreen(), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
	_, err = p.Run()
	return err
}
