// Package cli wires the timekeeper commands. Running the binary without a
// subcommand starts the terminal UI.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sadopc/timekeeper/internal/clock"
	"github.com/sadopc/timekeeper/internal/config"
	"github.com/sadopc/timekeeper/internal/logging"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/workspace"
)

var errNoDataFile = errors.New("no data file: pass --file or set data_file in the config")

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	dataFile   string

	// Lazily wraps the command's stdin for piped passwords.
	lines *bufio.Reader

	// Swapped in tests.
	clock clock.Clock
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	g := &globals{clock: clock.Real()}

	root := &cobra.Command{
		Use:           "timekeeper",
		Short:         "Track time per task by day, month and year",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, g)
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default ~/.config/timekeeper/config.yaml)")
	root.PersistentFlags().StringVarP(&g.dataFile, "file", "f", "", "time log to open")

	root.AddCommand(newTasksCmd(g))
	root.AddCommand(newReportCmd(g))
	root.AddCommand(newExportCmd(g))
	root.AddCommand(newPasswdCmd(g))
	root.AddCommand(newDecryptCmd(g))
	root.AddCommand(newJournalCmd(g))
	root.AddCommand(newRestoreBackupCmd(g))
	return root
}

// env is everything a command needs, built from the configuration.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	ws     *workspace.Workspace

	closers []func()
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// load reads the configuration and opens the settings store. Interactive
// sessions without a log file discard records so they do not draw over
// the terminal UI.
func (g *globals) load(interactive bool) (*env, error) {
	path, err := config.Resolve(g.configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	switch {
	case interactive && cfg.LogFile == "":
		e.logger = logging.Discard()
	default:
		logger, closeLog, err := logging.New(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		e.logger = logger
		e.closers = append(e.closers, closeLog)
	}

	s, err := store.New(cfg.SettingsDB)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open settings: %w", err)
	}
	e.closers = append(e.closers, func() { s.Close() })
	e.store = s
	e.ws = workspace.New(s, g.clock, e.logger)
	return e, nil
}

// dataPath picks the file to work on: --file, then the config, then the
// last saved file.
func (g *globals) dataPath(e *env) string {
	switch {
	case g.dataFile != "":
		return g.dataFile
	case e.cfg.DataFile != "":
		return e.cfg.DataFile
	}
	return e.ws.LastFile()
}

// openDocument opens the data file, asking for the password when it is
// encrypted. With create set a missing file starts a new document there.
func (g *globals) openDocument(cmd *cobra.Command, e *env, create bool) error {
	path := g.dataPath(e)
	if path == "" {
		return errNoDataFile
	}
	if create && !fileExists(path) {
		return e.ws.SaveAs(path)
	}
	locked, err := e.ws.NeedsPassword(path)
	if err != nil {
		return err
	}
	var password []byte
	if locked {
		password, err = g.readPassword(cmd, "Password: ")
		if err != nil {
			return err
		}
		defer clear(password)
	}
	return e.ws.Open(path, password)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
