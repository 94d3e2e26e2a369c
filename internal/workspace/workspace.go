// Package workspace is the command surface of the application. It owns the
// ledger together with the identity of the open save file (path, format,
// password) and the settings store, and serializes every operation on one
// mutex so the one-second tick and user commands never interleave.
package workspace

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/sadopc/timekeeper/internal/clock"
	"github.com/sadopc/timekeeper/internal/crypt"
	"github.com/sadopc/timekeeper/internal/datafile"
	"github.com/sadopc/timekeeper/internal/ledger"
	"github.com/sadopc/timekeeper/internal/store"
)

var (
	ErrNoPath        = errors.New("document has no save file")
	ErrEmptyPassword = errors.New("password must not be empty")
)

// Settings is the part of the settings store the workspace needs.
type Settings interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	GetBool(key string, fallback bool) bool
	TouchRecentFile(path string, encrypted bool) error
	AppendJournal(e store.JournalEntry) (*store.JournalEntry, error)
}

type Workspace struct {
	mu sync.Mutex

	ledger   *ledger.Ledger
	settings Settings
	clock    clock.Clock
	logger   *slog.Logger

	path     string
	kind     datafile.Kind
	password []byte
	salt     [crypt.SaltSize]byte
	dirty    bool
}

func New(settings Settings, c clock.Clock, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Workspace{
		ledger:   ledger.New(c, logger),
		settings: settings,
		clock:    c,
		logger:   logger,
	}
	w.applySavedSort()
	return w
}

func (w *Workspace) today() ledger.Date { return ledger.DateOf(w.clock.Now()) }

// Path returns the current save file, empty for a new document.
func (w *Workspace) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

func (w *Workspace) Encrypted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.kind == datafile.KindEncrypted
}

// Dirty reports unsaved changes.
func (w *Workspace) Dirty() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// Weighted reports the configured default reallocation mode.
func (w *Workspace) Weighted() bool {
	return w.settings.GetBool(store.KeyWeightedReallocation, false)
}

// LastFile returns the last file saved or opened, or "".
func (w *Workspace) LastFile() string {
	v, err := w.settings.GetSetting(store.KeyLastSaveFile)
	if err != nil {
		return ""
	}
	return v
}

func (w *Workspace) applySavedSort() {
	keyName, err := w.settings.GetSetting(store.KeySortKey)
	if err != nil {
		return
	}
	orderName, _ := w.settings.GetSetting(store.KeySortOrder)
	key, _ := ledger.ParseSortKey(keyName)
	order, _ := ledger.ParseSortOrder(orderName)
	w.ledger.Sort(key, order)
}
