package workspace

import (
	"errors"
	"fmt"

	"github.com/sadopc/timekeeper/internal/crypt"
	"github.com/sadopc/timekeeper/internal/datafile"
	"github.com/sadopc/timekeeper/internal/store"
)

func (w *Workspace) resetIdentity() {
	w.path = ""
	w.kind = datafile.KindPlain
	clear(w.password)
	w.password = nil
	w.salt = [crypt.SaltSize]byte{}
}

// NeedsPassword reports whether the file at path is encrypted.
func (w *Workspace) NeedsPassword(path string) (bool, error) {
	kind, err := datafile.Detect(path)
	if err != nil {
		return false, err
	}
	return kind == datafile.KindEncrypted, nil
}

// Open loads path and replaces the ledger wholesale. On any error the
// current document is left untouched.
func (w *Workspace) Open(path string, password []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open(path, password)
}

func (w *Workspace) open(path string, password []byte) error {
	rec, err := datafile.Load(path, password, w.today())
	if err != nil {
		if errors.Is(err, datafile.ErrWrongPassword) {
			w.logger.Warn("wrong password", "path", path)
		}
		return err
	}
	if err := datafile.Backup(path); err != nil {
		w.logger.Warn("refresh backup failed", "path", path, "error", err)
	}

	w.ledger.Restore(rec.Tasks)
	w.applySavedSort()
	w.path = path
	w.kind = rec.Kind
	w.salt = rec.Salt
	clear(w.password)
	w.password = nil
	if rec.Kind == datafile.KindEncrypted {
		w.password = append([]byte(nil), password...)
	}
	w.dirty = false
	w.remember()
	w.logger.Info("opened", "path", path, "format", rec.Kind, "tasks", len(rec.Tasks))
	return nil
}

func (w *Workspace) remember() {
	if err := w.settings.TouchRecentFile(w.path, w.kind == datafile.KindEncrypted); err != nil {
		w.logger.Warn("record recent file", "path", w.path, "error", err)
	}
	if err := w.settings.SetSetting(store.KeyLastSaveFile, w.path); err != nil {
		w.logger.Warn("record last save file", "path", w.path, "error", err)
	}
}

// Save writes the document to its current path.
func (w *Workspace) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.save()
}

func (w *Workspace) save() error {
	if w.path == "" {
		return ErrNoPath
	}
	rec := &datafile.Record{Kind: w.kind, Salt: w.salt, Tasks: w.ledger.Snapshot()}
	if err := datafile.Save(w.path, rec, w.password, w.today()); err != nil {
		w.logger.Error("save failed", "path", w.path, "error", err)
		return err
	}
	w.dirty = false
	w.remember()
	w.logger.Debug("saved", "path", w.path, "format", w.kind)
	return nil
}

// SaveAs writes the document to path and makes it the current file.
func (w *Workspace) SaveAs(path string) error {
	if path == "" {
		return ErrNoPath
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	prev := w.path
	w.path = path
	if err := w.save(); err != nil {
		w.path = prev
		return err
	}
	return nil
}

// SetPassword switches the document to the encrypted format with a fresh
// salt. The file is rewritten immediately when one is open.
func (w *Workspace) SetPassword(password []byte) error {
	if len(password) == 0 {
		return ErrEmptyPassword
	}
	salt, err := crypt.NewSalt()
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.password)
	w.password = append([]byte(nil), password...)
	w.salt = salt
	w.kind = datafile.KindEncrypted
	w.dirty = true
	if w.path == "" {
		return nil
	}
	return w.save()
}

// RemoveEncryption switches the document to the plaintext format.
func (w *Workspace) RemoveEncryption() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.kind == datafile.KindPlain {
		return nil
	}
	clear(w.password)
	w.password = nil
	w.salt = [crypt.SaltSize]byte{}
	w.kind = datafile.KindPlain
	w.dirty = true
	if w.path == "" {
		return nil
	}
	return w.save()
}

// Autosave saves when the autosave setting is on, a path is set and there
// are unsaved changes. It reports whether a save happened.
func (w *Workspace) Autosave() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.path == "" || !w.dirty || !w.settings.GetBool(store.KeyAutosave, true) {
		return false, nil
	}
	if err := w.save(); err != nil {
		return false, err
	}
	return true, nil
}

// RestoreBackup replaces the current file with its backup and reopens it
// with the current password.
func (w *Workspace) RestoreBackup() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.path == "" {
		return ErrNoPath
	}
	if err := datafile.RestoreBackup(w.path); err != nil {
		return err
	}
	w.logger.Info("backup restored", "path", w.path)
	return w.open(w.path, append([]byte(nil), w.password...))
}
