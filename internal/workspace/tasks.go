package workspace

import (
	"fmt"
	"time"

	"github.com/sadopc/timekeeper/internal/ledger"
	"github.com/sadopc/timekeeper/internal/store"
)

// Journal actions.
const (
	ActionAddTime       = "add_time"
	ActionSetDay        = "set_day"
	ActionResetToday    = "reset_today"
	ActionResetTotal    = "reset_total"
	ActionResetAll      = "reset_all"
	ActionReallocate    = "reallocate"
	ActionReallocateAll = "reallocate_all"
	ActionRemoveTask    = "remove_task"
)

// record appends a journal row. Journal failures are logged, never returned:
// the ledger edit has already happened.
func (w *Workspace) record(action string, id uint32, day ledger.Date, seconds int64, detail string) {
	e := store.JournalEntry{Action: action, TaskID: id, Seconds: seconds, Detail: detail}
	if t, err := w.ledger.Task(id); err == nil {
		e.TaskTitle = t.Title
	}
	if !day.IsZero() {
		e.Day = day.String()
	}
	if _, err := w.settings.AppendJournal(e); err != nil {
		w.logger.Warn("journal append failed", "action", action, "task", id, "error", err)
	}
}

func (w *Workspace) CreateTask(title, description string) (uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, err := w.ledger.CreateTask(title, description)
	if err != nil {
		return 0, err
	}
	w.dirty = true
	w.logger.Debug("task created", "task", id, "title", title)
	return id, nil
}

func (w *Workspace) RenameTask(id uint32, title, description string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ledger.RenameTask(id, title, description); err != nil {
		return err
	}
	w.dirty = true
	return nil
}

func (w *Workspace) RemoveTask(id uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, err := w.ledger.Task(id)
	if err != nil {
		return err
	}
	if err := w.ledger.RemoveTask(id); err != nil {
		return err
	}
	w.dirty = true
	e := store.JournalEntry{Action: ActionRemoveTask, TaskID: id, TaskTitle: t.Title, Seconds: int64(t.Total.Elapsed)}
	if _, err := w.settings.AppendJournal(e); err != nil {
		w.logger.Warn("journal append failed", "action", ActionRemoveTask, "task", id, "error", err)
	}
	return nil
}

// RemoveAll starts a new, unsaved, unencrypted document.
func (w *Workspace) RemoveAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ledger.RemoveAll()
	w.resetIdentity()
	w.dirty = false
}

func (w *Workspace) ToggleTarget(id uint32) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.ToggleAllocateTarget(id)
}

func (w *Workspace) ResetTargets() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ledger.ResetAllocateTargets()
}

func (w *Workspace) Start(id uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ledger.StartTimer(id); err != nil {
		return err
	}
	w.logger.Info("timer started", "task", id)
	return nil
}

func (w *Workspace) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id, ok := w.ledger.ActiveID(); ok {
		w.logger.Info("timer stopped", "task", id)
	}
	w.ledger.StopTimer()
}

func (w *Workspace) Active() (uint32, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.ActiveID()
}

func (w *Workspace) ResetToday(id uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, err := w.ledger.Task(id)
	if err != nil {
		return err
	}
	if err := w.ledger.ResetToday(id); err != nil {
		return err
	}
	w.dirty = true
	w.record(ActionResetToday, id, w.ledger.Today(), -int64(t.Today.Elapsed), "")
	return nil
}

func (w *Workspace) ResetTotal(id uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, err := w.ledger.Task(id)
	if err != nil {
		return err
	}
	if err := w.ledger.ResetTotal(id); err != nil {
		return err
	}
	w.dirty = true
	w.record(ActionResetTotal, id, ledger.Date{}, -int64(t.Total.Elapsed), "")
	return nil
}

func (w *Workspace) ResetAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	total := w.ledger.Totals()
	w.ledger.ResetAll()
	w.dirty = true
	w.record(ActionResetAll, 0, ledger.Date{}, 0, fmt.Sprintf("year total was %s", total.ThisYear))
}

// AddTime adjusts a day by delta seconds, clamped at zero.
func (w *Workspace) AddTime(id uint32, date ledger.Date, delta int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ledger.AddTime(id, date, delta); err != nil {
		return err
	}
	w.dirty = true
	w.record(ActionAddTime, id, date, delta, "")
	return nil
}

func (w *Workspace) SetDayValue(id uint32, date ledger.Date, seconds uint32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, err := w.ledger.Task(id)
	if err != nil {
		return err
	}
	before := t.On(date)
	if err := w.ledger.SetDayValue(id, date, ledger.Seconds(seconds)); err != nil {
		return err
	}
	w.dirty = true
	w.record(ActionSetDay, id, date, int64(seconds), fmt.Sprintf("was %s", before))
	return nil
}

func modeName(weighted bool) string {
	if weighted {
		return "weighted"
	}
	return "equal"
}

// Reallocate moves the source's time on date to the marked targets.
func (w *Workspace) Reallocate(id uint32, date ledger.Date, weighted bool) (uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	moved, err := w.ledger.Reallocate(id, date, weighted)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		w.dirty = true
		w.record(ActionReallocate, id, date, int64(moved), modeName(weighted))
	}
	return moved, nil
}

// ReallocateAll moves every day of the source's history to the marked targets.
func (w *Workspace) ReallocateAll(id uint32, weighted bool) (uint32, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	moved, err := w.ledger.ReallocateAll(id, weighted)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		w.dirty = true
		w.record(ActionReallocateAll, id, ledger.Date{}, int64(moved), modeName(weighted))
	}
	return moved, nil
}

// Sort reorders the tasks and remembers the choice.
func (w *Workspace) Sort(key ledger.SortKey, order ledger.SortOrder) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ledger.Sort(key, order)
	if err := w.settings.SetSetting(store.KeySortKey, key.String()); err != nil {
		w.logger.Warn("save sort key", "error", err)
	}
	if err := w.settings.SetSetting(store.KeySortOrder, order.String()); err != nil {
		w.logger.Warn("save sort order", "error", err)
	}
}

// Tick accrues one second to the active task.
func (w *Workspace) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.ledger.ActiveID(); ok {
		w.dirty = true
	}
	w.ledger.Tick()
}

// Poll checks for a calendar rollover while no task is active.
func (w *Workspace) Poll() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	changed := w.ledger.Poll()
	if changed {
		w.dirty = true
		w.logger.Info("calendar rollover", "today", w.ledger.Today())
	}
	return changed
}

// Advance is the one-second driver: Tick while a task is active, Poll otherwise.
func (w *Workspace) Advance() {
	if _, ok := w.Active(); ok {
		w.Tick()
		return
	}
	w.Poll()
}

func (w *Workspace) UpdateAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ledger.UpdateAll()
}

// ============================================================
// Queries
// ============================================================

func (w *Workspace) Today() ledger.Date {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.Today()
}

func (w *Workspace) Tasks() []ledger.Task {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.Tasks()
}

func (w *Workspace) Task(id uint32) (ledger.Task, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.Task(id)
}

func (w *Workspace) Totals() ledger.Totals {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.Totals()
}

func (w *Workspace) DailyReport(date ledger.Date) ledger.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.DailyReport(date)
}

func (w *Workspace) MonthlyReport(year int, month time.Month) ledger.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.MonthlyReport(year, month)
}

func (w *Workspace) YearlyReport(year int) ledger.Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ledger.YearlyReport(year)
}

// HourGrid returns the export grid. Zero from/to default to the logged range.
func (w *Workspace) HourGrid(from, to ledger.Date, ids []uint32) (ledger.HourGrid, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if from.IsZero() || to.IsZero() {
		first, last, ok := w.ledger.LogRange()
		if !ok {
			return ledger.HourGrid{}, nil
		}
		if from.IsZero() {
			from = first
		}
		if to.IsZero() {
			to = last
		}
	}
	return w.ledger.HourGrid(from, to, ids)
}
