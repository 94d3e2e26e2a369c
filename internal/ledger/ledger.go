// Package ledger holds the in-memory task collection: per-day time logs,
// the rolling today/month/year windows, reports and reallocation.
//
// A Ledger is not safe for concurrent use. Callers serialize access
// (see package workspace).
package ledger

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/sadopc/timekeeper/internal/clock"
)

const maxTaskID = 1 << 16

type Ledger struct {
	clock  clock.Clock
	logger *slog.Logger
	newID  func() uint32

	tasks []*Task

	// Last observed calendar day; month and year rollover compare against it.
	today Date

	activeID uint32
	active   bool
}

// New returns an empty ledger anchored to c's current day.
func New(c clock.Clock, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ledger{
		clock:  c,
		logger: logger,
		newID:  func() uint32 { return rand.Uint32N(maxTaskID) },
		today:  DateOf(c.Now()),
	}
}

// Today returns the day the ledger currently considers "today".
func (l *Ledger) Today() Date { return l.today }

func (l *Ledger) Len() int { return len(l.tasks) }

func (l *Ledger) find(id uint32) (*Task, int) {
	for i, t := range l.tasks {
		if t.ID == id {
			return t, i
		}
	}
	return nil, -1
}

func (l *Ledger) mustFind(id uint32) (*Task, error) {
	t, _ := l.find(id)
	if t == nil {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return t, nil
}

// CreateTask appends a task with an empty history and returns its id.
func (l *Ledger) CreateTask(title, description string) (uint32, error) {
	if len(l.tasks) >= maxTaskID {
		return 0, ErrIDSpaceExhausted
	}
	id := l.newID()
	for {
		if t, _ := l.find(id); t == nil {
			break
		}
		id = l.newID()
	}
	l.tasks = append(l.tasks, newTask(id, title, description, l.today))
	l.logger.Debug("task created", "id", id, "title", title)
	return id, nil
}

func (l *Ledger) RenameTask(id uint32, title, description string) error {
	t, err := l.mustFind(id)
	if err != nil {
		return err
	}
	t.Title = title
	t.Description = description
	return nil
}

// RemoveTask deletes a task, stopping its timer first if it is running.
func (l *Ledger) RemoveTask(id uint32) error {
	_, i := l.find(id)
	if i < 0 {
		return fmt.Errorf("remove task %d: %w", id, ErrNotFound)
	}
	if l.active && l.activeID == id {
		l.StopTimer()
	}
	l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
	l.logger.Debug("task removed", "id", id)
	return nil
}

// RemoveAll stops any timer and empties the ledger.
func (l *Ledger) RemoveAll() {
	l.StopTimer()
	l.tasks = nil
	l.today = DateOf(l.clock.Now())
}

// Task returns a copy of the task with the given id.
func (l *Ledger) Task(id uint32) (Task, error) {
	t, err := l.mustFind(id)
	if err != nil {
		return Task{}, err
	}
	return t.Clone(), nil
}

// TaskAt returns a copy of the task at display position row.
func (l *Ledger) TaskAt(row int) (Task, error) {
	if row < 0 || row >= len(l.tasks) {
		return Task{}, fmt.Errorf("row %d: %w", row, ErrNotFound)
	}
	return l.tasks[row].Clone(), nil
}

// Row returns the display position of id.
func (l *Ledger) Row(id uint32) (int, error) {
	_, i := l.find(id)
	if i < 0 {
		return -1, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return i, nil
}

// Tasks returns copies of all tasks in display order.
func (l *Ledger) Tasks() []Task {
	out := make([]Task, len(l.tasks))
	for i, t := range l.tasks {
		out[i] = t.Clone()
	}
	return out
}

// StartTimer makes id the single accruing task.
func (l *Ledger) StartTimer(id uint32) error {
	t, err := l.mustFind(id)
	if err != nil {
		return err
	}
	for _, other := range l.tasks {
		other.Active = false
	}
	t.Active = true
	l.activeID = id
	l.active = true
	return nil
}

func (l *Ledger) StopTimer() {
	for _, t := range l.tasks {
		t.Active = false
	}
	l.activeID = 0
	l.active = false
}

// ActiveID reports the accruing task, if any.
func (l *Ledger) ActiveID() (uint32, bool) {
	return l.activeID, l.active
}

// ToggleAllocateTarget flips the target flag and returns the new value.
func (l *Ledger) ToggleAllocateTarget(id uint32) (bool, error) {
	t, err := l.mustFind(id)
	if err != nil {
		return false, err
	}
	t.AllocateTarget = !t.AllocateTarget
	return t.AllocateTarget, nil
}

func (l *Ledger) ResetAllocateTargets() {
	for _, t := range l.tasks {
		t.AllocateTarget = false
	}
}

// SetDayValue overwrites the entry for date. All history edits go through here.
func (l *Ledger) SetDayValue(id uint32, date Date, value TimeValue) error {
	t, err := l.mustFind(id)
	if err != nil {
		return err
	}
	l.setDayValue(t, date, value)
	return nil
}

func (l *Ledger) setDayValue(t *Task, date Date, value TimeValue) {
	t.Log[date] = value.Normalize()
	t.recomputeTotal()
	if date.Year == l.today.Year {
		t.recomputeYear(l.today)
		if date.Month == l.today.Month {
			t.recomputeMonth(l.today)
		}
	}
	if date == l.today {
		t.recomputeToday(l.today)
	}
}

// AddTime adjusts the entry for date by delta seconds, never going below zero.
func (l *Ledger) AddTime(id uint32, date Date, delta int64) error {
	t, err := l.mustFind(id)
	if err != nil {
		return err
	}
	cur := int64(t.Log[date].Elapsed)
	l.setDayValue(t, date, Seconds(clampSeconds(cur+delta)))
	return nil
}

func (l *Ledger) ResetToday(id uint32) error {
	return l.SetDayValue(id, l.today, TimeValue{})
}

// ResetTotal discards the task's whole history.
func (l *Ledger) ResetTotal(id uint32) error {
	t, err := l.mustFind(id)
	if err != nil {
		return err
	}
	l.clearHistory(t)
	return nil
}

func (l *Ledger) ResetAll() {
	for _, t := range l.tasks {
		l.clearHistory(t)
	}
}

func (l *Ledger) clearHistory(t *Task) {
	t.Log = map[Date]TimeValue{l.today: {}}
	t.recomputeWindows(l.today)
}

// Totals is the sum of every task's current windows.
type Totals struct {
	Today     TimeValue
	ThisMonth TimeValue
	ThisYear  TimeValue
}

// Totals sums the log entries of all tasks that fall in today's windows.
func (l *Ledger) Totals() Totals {
	var day, month, year uint64
	for _, t := range l.tasks {
		for d, v := range t.Log {
			if d.Year != l.today.Year {
				continue
			}
			year += uint64(v.Elapsed)
			if d.Month == l.today.Month {
				month += uint64(v.Elapsed)
				if d == l.today {
					day += uint64(v.Elapsed)
				}
			}
		}
	}
	return Totals{
		Today:     Seconds(clampSeconds(int64(day))),
		ThisMonth: Seconds(clampSeconds(int64(month))),
		ThisYear:  Seconds(clampSeconds(int64(year))),
	}
}

// Snapshot returns deep copies of every task, windows normalized.
func (l *Ledger) Snapshot() []Task {
	return l.Tasks()
}

// Restore replaces the whole task set with copies of tasks. Timer and
// target flags are cleared and every task gets a today entry.
func (l *Ledger) Restore(tasks []Task) {
	l.StopTimer()
	l.tasks = make([]*Task, 0, len(tasks))
	l.today = DateOf(l.clock.Now())
	for i := range tasks {
		c := tasks[i].Clone()
		c.Active = false
		c.AllocateTarget = false
		if _, ok := c.Log[l.today]; !ok {
			c.Log[l.today] = TimeValue{}
		}
		l.tasks = append(l.tasks, &c)
	}
	l.UpdateAll()
}
