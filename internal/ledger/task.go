package ledger

import "slices"

// Task is one tracked activity and its full day-by-day history.
type Task struct {
	ID          uint32
	Title       string
	Description string

	// Active is true for at most one task in a Ledger.
	Active bool
	// AllocateTarget marks the task as a destination for reallocated time.
	AllocateTarget bool

	Total     TimeValue
	Today     TimeValue
	ThisMonth TimeValue
	ThisYear  TimeValue

	// Last report snapshots; not touched by rollover.
	Daily   TimeValue
	Monthly TimeValue
	Yearly  TimeValue

	Log map[Date]TimeValue
}

func newTask(id uint32, title, description string, today Date) *Task {
	return &Task{
		ID:          id,
		Title:       title,
		Description: description,
		Log:         map[Date]TimeValue{today: {}},
	}
}

// Clone returns a deep copy.
func (t *Task) Clone() Task {
	c := *t
	c.Log = make(map[Date]TimeValue, len(t.Log))
	for d, v := range t.Log {
		c.Log[d] = v
	}
	return c
}

// Dates returns the logged days in ascending order.
func (t *Task) Dates() []Date {
	dates := make([]Date, 0, len(t.Log))
	for d := range t.Log {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, compareDates)
	return dates
}

// On returns the value logged on d, zero if absent.
func (t *Task) On(d Date) TimeValue {
	return t.Log[d]
}

func (t *Task) sum(match func(Date) bool) TimeValue {
	var total uint64
	for d, v := range t.Log {
		if match(d) {
			total += uint64(v.Elapsed)
		}
	}
	return Seconds(clampSeconds(int64(total)))
}

func (t *Task) recomputeTotal() {
	t.Total = t.sum(func(Date) bool { return true })
}

func (t *Task) recomputeToday(today Date) {
	t.Today = t.Log[today].Normalize()
}

func (t *Task) recomputeMonth(today Date) {
	t.ThisMonth = t.sum(today.SameMonth)
}

func (t *Task) recomputeYear(today Date) {
	t.ThisYear = t.sum(func(d Date) bool { return d.Year == today.Year })
}

func (t *Task) recomputeWindows(today Date) {
	t.recomputeTotal()
	t.recomputeToday(today)
	t.recomputeMonth(today)
	t.recomputeYear(today)
}

func compareDates(a, b Date) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	}
	return 0
}
