package ledger

import "fmt"

// HourGrid is decimal hours per (day, task) over a contiguous date range.
type HourGrid struct {
	Dates []Date
	Tasks []GridTask
	// Hours[i][j] belongs to Dates[i] and Tasks[j].
	Hours [][]float64
}

type GridTask struct {
	ID    uint32
	Title string
}

// LogRange returns the earliest and latest day present in any task's log.
func (l *Ledger) LogRange() (Date, Date, bool) {
	var first, last Date
	found := false
	for _, t := range l.tasks {
		for d := range t.Log {
			if !found || d.Before(first) {
				first = d
			}
			if !found || d.After(last) {
				last = d
			}
			found = true
		}
	}
	return first, last, found
}

// HourGrid builds the grid for from..to inclusive. A nil ids selects every
// task in display order.
func (l *Ledger) HourGrid(from, to Date, ids []uint32) (HourGrid, error) {
	if to.Before(from) {
		return HourGrid{}, fmt.Errorf("hour grid: range %s..%s is reversed", from, to)
	}

	var selected []*Task
	if ids == nil {
		selected = l.tasks
	} else {
		for _, id := range ids {
			t, err := l.mustFind(id)
			if err != nil {
				return HourGrid{}, err
			}
			selected = append(selected, t)
		}
	}

	var g HourGrid
	for _, t := range selected {
		g.Tasks = append(g.Tasks, GridTask{ID: t.ID, Title: t.Title})
	}
	for d := from; !d.After(to); d = d.AddDays(1) {
		row := make([]float64, len(selected))
		for j, t := range selected {
			row[j] = t.Log[d].DecimalHours()
		}
		g.Dates = append(g.Dates, d)
		g.Hours = append(g.Hours, row)
	}
	return g, nil
}
