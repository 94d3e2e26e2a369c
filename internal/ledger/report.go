package ledger

import "time"

type ReportRow struct {
	TaskID uint32
	Title  string
	Time   TimeValue
}

// Report is the per-task breakdown of an inclusive date range.
type Report struct {
	From  Date
	To    Date
	Rows  []ReportRow
	Total TimeValue
	// DaysWorked counts days in range where at least one task logged time.
	DaysWorked int
}

// AveragePerDay is Total divided by DaysWorked, zero when nothing was worked.
func (r Report) AveragePerDay() TimeValue {
	if r.DaysWorked == 0 {
		return TimeValue{}
	}
	return Seconds(r.Total.Elapsed / uint32(r.DaysWorked))
}

// DailyReport reports a single day and stores the values as each task's Daily.
func (l *Ledger) DailyReport(date Date) Report {
	return l.report(date, date, func(t *Task, v TimeValue) { t.Daily = v })
}

// MonthlyReport reports a calendar month and stores the values as each task's Monthly.
func (l *Ledger) MonthlyReport(year int, month time.Month) Report {
	first := NewDate(year, month, 1)
	last := NewDate(year, month+1, 0)
	return l.report(first, last, func(t *Task, v TimeValue) { t.Monthly = v })
}

// YearlyReport reports a calendar year and stores the values as each task's Yearly.
func (l *Ledger) YearlyReport(year int) Report {
	first := NewDate(year, time.January, 1)
	last := NewDate(year, time.December, 31)
	return l.report(first, last, func(t *Task, v TimeValue) { t.Yearly = v })
}

func (l *Ledger) report(from, to Date, store func(*Task, TimeValue)) Report {
	inRange := func(d Date) bool { return !d.Before(from) && !d.After(to) }

	r := Report{From: from, To: to}
	worked := make(map[Date]bool)
	var total uint64
	for _, t := range l.tasks {
		v := t.sum(inRange)
		store(t, v)
		r.Rows = append(r.Rows, ReportRow{TaskID: t.ID, Title: t.Title, Time: v})
		total += uint64(v.Elapsed)
		for d, e := range t.Log {
			if e.Elapsed > 0 && inRange(d) {
				worked[d] = true
			}
		}
	}
	r.Total = Seconds(clampSeconds(int64(total)))
	r.DaysWorked = len(worked)
	return r
}
