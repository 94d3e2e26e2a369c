package ledger

// rollover compares the clock's day with the last observed one and, on a
// boundary, recomputes the affected windows of every task. Year takes
// precedence over month, month over day. Returns true on a boundary.
func (l *Ledger) rollover() bool {
	now := DateOf(l.clock.Now())
	prev := l.today
	if now == prev {
		return false
	}
	l.today = now

	for _, t := range l.tasks {
		if _, ok := t.Log[now]; !ok {
			t.Log[now] = TimeValue{}
		}
		switch {
		case now.Year != prev.Year:
			t.recomputeYear(now)
			t.recomputeMonth(now)
			t.recomputeToday(now)
		case now.Month != prev.Month:
			t.recomputeMonth(now)
			t.recomputeToday(now)
		default:
			t.recomputeToday(now)
		}
	}

	l.logger.Info("date rollover", "from", prev.String(), "to", now.String())
	return true
}

// Tick accounts one elapsed second to the active task. The boundary check
// runs first so a second landing on a new day is counted in that day.
func (l *Ledger) Tick() {
	l.rollover()
	if !l.active {
		return
	}
	t, _ := l.find(l.activeID)
	if t == nil {
		l.logger.Warn("active task missing, tick dropped", "id", l.activeID)
		return
	}
	t.Log[l.today] = t.Log[l.today].Add(1)
	t.Total = t.Total.Add(1)
	t.Today = t.Today.Add(1)
	t.ThisMonth = t.ThisMonth.Add(1)
	t.ThisYear = t.ThisYear.Add(1)
}

// Poll is the idle-time boundary check. It does nothing while a task is
// active because Tick already runs the check every second.
func (l *Ledger) Poll() bool {
	if l.active {
		return false
	}
	return l.rollover()
}

// UpdateAll brings every task's windows in line with the current day
// without accruing time. Calling it repeatedly is a no-op.
func (l *Ledger) UpdateAll() {
	l.rollover()
	for _, t := range l.tasks {
		t.recomputeWindows(l.today)
	}
}
