package ledger

import (
	"fmt"
	"math"
)

// Reallocate moves everything source logged on date onto the tasks marked
// as allocation targets. Weighted mode splits in proportion to what each
// target already has that day; when all targets have zero it falls back
// to an equal split. Returns the number of seconds moved.
func (l *Ledger) Reallocate(sourceID uint32, date Date, weighted bool) (uint32, error) {
	src, targets, err := l.reallocationSet(sourceID)
	if err != nil {
		return 0, err
	}
	moved := l.reallocateDay(src, targets, date, weighted)
	l.UpdateAll()
	l.DailyReport(date)
	return moved, nil
}

// ReallocateAll runs Reallocate for every day in source's history. Weights
// are taken per day.
func (l *Ledger) ReallocateAll(sourceID uint32, weighted bool) (uint32, error) {
	src, targets, err := l.reallocationSet(sourceID)
	if err != nil {
		return 0, err
	}
	var moved uint32
	for _, d := range src.Dates() {
		moved += l.reallocateDay(src, targets, d, weighted)
	}
	l.UpdateAll()
	l.DailyReport(l.today)
	return moved, nil
}

func (l *Ledger) reallocationSet(sourceID uint32) (*Task, []*Task, error) {
	src, _ := l.find(sourceID)
	if src == nil {
		l.logger.Warn("reallocate: source task not found", "id", sourceID)
		return nil, nil, fmt.Errorf("reallocate from %d: %w", sourceID, ErrNotFound)
	}
	if src.AllocateTarget {
		return nil, nil, fmt.Errorf("reallocate from %d: %w", sourceID, ErrSourceIsTarget)
	}
	var targets []*Task
	for _, t := range l.tasks {
		if t.AllocateTarget {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		l.logger.Warn("reallocate: no targets marked", "source", sourceID)
		return nil, nil, fmt.Errorf("reallocate from %d: %w", sourceID, ErrNoReallocationTargets)
	}
	return src, targets, nil
}

func (l *Ledger) reallocateDay(src *Task, targets []*Task, date Date, weighted bool) uint32 {
	s := src.Log[date].Elapsed
	if s == 0 {
		return 0
	}
	l.setDayValue(src, date, TimeValue{})

	var shares []uint32
	if weighted {
		weights := make([]uint32, len(targets))
		for i, t := range targets {
			weights[i] = t.Log[date].Elapsed
		}
		shares = weightedShares(s, weights)
	}
	if shares == nil {
		shares = equalShares(s, len(targets))
	}

	for i, t := range targets {
		if shares[i] == 0 {
			continue
		}
		l.setDayValue(t, date, t.Log[date].Add(shares[i]))
	}
	l.logger.Debug("reallocated", "source", src.ID, "date", date.String(), "seconds", s, "weighted", weighted)
	return s
}

// equalShares splits s over n targets with a running remainder so the
// last target absorbs whatever rounding left over.
func equalShares(s uint32, n int) []uint32 {
	shares := make([]uint32, n)
	remaining := s
	for i := range shares {
		left := n - i
		share := uint32(math.Round(float64(remaining) / float64(left)))
		if share > remaining {
			share = remaining
		}
		shares[i] = share
		remaining -= share
	}
	return shares
}

// weightedShares splits s in proportion to weights. Shares are the
// differences of rounded cumulative amounts, so they always add up to s.
// Returns nil when every weight is zero.
func weightedShares(s uint32, weights []uint32) []uint32 {
	var total uint64
	for _, w := range weights {
		total += uint64(w)
	}
	if total == 0 {
		return nil
	}
	shares := make([]uint32, len(weights))
	var cum, prev uint64
	for i, w := range weights {
		cum += uint64(w)
		// round half away from zero of s*cum/total
		r := (2*uint64(s)*cum + total) / (2 * total)
		shares[i] = uint32(r - prev)
		prev = r
	}
	return shares
}
