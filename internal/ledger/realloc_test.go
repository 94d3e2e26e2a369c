package ledger

import (
	"errors"
	"testing"
	"time"
)

func markTargets(t *testing.T, l *Ledger, ids ...uint32) {
	t.Helper()
	for _, id := range ids {
		if on, err := l.ToggleAllocateTarget(id); err != nil || !on {
			t.Fatalf("mark %d: %v", id, err)
		}
	}
}

func dayTotal(l *Ledger, d Date) uint32 {
	var sum uint32
	for _, task := range l.Tasks() {
		sum += task.Log[d].Elapsed
	}
	return sum
}

// ============================================================
// Share computation
// ============================================================

func TestEqualSharesRunningRemainder(t *testing.T) {
	got := equalShares(10, 3)
	want := []uint32{3, 4, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEqualSharesConserve(t *testing.T) {
	for s := uint32(0); s < 200; s++ {
		for n := 1; n <= 7; n++ {
			var sum uint32
			for _, share := range equalShares(s, n) {
				sum += share
			}
			if sum != s {
				t.Fatalf("equalShares(%d, %d) sums to %d", s, n, sum)
			}
		}
	}
}

func TestWeightedSharesConserve(t *testing.T) {
	weights := [][]uint32{{1, 1, 1}, {300, 100}, {7, 0, 13}, {1, 2, 3, 4, 5}, {86399, 1}}
	for _, w := range weights {
		for s := uint32(1); s < 300; s += 7 {
			var sum uint32
			for _, share := range weightedShares(s, w) {
				sum += share
			}
			if sum != s {
				t.Fatalf("weightedShares(%d, %v) sums to %d", s, w, sum)
			}
		}
	}
	if weightedShares(100, []uint32{0, 0}) != nil {
		t.Fatal("all-zero weights should yield nil")
	}
}

// ============================================================
// Reallocate
// ============================================================

func TestReallocateWeighted(t *testing.T) {
	l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
	src := mustCreate(t, l, "Source")
	a := mustCreate(t, l, "A")
	b := mustCreate(t, l, "B")
	day := NewDate(2024, 3, 10)
	l.SetDayValue(src, day, Seconds(100))
	l.SetDayValue(a, day, Seconds(300))
	l.SetDayValue(b, day, Seconds(100))
	markTargets(t, l, a, b)

	moved, err := l.Reallocate(src, day, true)
	if err != nil {
		t.Fatal(err)
	}
	if moved != 100 {
		t.Fatalf("expected 100s moved, got %d", moved)
	}
	if got := mustTask(t, l, a).Log[day].Elapsed; got != 375 {
		t.Fatalf("A: expected 375, got %d", got)
	}
	if got := mustTask(t, l, b).Log[day].Elapsed; got != 125 {
		t.Fatalf("B: expected 125, got %d", got)
	}
	if got := mustTask(t, l, src).Log[day].Elapsed; got != 0 {
		t.Fatalf("source: expected 0, got %d", got)
	}
	if got := mustTask(t, l, src).Today.Elapsed; got != 0 {
		t.Fatalf("source today window: %d", got)
	}
	checkTotalInvariant(t, l)
}

func TestReallocateEqual(t *testing.T) {
	l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
	src := mustCreate(t, l, "Source")
	a := mustCreate(t, l, "A")
	b := mustCreate(t, l, "B")
	c := mustCreate(t, l, "C")
	day := NewDate(2024, 3, 10)
	l.SetDayValue(src, day, Seconds(10))
	markTargets(t, l, a, b, c)

	if _, err := l.Reallocate(src, day, false); err != nil {
		t.Fatal(err)
	}
	want := map[uint32]uint32{a: 3, b: 4, c: 3}
	for id, secs := range want {
		if got := mustTask(t, l, id).Log[day].Elapsed; got != secs {
			t.Fatalf("task %d: expected %d, got %d", id, secs, got)
		}
	}
	if dayTotal(l, day) != 10 {
		t.Fatalf("seconds not conserved: %d", dayTotal(l, day))
	}
}

func TestReallocateWeightedFallsBackToEqual(t *testing.T) {
	l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
	src := mustCreate(t, l, "Source")
	a := mustCreate(t, l, "A")
	b := mustCreate(t, l, "B")
	day := NewDate(2024, 3, 10)
	l.SetDayValue(src, day, Seconds(9))
	markTargets(t, l, a, b)

	l.Reallocate(src, day, true)
	if got := mustTask(t, l, a).Log[day].Elapsed; got != 5 {
		t.Fatalf("A: expected 5 (round 4.5 up), got %d", got)
	}
	if got := mustTask(t, l, b).Log[day].Elapsed; got != 4 {
		t.Fatalf("B: expected 4, got %d", got)
	}
}

func TestReallocateNoTargets(t *testing.T) {
	l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
	src := mustCreate(t, l, "Source")
	mustCreate(t, l, "A")
	day := NewDate(2024, 3, 10)
	l.SetDayValue(src, day, Seconds(100))

	_, err := l.Reallocate(src, day, false)
	if !errors.Is(err, ErrNoReallocationTargets) {
		t.Fatalf("expected ErrNoReallocationTargets, got %v", err)
	}
	if got := mustTask(t, l, src).Log[day].Elapsed; got != 100 {
		t.Fatalf("source must keep its time, got %d", got)
	}
}

func TestReallocateUnknownSource(t *testing.T) {
	l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
	a := mustCreate(t, l, "A")
	markTargets(t, l, a)

	moved, err := l.Reallocate(4242, NewDate(2024, 3, 10), false)
	if !errors.Is(err, ErrNotFound) || moved != 0 {
		t.Fatalf("expected ErrNotFound with 0 moved, got %d, %v", moved, err)
	}
}

func TestReallocateSourceIsTarget(t *testing.T) {
	l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
	src := mustCreate(t, l, "Source")
	a := mustCreate(t, l, "A")
	day := NewDate(2024, 3, 10)
	l.SetDayValue(src, day, Seconds(100))
	markTargets(t, l, src, a)

	if _, err := l.Reallocate(src, day, false); !errors.Is(err, ErrSourceIsTarget) {
		t.Fatalf("expected ErrSourceIsTarget, got %v", err)
	}
	if got := mustTask(t, l, src).Log[day].Elapsed; got != 100 {
		t.Fatalf("source changed: %d", got)
	}
}

func TestReallocateAllWeightsPerDay(t *testing.T) {
	l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
	src := mustCreate(t, l, "Source")
	a := mustCreate(t, l, "A")
	b := mustCreate(t, l, "B")
	d1 := NewDate(2024, 3, 1)
	d2 := NewDate(2024, 3, 2)

	l.SetDayValue(src, d1, Seconds(60))
	l.SetDayValue(src, d2, Seconds(60))
	// A only worked on d1, B only on d2.
	l.SetDayValue(a, d1, Seconds(10))
	l.SetDayValue(b, d2, Seconds(10))
	markTargets(t, l, a, b)

	moved, err := l.ReallocateAll(src, true)
	if err != nil {
		t.Fatal(err)
	}
	if moved != 120 {
		t.Fatalf("expected 120s moved, got %d", moved)
	}
	if got := mustTask(t, l, a).Log[d1].Elapsed; got != 70 {
		t.Fatalf("A on d1: expected 70, got %d", got)
	}
	if got := mustTask(t, l, a).Log[d2].Elapsed; got != 0 {
		t.Fatalf("A on d2: expected 0, got %d", got)
	}
	if got := mustTask(t, l, b).Log[d2].Elapsed; got != 70 {
		t.Fatalf("B on d2: expected 70, got %d", got)
	}
	if got := mustTask(t, l, src).Total.Elapsed; got != 0 {
		t.Fatalf("source total: expected 0, got %d", got)
	}
	checkTotalInvariant(t, l)
}

func TestReallocateConservesAcrossModes(t *testing.T) {
	for _, weighted := range []bool{false, true} {
		l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
		src := mustCreate(t, l, "Source")
		var targets []uint32
		for i := 0; i < 4; i++ {
			targets = append(targets, mustCreate(t, l, string(rune('A'+i))))
		}
		day := NewDate(2024, 3, 10)
		l.SetDayValue(src, day, Seconds(12347))
		for i, id := range targets {
			l.SetDayValue(id, day, Seconds(uint32(i*37)))
		}
		markTargets(t, l, targets...)

		before := dayTotal(l, day)
		if _, err := l.Reallocate(src, day, weighted); err != nil {
			t.Fatal(err)
		}
		if after := dayTotal(l, day); after != before {
			t.Fatalf("weighted=%v: %d seconds before, %d after", weighted, before, after)
		}
		checkTotalInvariant(t, l)
	}
}

func TestReallocateOutsideCurrentMonth(t *testing.T) {
	l, _ := newTestLedger(t, at(2024, 3, 10, 9, 0, 0))
	src := mustCreate(t, l, "Source")
	a := mustCreate(t, l, "A")
	day := NewDate(2024, time.January, 15)
	l.SetDayValue(src, day, Seconds(500))
	markTargets(t, l, a)

	l.Reallocate(src, day, false)
	ta := mustTask(t, l, a)
	if ta.ThisYear.Elapsed != 500 || ta.ThisMonth.Elapsed != 0 {
		t.Fatalf("windows after reallocating January: %+v", ta)
	}
	if ta.Daily.Elapsed != 500 {
		t.Fatalf("daily report not refreshed for reallocated day: %d", ta.Daily.Elapsed)
	}
}
