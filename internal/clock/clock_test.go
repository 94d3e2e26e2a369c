package clock

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2024, 1, 31, 23, 59, 59, 0, time.Local)
	c := Fake(start)
	if !c.Now().Equal(start) {
		t.Fatalf("expected %v, got %v", start, c.Now())
	}

	c.Advance(time.Second)
	if c.Now().Day() != 1 || c.Now().Month() != time.February {
		t.Fatalf("expected Feb 1, got %v", c.Now())
	}
}

func TestFakeSet(t *testing.T) {
	c := Fake(time.Time{})
	target := time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC)
	c.Set(target)
	if !c.Now().Equal(target) {
		t.Fatalf("expected %v, got %v", target, c.Now())
	}
}

func TestRealMoves(t *testing.T) {
	c := Real()
	a := c.Now()
	if a.IsZero() {
		t.Fatal("real clock returned zero time")
	}
}
