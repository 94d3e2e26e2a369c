package ledger

import (
	"fmt"
	"math"
)

// TimeValue is an elapsed-seconds counter with its H:M:S breakdown.
// Elapsed is authoritative; Hours, Minutes and Seconds are always
// re-derived from it by floor division.
type TimeValue struct {
	Hours   uint16
	Minutes uint16
	Seconds uint16
	Elapsed uint32
}

// Seconds builds a TimeValue from a raw second count.
func Seconds(elapsed uint32) TimeValue {
	return TimeValue{
		Hours:   uint16(elapsed / 3600),
		Minutes: uint16(elapsed % 3600 / 60),
		Seconds: uint16(elapsed % 60),
		Elapsed: elapsed,
	}
}

// Normalize discards the stored breakdown and derives it from Elapsed.
func (v TimeValue) Normalize() TimeValue { return Seconds(v.Elapsed) }

// Add returns v plus n seconds, saturating at the counter's maximum.
func (v TimeValue) Add(n uint32) TimeValue {
	if uint64(v.Elapsed)+uint64(n) > math.MaxUint32 {
		return Seconds(math.MaxUint32)
	}
	return Seconds(v.Elapsed + n)
}

// DecimalHours returns the value as fractional hours.
func (v TimeValue) DecimalHours() float64 {
	return float64(v.Elapsed) / 3600
}

func (v TimeValue) IsZero() bool { return v.Elapsed == 0 }

// String formats as HH:MM:SS. Hours grow past two digits as needed.
func (v TimeValue) String() string {
	n := v.Normalize()
	return fmt.Sprintf("%02d:%02d:%02d", n.Hours, n.Minutes, n.Seconds)
}

// clampSeconds converts a signed second count into the counter range.
func clampSeconds(s int64) uint32 {
	switch {
	case s < 0:
		return 0
	case s > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(s)
}
