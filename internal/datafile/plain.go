package datafile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/sadopc/timekeeper/internal/ledger"
)

// Strings are length-prefixed UTF-16BE; a length of nullString marks an
// absent string.
const nullString = math.MaxUint32

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// timeValue is the on-disk TimeValue: 3×u16 breakdown, u32 elapsed.
type timeValue struct {
	Hours   uint16
	Minutes uint16
	Seconds uint16
	Elapsed uint32
}

func toDisk(v ledger.TimeValue) timeValue {
	n := v.Normalize()
	return timeValue{Hours: n.Hours, Minutes: n.Minutes, Seconds: n.Seconds, Elapsed: n.Elapsed}
}

func fromDisk(v timeValue) ledger.TimeValue {
	return ledger.Seconds(v.Elapsed)
}

// stamps records which day, month and year the window values belong to.
type stamps struct {
	Day   int64
	Month uint8
	Year  uint16
}

func stampsFor(today ledger.Date) stamps {
	return stamps{Day: today.JulianDay(), Month: uint8(today.Month), Year: uint16(today.Year)}
}

// applyStamps zeroes windows that were saved for a different period.
func applyStamps(t *ledger.Task, s stamps, today ledger.Date) {
	if s.Day != today.JulianDay() {
		t.Today = ledger.TimeValue{}
	}
	sameYear := int(s.Year) == today.Year
	if !sameYear || time.Month(s.Month) != today.Month {
		t.ThisMonth = ledger.TimeValue{}
	}
	if !sameYear {
		t.ThisYear = ledger.TimeValue{}
	}
}

func ensureToday(t *ledger.Task, today ledger.Date) {
	if _, ok := t.Log[today]; !ok {
		t.Log[today] = ledger.TimeValue{}
	}
}

// streamWriter keeps the first error so encoders can write field after
// field and check once.
type streamWriter struct {
	w   io.Writer
	err error
}

func (s *streamWriter) put(v any) {
	if s.err != nil {
		return
	}
	s.err = binary.Write(s.w, byteOrder, v)
}

func (s *streamWriter) putString(str string) {
	if s.err != nil {
		return
	}
	b, err := utf16be.NewEncoder().Bytes([]byte(str))
	if err != nil {
		s.err = fmt.Errorf("encode string: %w", err)
		return
	}
	s.put(uint32(len(b)))
	if s.err == nil {
		_, s.err = s.w.Write(b)
	}
}

type streamReader struct {
	r   *bytes.Reader
	err error
}

func (s *streamReader) get(v any) {
	if s.err != nil {
		return
	}
	if err := binary.Read(s.r, byteOrder, v); err != nil {
		s.err = fmt.Errorf("truncated record: %w", ErrBadFormat)
	}
}

func (s *streamReader) getString() string {
	var n uint32
	s.get(&n)
	if s.err != nil || n == nullString {
		return ""
	}
	if n%2 != 0 || int64(n) > int64(s.r.Len()) {
		s.err = fmt.Errorf("string length %d: %w", n, ErrBadFormat)
		return ""
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(s.r, raw); err != nil {
		s.err = fmt.Errorf("truncated string: %w", ErrBadFormat)
		return ""
	}
	b, err := utf16be.NewDecoder().Bytes(raw)
	if err != nil {
		s.err = fmt.Errorf("decode string: %w", ErrBadFormat)
		return ""
	}
	return string(b)
}

func encodePlain(w io.Writer, tasks []ledger.Task, today ledger.Date) error {
	sw := &streamWriter{w: w}
	st := stampsFor(today)
	for i := range tasks {
		t := &tasks[i]
		sw.put(int32(i))
		sw.putString(t.Title)
		sw.putString(t.Description)
		sw.put(t.ID)
		sw.put(toDisk(t.Total))
		sw.put(st.Day)
		sw.put(toDisk(t.Today))
		sw.put(st.Month)
		sw.put(toDisk(t.ThisMonth))
		sw.put(st.Year)
		sw.put(toDisk(t.ThisYear))
		sw.put(toDisk(t.Daily))
		sw.put(toDisk(t.Monthly))
		sw.put(toDisk(t.Yearly))

		dates := t.Dates()
		sw.put(int32(len(dates)))
		for _, d := range dates {
			sw.put(d.JulianDay())
			sw.put(toDisk(t.Log[d]))
		}
		sw.put(uint32(0))
	}
	if sw.err != nil {
		return fmt.Errorf("write tasks: %w", sw.err)
	}
	return nil
}

// decodePlain reads task records until the data runs out.
func decodePlain(body []byte, today ledger.Date) ([]ledger.Task, error) {
	sr := &streamReader{r: bytes.NewReader(body)}
	var tasks []ledger.Task
	for sr.r.Len() > 0 {
		var (
			seq     int32
			st      stamps
			tv      [7]timeValue
			nDays   int32
			trailer uint32
		)
		t := ledger.Task{}
		sr.get(&seq)
		t.Title = sr.getString()
		t.Description = sr.getString()
		sr.get(&t.ID)
		sr.get(&tv[0])
		sr.get(&st.Day)
		sr.get(&tv[1])
		sr.get(&st.Month)
		sr.get(&tv[2])
		sr.get(&st.Year)
		sr.get(&tv[3])
		sr.get(&tv[4])
		sr.get(&tv[5])
		sr.get(&tv[6])
		sr.get(&nDays)
		if sr.err != nil {
			return nil, sr.err
		}
		// Each log entry takes 18 bytes.
		if nDays < 0 || int64(nDays)*18 > int64(sr.r.Len()) {
			return nil, fmt.Errorf("log count %d: %w", nDays, ErrBadFormat)
		}
		t.Log = make(map[ledger.Date]ledger.TimeValue, nDays+1)
		for n := int32(0); n < nDays; n++ {
			var jd int64
			var v timeValue
			sr.get(&jd)
			sr.get(&v)
			t.Log[ledger.FromJulianDay(jd)] = fromDisk(v)
		}
		sr.get(&trailer)
		if sr.err != nil {
			return nil, sr.err
		}

		t.Total = fromDisk(tv[0])
		t.Today = fromDisk(tv[1])
		t.ThisMonth = fromDisk(tv[2])
		t.ThisYear = fromDisk(tv[3])
		t.Daily = fromDisk(tv[4])
		t.Monthly = fromDisk(tv[5])
		t.Yearly = fromDisk(tv[6])
		applyStamps(&t, st, today)
		ensureToday(&t, today)
		tasks = append(tasks, t)
	}
	return tasks, nil
}
