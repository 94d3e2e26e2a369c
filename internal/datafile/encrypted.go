package datafile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/sadopc/timekeeper/internal/crypt"
	"github.com/sadopc/timekeeper/internal/ledger"
)

const (
	titleSize       = 32
	descriptionSize = 128
)

// sealedTask is the fixed-width head of an encrypted task record. It is
// followed by Days dayEntry values and a u32 trailer.
type sealedTask struct {
	Seq         int32
	Title       [titleSize]byte
	Description [descriptionSize]byte
	ID          uint32
	Total       timeValue
	DaySaved    int64
	Today       timeValue
	MonthSaved  uint8
	ThisMonth   timeValue
	YearSaved   uint16
	ThisYear    timeValue
	Daily       timeValue
	Monthly     timeValue
	Yearly      timeValue
	Days        int32
}

type dayEntry struct {
	Julian int64
	Time   timeValue
}

var (
	sealedTaskSize = binary.Size(sealedTask{})
	dayEntrySize   = binary.Size(dayEntry{})
)

// putFixed copies s into the zero-filled dst, cutting at a rune boundary
// if it does not fit.
func putFixed(dst []byte, s string) {
	for len(s) > len(dst) {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	copy(dst, s)
}

func trimNUL(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func encodeEncrypted(tasks []ledger.Task, key []byte, today ledger.Date) ([]byte, error) {
	var buf bytes.Buffer
	// Zero primer block; it absorbs the unknown IV on decryption.
	buf.Write(make([]byte, crypt.BlockSize))

	st := stampsFor(today)
	for i := range tasks {
		t := &tasks[i]
		dates := t.Dates()
		rec := sealedTask{
			Seq:        int32(i),
			ID:         t.ID,
			Total:      toDisk(t.Total),
			DaySaved:   st.Day,
			Today:      toDisk(t.Today),
			MonthSaved: st.Month,
			ThisMonth:  toDisk(t.ThisMonth),
			YearSaved:  st.Year,
			ThisYear:   toDisk(t.ThisYear),
			Daily:      toDisk(t.Daily),
			Monthly:    toDisk(t.Monthly),
			Yearly:     toDisk(t.Yearly),
			Days:       int32(len(dates)),
		}
		putFixed(rec.Title[:], t.Title)
		putFixed(rec.Description[:], t.Description)
		if err := binary.Write(&buf, byteOrder, rec); err != nil {
			return nil, fmt.Errorf("write task %d: %w", t.ID, err)
		}
		for _, d := range dates {
			entry := dayEntry{Julian: d.JulianDay(), Time: toDisk(t.Log[d])}
			if err := binary.Write(&buf, byteOrder, entry); err != nil {
				return nil, fmt.Errorf("write log of task %d: %w", t.ID, err)
			}
		}
		binary.Write(&buf, byteOrder, uint32(0))
	}

	if pad := buf.Len() % crypt.BlockSize; pad != 0 {
		buf.Write(make([]byte, crypt.BlockSize-pad))
	}
	return crypt.EncryptCBC(key, buf.Bytes())
}

func decodeEncrypted(ciphertext []byte, key []byte, today ledger.Date) ([]ledger.Task, error) {
	if len(ciphertext) < crypt.BlockSize || len(ciphertext)%crypt.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d: %w", len(ciphertext), ErrBadFormat)
	}
	plain, err := crypt.DecryptCBC(key, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", ErrBadFormat)
	}

	r := bytes.NewReader(plain[crypt.BlockSize:])
	var tasks []ledger.Task
	// Anything shorter than a record head is block padding.
	for r.Len() >= sealedTaskSize {
		var rec sealedTask
		if err := binary.Read(r, byteOrder, &rec); err != nil {
			return nil, fmt.Errorf("read task: %w", ErrBadFormat)
		}
		if rec.Days < 0 || int64(rec.Days)*int64(dayEntrySize)+4 > int64(r.Len()) {
			return nil, fmt.Errorf("log count %d: %w", rec.Days, ErrBadFormat)
		}

		t := ledger.Task{
			ID:          rec.ID,
			Title:       trimNUL(rec.Title[:]),
			Description: trimNUL(rec.Description[:]),
			Total:       fromDisk(rec.Total),
			Today:       fromDisk(rec.Today),
			ThisMonth:   fromDisk(rec.ThisMonth),
			ThisYear:    fromDisk(rec.ThisYear),
			Daily:       fromDisk(rec.Daily),
			Monthly:     fromDisk(rec.Monthly),
			Yearly:      fromDisk(rec.Yearly),
			Log:         make(map[ledger.Date]ledger.TimeValue, rec.Days+1),
		}
		for n := int32(0); n < rec.Days; n++ {
			var e dayEntry
			if err := binary.Read(r, byteOrder, &e); err != nil {
				return nil, fmt.Errorf("read log entry: %w", ErrBadFormat)
			}
			t.Log[ledger.FromJulianDay(e.Julian)] = fromDisk(e.Time)
		}
		var trailer uint32
		if err := binary.Read(r, byteOrder, &trailer); err != nil {
			return nil, fmt.Errorf("read trailer: %w", ErrBadFormat)
		}

		applyStamps(&t, stamps{Day: rec.DaySaved, Month: rec.MonthSaved, Year: rec.YearSaved}, today)
		ensureToday(&t, today)
		tasks = append(tasks, t)
	}
	return tasks, nil
}
