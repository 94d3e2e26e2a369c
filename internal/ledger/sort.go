package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

type SortKey int

const (
	SortByTitle SortKey = iota
	SortByDaily
	SortByMonthly
	SortByYearly
	SortByTotal
)

type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// Sort reorders tasks in place. Equal keys keep their relative order.
func (l *Ledger) Sort(key SortKey, order SortOrder) {
	compare := func(a, b *Task) int {
		switch key {
		case SortByDaily:
			return cmp.Compare(a.Daily.Elapsed, b.Daily.Elapsed)
		case SortByMonthly:
			return cmp.Compare(a.Monthly.Elapsed, b.Monthly.Elapsed)
		case SortByYearly:
			return cmp.Compare(a.Yearly.Elapsed, b.Yearly.Elapsed)
		case SortByTotal:
			return cmp.Compare(a.Total.Elapsed, b.Total.Elapsed)
		}
		return strings.Compare(a.Title, b.Title)
	}
	slices.SortStableFunc(l.tasks, func(a, b *Task) int {
		if order == Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

var sortKeyNames = [...]string{
	SortByTitle:   "title",
	SortByDaily:   "daily",
	SortByMonthly: "monthly",
	SortByYearly:  "yearly",
	SortByTotal:   "total",
}

func (k SortKey) String() string {
	if k < 0 || int(k) >= len(sortKeyNames) {
		return fmt.Sprintf("SortKey(%d)", int(k))
	}
	return sortKeyNames[k]
}

// ParseSortKey is the inverse of SortKey.String.
func ParseSortKey(s string) (SortKey, bool) {
	for k, name := range sortKeyNames {
		if name == s {
			return SortKey(k), true
		}
	}
	return SortByTitle, false
}

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// ParseSortOrder accepts "asc" and "desc".
func ParseSortOrder(s string) (SortOrder, bool) {
	switch s {
	case "asc":
		return Ascending, true
	case "desc":
		return Descending, true
	}
	return Ascending, false
}
