package store

import "time"

type Setting struct {
	Key   string
	Value string
}

type RecentFile struct {
	Path      string
	Encrypted bool
	OpenedAt  time.Time
}

// JournalEntry records one manual change to the ledger.
type JournalEntry struct {
	ID        int64
	Action    string // add_time, set_day, reset_today, reset_total, reset_all, reallocate, reallocate_all, remove_task
	TaskID    uint32
	TaskTitle string
	Day       string // YYYY-MM-DD, empty when not tied to one day
	Seconds   int64
	Detail    string
	CreatedAt time.Time
}

// JournalFilter narrows ListJournal.
type JournalFilter struct {
	TaskID *uint32
	Action string
	From   *time.Time
	To     *time.Time
	Limit  int
}
