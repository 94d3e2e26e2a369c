package store

import (
	"fmt"
	"time"
)

// AppendJournal stores e and returns it with ID and CreatedAt filled in.
func (s *Store) AppendJournal(e JournalEntry) (*JournalEntry, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT INTO journal (action, task_id, task_title, day, seconds, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Action, e.TaskID, e.TaskTitle, e.Day, e.Seconds, e.Detail, now.Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("append journal: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	e.CreatedAt = now
	return &e, nil
}

func (s *Store) ListJournal(f JournalFilter) ([]JournalEntry, error) {
	query := `SELECT id, action, task_id, task_title, day, seconds, detail, created_at FROM journal WHERE 1=1`
	var args []any

	if f.TaskID != nil {
		query += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.Action != "" {
		query += ` AND action = ?`
		args = append(args, f.Action)
	}
	if f.From != nil {
		query += ` AND created_at >= ?`
		args = append(args, f.From.UTC().Format(timestampLayout))
	}
	if f.To != nil {
		query += ` AND created_at < ?`
		args = append(args, f.To.UTC().Format(timestampLayout))
	}
	query += ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Action, &e.TaskID, &e.TaskTitle, &e.Day, &e.Seconds, &e.Detail, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
