package store

import (
	"fmt"
	"time"
)

// TouchRecentFile records that path was just opened or saved.
func (s *Store) TouchRecentFile(path string, encrypted bool) error {
	now := time.Now().UTC().Format(timestampLayout)
	_, err := s.db.Exec(
		`INSERT INTO recent_files (path, encrypted, opened_at) VALUES (?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET encrypted = excluded.encrypted, opened_at = excluded.opened_at`,
		path, encrypted, now,
	)
	if err != nil {
		return fmt.Errorf("touch recent file: %w", err)
	}
	return nil
}

// ListRecentFiles returns the most recently used files first.
func (s *Store) ListRecentFiles(limit int) ([]RecentFile, error) {
	query := `SELECT path, encrypted, opened_at FROM recent_files ORDER BY opened_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list recent files: %w", err)
	}
	defer rows.Close()

	var files []RecentFile
	for rows.Next() {
		var f RecentFile
		var openedAt string
		if err := rows.Scan(&f.Path, &f.Encrypted, &openedAt); err != nil {
			return nil, err
		}
		f.OpenedAt, _ = time.Parse(timestampLayout, openedAt)
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *Store) ForgetRecentFile(path string) error {
	_, err := s.db.Exec(`DELETE FROM recent_files WHERE path = ?`, path)
	return err
}
