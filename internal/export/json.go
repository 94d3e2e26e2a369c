package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/timekeeper/internal/ledger"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	From       string     `json:"from,omitempty"`
	To         string     `json:"to,omitempty"`
	Tasks      []jsonTask `json:"tasks"`
	Days       []jsonDay  `json:"days"`
}

type jsonTask struct {
	ID         uint32  `json:"id"`
	Title      string  `json:"title"`
	TotalHours float64 `json:"total_hours"`
}

type jsonDay struct {
	Date    string      `json:"date"`
	Entries []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	TaskID      uint32  `json:"task_id"`
	Task        string  `json:"task"`
	Hours       float64 `json:"hours"`
	DurationSec int64   `json:"duration_seconds"`
	Duration    string  `json:"duration"`
}

// ToJSON writes the grid grouped by day. Days and tasks without time are
// left out of the day list.
func ToJSON(grid ledger.HourGrid, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Tasks:      make([]jsonTask, len(grid.Tasks)),
		Days:       []jsonDay{},
	}
	if len(grid.Dates) > 0 {
		export.From = grid.Dates[0].String()
		export.To = grid.Dates[len(grid.Dates)-1].String()
	}
	for j, t := range grid.Tasks {
		export.Tasks[j] = jsonTask{ID: t.ID, Title: t.Title}
	}

	for i, d := range grid.Dates {
		day := jsonDay{Date: d.String()}
		for j, h := range grid.Hours[i] {
			if h == 0 {
				continue
			}
			secs := hoursToSeconds(h)
			export.Tasks[j].TotalHours += h
			day.Entries = append(day.Entries, jsonEntry{
				TaskID:      grid.Tasks[j].ID,
				Task:        grid.Tasks[j].Title,
				Hours:       h,
				DurationSec: secs,
				Duration:    formatDuration(secs),
			})
		}
		if len(day.Entries) > 0 {
			export.Days = append(export.Days, day)
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
