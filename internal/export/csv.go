package export

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/timekeeper/internal/ledger"
)

const csvDateLayout = "02.01.2006"

// ToCSV writes the grid as one row per day: the date followed by each
// task's decimal hours with three decimals.
func ToCSV(grid ledger.HourGrid, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := make([]string, 0, len(grid.Tasks)+1)
	header = append(header, "Date")
	for _, t := range grid.Tasks {
		header = append(header, t.Title)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, d := range grid.Dates {
		row := make([]string, 0, len(grid.Tasks)+1)
		row = append(row, d.Time().Format(csvDateLayout))
		for _, h := range grid.Hours[i] {
			row = append(row, strconv.FormatFloat(h, 'f', 3, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// DefaultFileName builds <base>-YYYY-MM-DD-HHMMSS.<ext>, where base is
// savePath without its extension, or "export" for an unsaved document.
func DefaultFileName(savePath, ext string, now time.Time) string {
	base := "export"
	if savePath != "" {
		base = strings.TrimSuffix(savePath, filepath.Ext(savePath))
	}
	return fmt.Sprintf("%s-%s.%s", base, now.Format("2006-01-02-150405"), ext)
}

func hoursToSeconds(h float64) int64 {
	return int64(math.Round(h * 3600))
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
