package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sadopc/timekeeper/internal/ledger"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// printTable renders rows as a bordered table. Columns listed in right are
// right aligned.
func printTable(w io.Writer, headers []string, rows [][]string, right ...int) {
	alignRight := make(map[int]bool, len(right))
	for _, c := range right {
		alignRight[c] = true
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := cellStyle
			if row == table.HeaderRow {
				s = headerStyle
			}
			if alignRight[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	_, _ = fmt.Fprintln(w, t.Render())
}

func hms(v ledger.TimeValue) string {
	return fmt.Sprintf("%02d:%02d:%02d", v.Elapsed/3600, v.Elapsed%3600/60, v.Elapsed%60)
}
