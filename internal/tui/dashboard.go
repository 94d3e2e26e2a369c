package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timekeeper/internal/ledger"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/workspace"
)

type dashboardModel struct {
	ws     *workspace.Workspace
	store  *store.Store
	width  int
	height int

	active    *ledger.Task
	totals    ledger.Totals
	todayRows []ledger.Task
	recent    []store.JournalEntry
}

func newDashboardModel(ws *workspace.Workspace, s *store.Store) dashboardModel {
	return dashboardModel{ws: ws, store: s}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	active    *ledger.Task
	totals    ledger.Totals
	todayRows []ledger.Task
	recent    []store.JournalEntry
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		msg := dashboardDataMsg{totals: d.ws.Totals()}
		activeID, running := d.ws.Active()
		for _, t := range d.ws.Tasks() {
			if running && t.ID == activeID {
				msg.active = &t
			}
			if t.Today.Elapsed > 0 {
				msg.todayRows = append(msg.todayRows, t)
			}
		}
		if d.store != nil {
			msg.recent, _ = d.store.ListJournal(store.JournalFilter{Limit: 5})
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.active = msg.active
		d.totals = msg.totals
		d.todayRows = msg.todayRows
		d.recent = msg.recent
		return d, nil

	case tickMsg:
		return d, d.loadData()
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)
	recentPanel := d.renderRecentPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, recentPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.active != nil {
		timeDisplay := timerRunningStyle.Width(w - 6).Render(formatTime(d.active.Today))
		indicator := successStyle.Render("●  RUNNING")
		taskLine := highlightStyle.Render(d.active.Title)
		if d.active.Description != "" {
			taskLine += mutedStyle.Render(" / " + d.active.Description)
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			taskLine,
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := timerStyle.Width(w - 6).Render("00:00:00")
	indicator := mutedStyle.Render("■  STOPPED")
	hint := mutedStyle.Render("Press 2 and s on a task to start tracking")

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		hint,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	header := fmt.Sprintf("%s  %s   %s %s   %s %s",
		titleStyle.Render("Today"), highlightStyle.Render(formatTime(d.totals.Today)),
		subtitleStyle.Render("Month"), highlightStyle.Render(formatTime(d.totals.ThisMonth)),
		subtitleStyle.Render("Year"), highlightStyle.Render(formatTime(d.totals.ThisYear)),
	)

	if len(d.todayRows) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("Nothing logged today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	for _, t := range d.todayRows {
		dot := mutedStyle.Render("●")
		if d.active != nil && d.active.ID == t.ID {
			dot = successStyle.Render("●")
		}
		rows = append(rows, fmt.Sprintf("  %s %-24s %s  (%s)",
			dot,
			truncate(t.Title, 24),
			formatTime(t.Today),
			formatHours(int64(t.Today.Elapsed)),
		))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Edits")
	if len(d.recent) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No manual edits yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, e := range d.recent {
		rows = append(rows, "  "+formatJournalEntry(e))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func formatJournalEntry(e store.JournalEntry) string {
	when := e.CreatedAt.Local().Format("01-02 15:04")
	secs := e.Seconds
	sign := "+"
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	line := fmt.Sprintf("%s  %-14s %-18s", when, e.Action, truncate(e.TaskTitle, 18))
	if e.Seconds != 0 {
		line += " " + sign + formatSeconds(secs)
	}
	if e.Day != "" {
		line += mutedStyle.Render("  " + e.Day)
	}
	if e.Detail != "" {
		line += mutedStyle.Render("  " + e.Detail)
	}
	return line
}
