package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timekeeper/internal/ledger"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/workspace"
)

type reportMode int

const (
	reportDaily reportMode = iota
	reportMonthly
	reportYearly
)

var reportModeNames = []string{"Daily", "Monthly", "Yearly"}

var barColors = []lipgloss.Color{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}

type reportsModel struct {
	ws     *workspace.Workspace
	store  *store.Store
	width  int
	height int

	mode   reportMode
	anchor ledger.Date
	report ledger.Report

	chart barchart.Model
}

func newReportsModel(ws *workspace.Workspace, s *store.Store) reportsModel {
	r := reportsModel{
		ws:     ws,
		store:  s,
		anchor: ws.Today(),
		chart:  barchart.New(60, 12),
	}
	if s != nil {
		if jd := s.GetInt(store.KeyLastSelectedDate, 0); jd > 0 {
			r.anchor = ledger.FromJulianDay(int64(jd))
		}
	}
	return r
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	report ledger.Report
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		var rep ledger.Report
		switch r.mode {
		case reportMonthly:
			rep = r.ws.MonthlyReport(r.anchor.Year, r.anchor.Month)
		case reportYearly:
			rep = r.ws.YearlyReport(r.anchor.Year)
		default:
			rep = r.ws.DailyReport(r.anchor)
		}
		return reportsDataMsg{report: rep}
	}
}

// shift moves the anchor by n periods of the current mode.
func (r reportsModel) shift(n int) ledger.Date {
	switch r.mode {
	case reportMonthly:
		return ledger.DateOf(time.Date(r.anchor.Year, r.anchor.Month+time.Month(n), 1, 12, 0, 0, 0, time.Local))
	case reportYearly:
		return ledger.NewDate(r.anchor.Year+n, time.January, 1)
	}
	return r.anchor.AddDays(n)
}

func (r *reportsModel) setAnchor(d ledger.Date) {
	r.anchor = d
	if r.store != nil {
		r.store.SetSetting(store.KeyLastSelectedDate, strconv.FormatInt(d.JulianDay(), 10))
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.report = msg.report
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.setAnchor(r.shift(-1))
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			r.setAnchor(r.shift(1))
			return r, r.refresh()
		case key.Matches(msg, keys.Enter):
			r.setAnchor(r.ws.Today())
			return r, r.refresh()
		case key.Matches(msg, keys.Mode):
			r.mode = (r.mode + 1) % 3
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, row := range r.report.Rows {
		if row.Time.IsZero() {
			continue
		}
		style := lipgloss.NewStyle().Foreground(barColors[i%len(barColors)])
		bars = append(bars, barchart.BarData{
			Label: truncate(row.Title, 8),
			Values: []barchart.BarValue{{
				Name:  row.Title,
				Value: row.Time.DecimalHours(),
				Style: style,
			}},
		})
	}

	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) periodLabel() string {
	switch r.mode {
	case reportMonthly:
		return r.anchor.Time().Format("January 2006")
	case reportYearly:
		return strconv.Itoa(r.anchor.Year)
	}
	return r.anchor.Time().Format("Mon, Jan 02 2006")
}

func (r reportsModel) view() string {
	w := r.width - 4

	// Mode tabs
	var tabs []string
	for i, name := range reportModeNames {
		if reportMode(i) == r.mode {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ", modeTabs, "  ", mutedStyle.Render(r.periodLabel()),
	)

	chartView := r.chart.View()
	tableView := r.renderSummaryTable(w)
	nav := mutedStyle.Render("  ←/→: previous/next  enter: today  m: daily/monthly/yearly")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	if r.report.Total.IsZero() {
		return mutedStyle.Render("  No time logged in this period")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-24s %11s %8s %7s", "Task", "Time", "Hours", "Share"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))

	total := float64(r.report.Total.Elapsed)
	for i, row := range r.report.Rows {
		if row.Time.IsZero() {
			continue
		}
		dot := lipgloss.NewStyle().Foreground(barColors[i%len(barColors)]).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-22s %11s %8.2f %6.1f%%",
			dot,
			truncate(row.Title, 22),
			formatTime(row.Time),
			row.Time.DecimalHours(),
			100*float64(row.Time.Elapsed)/total,
		))
	}

	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 54))))
	summary := fmt.Sprintf("  %-24s %11s %8.2f", "Total", formatTime(r.report.Total), r.report.Total.DecimalHours())
	rows = append(rows, titleStyle.Render(summary))
	if r.mode != reportDaily {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d days worked, %s per day on average",
			r.report.DaysWorked, formatTime(r.report.AveragePerDay()))))
	}

	return strings.Join(rows, "\n")
}
