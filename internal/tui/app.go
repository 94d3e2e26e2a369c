package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timekeeper/internal/clock"
	"github.com/sadopc/timekeeper/internal/export"
	"github.com/sadopc/timekeeper/internal/ledger"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/workspace"
)

// Options tune the interactive session.
type Options struct {
	PollInterval     time.Duration
	AutosaveInterval time.Duration

	// Unlock names an encrypted file to ask the password for on startup.
	Unlock string

	Clock clock.Clock
}

// App is the root Bubble Tea model.
type App struct {
	ws     *workspace.Workspace
	store  *store.Store
	clock  clock.Clock
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	quitArmed     bool

	dashboard dashboardModel
	tasks     tasksModel
	reports   reportsModel
	settings  settingsModel
	prompt    promptModel
	ticker    tickerModel

	unlock string

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(ws *workspace.Workspace, s *store.Store, opts Options) App {
	h := help.New()
	h.ShowAll = false

	c := opts.Clock
	if c == nil {
		c = clock.Real()
	}

	a := App{
		ws:        ws,
		store:     s,
		clock:     c,
		dashboard: newDashboardModel(ws, s),
		tasks:     newTasksModel(ws),
		reports:   newReportsModel(ws, s),
		settings:  newSettingsModel(ws, s),
		prompt:    newPromptModel(ws),
		ticker:    newTickerModel(ws, opts.PollInterval, opts.AutosaveInterval, c.Now()),
		unlock:    opts.Unlock,
		help:      h,
	}

	if s != nil {
		if v := s.GetInt(store.KeyStartingView, 0); v >= 0 && v < len(viewNames) {
			a.activeView = viewState(v)
		}
		if name, err := s.GetSetting(store.KeySortKey); err == nil {
			a.tasks.sortKey, _ = ledger.ParseSortKey(name)
		}
		if name, err := s.GetSetting(store.KeySortOrder); err == nil {
			a.tasks.sortOrder, _ = ledger.ParseSortOrder(name)
		}
	}
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.ticker.cmd(), a.refreshCurrentView()}
	if path := a.unlock; path != "" {
		cmds = append(cmds, func() tea.Msg { return unlockMsg{path: path} })
	}
	return tea.Batch(cmds...)
}

// unlockMsg opens the startup password prompt. Init cannot change the
// model, so the prompt is built when this arrives.
type unlockMsg struct {
	path string
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case unlockMsg:
		if !a.prompt.active() {
			var cmd tea.Cmd
			a.prompt, cmd = a.prompt.unlock(msg.path)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		if a.prompt.active() {
			var cmd tea.Cmd
			a.prompt, cmd = a.prompt.update(msg)
			return a, cmd
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		if !key.Matches(msg, keys.Quit) {
			a.quitArmed = false
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a.quit()
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Save):
			return a.save()
		case key.Matches(msg, keys.SaveAs):
			return a.openPrompt(a.prompt.saveAs)
		case key.Matches(msg, keys.Open):
			return a.openPrompt(a.prompt.open)
		case key.Matches(msg, keys.Password):
			return a.openPrompt(a.prompt.password)
		case key.Matches(msg, keys.Decrypt):
			if !a.ws.Encrypted() {
				return a, status("File is not encrypted")
			}
			if err := a.ws.RemoveEncryption(); err != nil {
				return a, errStatus("Remove password failed: %v", err)
			}
			return a, status("Password removed")
		case key.Matches(msg, keys.Restore):
			if err := a.ws.RestoreBackup(); err != nil {
				return a, errStatus("Restore failed: %v", err)
			}
			return a, tea.Batch(a.refreshAll(), status("Restored from backup"))
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, a.tasks.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		cmds := []tea.Cmd{a.ticker.cmd()}
		if a.ticker.tick(time.Time(msg)) {
			cmds = append(cmds, a.ticker.autosaveCmd())
		}
		// Live views follow the running clock.
		switch a.activeView {
		case viewDashboard:
			cmds = append(cmds, a.dashboard.loadData())
		case viewTasks:
			cmds = append(cmds, a.tasks.refresh())
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case savedMsg:
		if msg.auto {
			a.status, a.statusErr = "Autosaved "+filepath.Base(msg.path), false
		} else {
			a.status, a.statusErr = "Saved "+msg.path, false
		}
		return a, a.settings.refresh()

	case documentChangedMsg:
		a.ticker.trackRun(a.clock.Now())
		return a, a.refreshAll()

	case timerStoppedMsg:
		a.status, a.statusErr = "Timer stopped", false
		a.ticker.trackRun(a.clock.Now())
		return a, nil

	case timerStartedMsg:
		a.status, a.statusErr = "Tracking "+msg.title, false
		a.ticker.trackRun(a.clock.Now())
		return a, nil

	case exportDoneMsg:
		a.status, a.statusErr = "Exported to "+msg.path, false
		a.exportPicking = false
		return a, nil

	// Data messages belong to their view even when it is not showing.
	case dashboardDataMsg:
		a.dashboard, _ = a.dashboard.update(msg)
		return a, nil
	case tasksDataMsg:
		a.tasks, _ = a.tasks.update(msg)
		return a, nil
	case reportsDataMsg:
		a.reports, _ = a.reports.update(msg)
		return a, nil
	case settingsDataMsg:
		a.settings, _ = a.settings.update(msg)
		return a, nil
	}

	if a.prompt.active() {
		var cmd tea.Cmd
		a.prompt, cmd = a.prompt.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a App) openPrompt(open func() (promptModel, tea.Cmd)) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.prompt, cmd = open()
	return a, cmd
}

func (a App) save() (tea.Model, tea.Cmd) {
	err := a.ws.Save()
	switch {
	case errors.Is(err, workspace.ErrNoPath):
		return a.openPrompt(a.prompt.saveAs)
	case err != nil:
		return a, errStatus("Save failed: %v", err)
	}
	path := a.ws.Path()
	return a, func() tea.Msg { return savedMsg{path: path} }
}

// quit saves if autosave allows it. Unsaved changes need a second q.
func (a App) quit() (tea.Model, tea.Cmd) {
	if _, err := a.ws.Autosave(); err != nil {
		a.status, a.statusErr = "Autosave failed: "+err.Error(), true
	}
	if !a.ws.Dirty() || a.quitArmed {
		return a, tea.Quit
	}
	a.quitArmed = true
	a.status, a.statusErr = "Unsaved changes: press q again to quit, ctrl+s to save", true
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	if a.prompt.active() {
		return true
	}
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewTasks:
		return a.tasks.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) refreshAll() tea.Cmd {
	return tea.Batch(
		a.dashboard.loadData(),
		a.tasks.refresh(),
		a.reports.refresh(),
		a.settings.refresh(),
	)
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTasks:
		content = a.tasks.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	switch {
	case a.prompt.active():
		content = a.prompt.view(a.width)
	case a.exportPicking:
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	name := "timekeeper"
	if p := a.ws.Path(); p != "" {
		name += " · " + filepath.Base(p)
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render(name)
	if a.ws.Dirty() {
		title += accentStyle.Render(" *")
	}
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	switch {
	case a.status == "":
	case a.statusErr:
		status = errorStyle.Render(" " + a.status)
	default:
		status = mutedStyle.Render(" " + a.status)
	}

	timerInfo := ""
	if a.ticker.running() {
		timerInfo = successStyle.Render(" ● " + formatDuration(a.ticker.currentRun(a.clock.Now())))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"CSV", "JSON"}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Hours")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, subtitleStyle.Render("Every logged day, one column per task"))
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	ws, now := a.ws, a.clock.Now()
	return func() tea.Msg {
		grid, err := ws.HourGrid(ledger.Date{}, ledger.Date{}, nil)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		var path string
		if format == 0 {
			path = export.DefaultFileName(ws.Path(), "csv", now)
			if err := export.ToCSV(grid, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = export.DefaultFileName(ws.Path(), "json", now)
			if err := export.ToJSON(grid, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
