package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timekeeper/internal/ledger"
	"github.com/sadopc/timekeeper/internal/workspace"
)

var sortCycle = []ledger.SortKey{
	ledger.SortByTitle,
	ledger.SortByDaily,
	ledger.SortByMonthly,
	ledger.SortByYearly,
	ledger.SortByTotal,
}

type tasksModel struct {
	ws     *workspace.Workspace
	width  int
	height int

	tasks    []ledger.Task
	today    ledger.Date
	activeID uint32
	running  bool
	cursor   int

	sortKey   ledger.SortKey
	sortOrder ledger.SortOrder

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit", "add_time", "delete", "realloc_all"

	// Form field pointers (survive value copies)
	formTitle   *string
	formDesc    *string
	formDate    *string
	formAmount  *string
	formConfirm *bool

	editingID uint32
}

func newTasksModel(ws *workspace.Workspace) tasksModel {
	title, desc, date, amount, confirm := "", "", "", "", false
	return tasksModel{
		ws:          ws,
		formTitle:   &title,
		formDesc:    &desc,
		formDate:    &date,
		formAmount:  &amount,
		formConfirm: &confirm,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type tasksDataMsg struct {
	tasks    []ledger.Task
	today    ledger.Date
	activeID uint32
	running  bool
}

func (m tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		id, running := m.ws.Active()
		return tasksDataMsg{tasks: m.ws.Tasks(), today: m.ws.Today(), activeID: id, running: running}
	}
}

func (m tasksModel) selected() (ledger.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return ledger.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksDataMsg:
		m.tasks = msg.tasks
		m.today = msg.today
		m.activeID = msg.activeID
		m.running = msg.running
		if m.cursor >= len(m.tasks) {
			m.cursor = max(0, len(m.tasks)-1)
		}
		return m, nil

	case tickMsg:
		return m, m.refresh()

	case tea.KeyMsg:
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.New):
		return m.showTaskForm("new", ledger.Task{})
	case key.Matches(msg, keys.Sort):
		m.sortKey = nextSortKey(m.sortKey)
		m.ws.Sort(m.sortKey, m.sortOrder)
		return m, tea.Batch(m.refresh(), status("Sorted by "+m.sortKey.String()))
	case key.Matches(msg, keys.Reverse):
		m.sortOrder = 1 - m.sortOrder
		m.ws.Sort(m.sortKey, m.sortOrder)
		return m, m.refresh()
	case key.Matches(msg, keys.Stop):
		m.ws.Stop()
		return m, tea.Batch(m.refresh(), func() tea.Msg { return timerStoppedMsg{} })
	case key.Matches(msg, keys.ClearTargets):
		m.ws.ResetTargets()
		return m, m.refresh()
	}

	t, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Start):
		if err := m.ws.Start(t.ID); err != nil {
			return m, errStatus("Error: %v", err)
		}
		return m, tea.Batch(m.refresh(), func() tea.Msg { return timerStartedMsg{title: t.Title} })
	case key.Matches(msg, keys.Edit):
		return m.showTaskForm("edit", t)
	case key.Matches(msg, keys.Delete):
		return m.showConfirmForm("delete", t, fmt.Sprintf("Delete %q and all its logged time?", t.Title))
	case key.Matches(msg, keys.Target):
		if _, err := m.ws.ToggleTarget(t.ID); err != nil {
			return m, errStatus("Error: %v", err)
		}
		return m, m.refresh()
	case key.Matches(msg, keys.Reallocate):
		moved, err := m.ws.Reallocate(t.ID, m.today, m.ws.Weighted())
		return m, tea.Batch(m.refresh(), reallocStatus(t.Title, moved, err))
	case key.Matches(msg, keys.ReallocAll):
		return m.showConfirmForm("realloc_all", t, fmt.Sprintf("Move the whole history of %q to the marked targets?", t.Title))
	case key.Matches(msg, keys.AddTime):
		return m.showAddTimeForm(t)
	case key.Matches(msg, keys.ResetToday):
		if err := m.ws.ResetToday(t.ID); err != nil {
			return m, errStatus("Error: %v", err)
		}
		return m, tea.Batch(m.refresh(), status("Reset today for "+t.Title))
	}
	return m, nil
}

func nextSortKey(k ledger.SortKey) ledger.SortKey {
	for i, c := range sortCycle {
		if c == k {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

func reallocStatus(title string, moved uint32, err error) tea.Cmd {
	switch {
	case errors.Is(err, ledger.ErrNoReallocationTargets):
		return status("Mark at least one target task with t first")
	case errors.Is(err, ledger.ErrSourceIsTarget):
		return status(title + " is itself a target")
	case err != nil:
		return errStatus("Reallocate failed: %v", err)
	case moved == 0:
		return status("Nothing to reallocate from " + title)
	}
	return status(fmt.Sprintf("Moved %s from %s", formatSeconds(int64(moved)), title))
}

func (m tasksModel) showTaskForm(formType string, t ledger.Task) (tasksModel, tea.Cmd) {
	*m.formTitle = t.Title
	*m.formDesc = t.Description
	m.formType = formType
	m.editingID = t.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle).Validate(requireText),
			huh.NewInput().Title("Description").Value(m.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showAddTimeForm(t ledger.Task) (tasksModel, tea.Cmd) {
	*m.formDate = m.today.String()
	*m.formAmount = ""
	m.formType = "add_time"
	m.editingID = t.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Day (YYYY-MM-DD)").Value(m.formDate).Validate(func(s string) error {
				_, err := ledger.ParseDate(s)
				return err
			}),
			huh.NewInput().Title("Minutes to add (e.g. 30, -15, 1:30)").Value(m.formAmount).Validate(func(s string) error {
				_, err := parseAmount(s)
				return err
			}),
		).Title(t.Title),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showConfirmForm(formType string, t ledger.Task, question string) (tasksModel, tea.Cmd) {
	*m.formConfirm = false
	m.formType = formType
	m.editingID = t.ID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(question).Value(m.formConfirm),
		),
	).WithShowHelp(true)

	m.formActive = true
	return m, m.form.Init()
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

// parseAmount reads a signed duration given as minutes ("30", "-15") or
// hours and minutes ("1:30", "-0:45") and returns seconds.
func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("required")
	}
	sign := int64(1)
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}

	if h, mm, ok := strings.Cut(s, ":"); ok {
		hours, err := strconv.ParseInt(h, 10, 64)
		if err != nil || hours < 0 {
			return 0, fmt.Errorf("bad hours %q", h)
		}
		mins, err := strconv.ParseInt(mm, 10, 64)
		if err != nil || mins < 0 || mins > 59 {
			return 0, fmt.Errorf("bad minutes %q", mm)
		}
		return sign * (hours*3600 + mins*60), nil
	}

	mins, err := strconv.ParseInt(s, 10, 64)
	if err != nil || mins < 0 {
		return 0, fmt.Errorf("bad minutes %q", s)
	}
	return sign * mins * 60, nil
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, tea.Batch(m.refresh(), m.applyForm())
	}

	return m, cmd
}

// applyForm carries out the completed form.
func (m tasksModel) applyForm() tea.Cmd {
	title := strings.TrimSpace(*m.formTitle)
	switch m.formType {
	case "new":
		if _, err := m.ws.CreateTask(title, *m.formDesc); err != nil {
			return errStatus("Create failed: %v", err)
		}
		return status("Created " + title)
	case "edit":
		if err := m.ws.RenameTask(m.editingID, title, *m.formDesc); err != nil {
			return errStatus("Edit failed: %v", err)
		}
	case "add_time":
		day, err := ledger.ParseDate(*m.formDate)
		if err != nil {
			return errStatus("Bad date: %v", err)
		}
		secs, err := parseAmount(*m.formAmount)
		if err != nil {
			return errStatus("Bad amount: %v", err)
		}
		if err := m.ws.AddTime(m.editingID, day, secs); err != nil {
			return errStatus("Add time failed: %v", err)
		}
	case "delete":
		if !*m.formConfirm {
			return nil
		}
		if err := m.ws.RemoveTask(m.editingID); err != nil {
			return errStatus("Delete failed: %v", err)
		}
	case "realloc_all":
		if !*m.formConfirm {
			return nil
		}
		t, _ := m.ws.Task(m.editingID)
		moved, err := m.ws.ReallocateAll(m.editingID, m.ws.Weighted())
		return reallocStatus(t.Title, moved, err)
	}
	return nil
}

func (m tasksModel) view() string {
	if m.formActive && m.form != nil {
		var title string
		switch m.formType {
		case "new":
			title = "New Task"
		case "edit":
			title = "Edit Task"
		case "add_time":
			title = "Add Time"
		default:
			title = "Confirm"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View())
		return panelStyle.Width(m.width - 4).Render(content)
	}
	return m.renderList()
}

func (m tasksModel) renderList() string {
	w := m.width - 4
	order := "↑"
	if m.sortOrder == ledger.Descending {
		order = "↓"
	}
	title := titleStyle.Render("Tasks") + "  " + mutedStyle.Render("sorted by "+m.sortKey.String()+" "+order)

	if len(m.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	// Table header
	header := mutedStyle.Render(fmt.Sprintf("  %-4s %-24s %9s %10s %11s %11s", "", "Task", "Today", "Month", "Year", "Total"))
	rows = append(rows, header)

	for i, t := range m.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marks := " "
		if m.running && t.ID == m.activeID {
			marks = successStyle.Render("●")
		}
		if t.AllocateTarget {
			marks += targetStyle.Render("◆")
		} else {
			marks += " "
		}
		row := style.Render(cursor) + marks + style.Render(fmt.Sprintf("   %-24s %9s %10s %11s %11s",
			truncate(t.Title, 24),
			formatTime(t.Today),
			formatTime(t.ThisMonth),
			formatTime(t.ThisYear),
			formatTime(t.Total),
		))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  s/x: start/stop  n: new  enter: edit  d: delete  a: add time  z: reset today"))
	rows = append(rows, mutedStyle.Render("  t: target  T: clear targets  r/R: reallocate today/all  S: sort  /: reverse"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
