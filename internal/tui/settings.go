package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timekeeper/internal/datafile"
	"github.com/sadopc/timekeeper/internal/ledger"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/workspace"
)

type settingsModel struct {
	store  *store.Store
	ws     *workspace.Workspace
	width  int
	height int

	settings   []store.Setting
	recent     []store.RecentFile
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	weighted     *bool
	autosave     *bool
	startingView *int
}

func newSettingsModel(ws *workspace.Workspace, s *store.Store) settingsModel {
	weighted, autosave, view := false, true, 0
	return settingsModel{
		store:        s,
		ws:           ws,
		weighted:     &weighted,
		autosave:     &autosave,
		startingView: &view,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	recent   []store.RecentFile
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		recent, _ := s.store.ListRecentFiles(5)
		return settingsDataMsg{settings: settings, recent: recent}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.recent = msg.recent
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.weighted = s.store.GetBool(store.KeyWeightedReallocation, false)
	*s.autosave = s.store.GetBool(store.KeyAutosave, true)
	*s.startingView = s.store.GetInt(store.KeyStartingView, 0)

	viewOptions := make([]huh.Option[int], len(viewNames))
	for i, name := range viewNames {
		viewOptions[i] = huh.NewOption(name, i)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Weighted reallocation").
				Description("Split reallocated time in proportion to what each target already has").
				Value(s.weighted),
			huh.NewConfirm().Title("Autosave").
				Description("Save the open file periodically and on quit").
				Value(s.autosave),
			huh.NewSelect[int]().Title("Starting view").Options(viewOptions...).Value(s.startingView),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, errStatus("Saving settings failed: %v", err)
		}
		return s, tea.Batch(s.refresh(), status("Settings saved"))
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	if err := s.store.SetBool(store.KeyWeightedReallocation, *s.weighted); err != nil {
		return err
	}
	if err := s.store.SetBool(store.KeyAutosave, *s.autosave); err != nil {
		return err
	}
	return s.store.SetSetting(store.KeyStartingView, strconv.Itoa(*s.startingView))
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"))
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, titleStyle.Render("File"))
	rows = append(rows, "")
	rows = append(rows, s.renderFileInfo()...)

	if len(s.recent) > 0 {
		rows = append(rows, "")
		rows = append(rows, titleStyle.Render("Recent Files"))
		for _, f := range s.recent {
			lock := " "
			if f.Encrypted {
				lock = warningStyle.Render("⚿")
			}
			rows = append(rows, fmt.Sprintf("  %s %s  %s", lock, f.Path, mutedStyle.Render(f.OpenedAt.Local().Format("2006-01-02 15:04"))))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit settings  ctrl+s: save  w: save as  o: open"))
	rows = append(rows, mutedStyle.Render("  p: set password  u: remove password  b: restore backup"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s settingsModel) renderFileInfo() []string {
	path := s.ws.Path()
	if path == "" {
		return []string{"  " + mutedStyle.Render("unsaved document (w: save as)")}
	}
	format := "plain"
	if s.ws.Encrypted() {
		format = "encrypted"
	}
	state := successStyle.Render("saved")
	if s.ws.Dirty() {
		state = warningStyle.Render("modified")
	}
	label := lipgloss.NewStyle().Width(24)
	return []string{
		fmt.Sprintf("  %s %s", label.Render("path"), highlightStyle.Render(path)),
		fmt.Sprintf("  %s %s", label.Render("format"), highlightStyle.Render(format)),
		fmt.Sprintf("  %s %s", label.Render("backup"), mutedStyle.Render(datafile.BackupPath(path))),
		fmt.Sprintf("  %s %s", label.Render("state"), state),
	}
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.KeyWeightedReallocation, store.KeyAutosave:
		if v == "1" {
			return "on"
		}
		return "off"
	case store.KeyStartingView:
		if i, err := strconv.Atoi(v); err == nil && i >= 0 && i < len(viewNames) {
			return viewNames[i]
		}
	case store.KeyLastSelectedDate:
		if v == "0" {
			return "today"
		}
		if jd, err := strconv.ParseInt(v, 10, 64); err == nil {
			return ledger.FromJulianDay(jd).String()
		}
	case store.KeyLastSaveFile:
		if v == "" {
			return "(none)"
		}
	}
	return v
}
