package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timekeeper/internal/datafile"
	"github.com/sadopc/timekeeper/internal/workspace"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptUnlock
	promptOpen
	promptSaveAs
	promptPassword
)

var promptTitles = map[promptKind]string{
	promptUnlock:   "Unlock",
	promptOpen:     "Open File",
	promptSaveAs:   "Save As",
	promptPassword: "Set Password",
}

// promptModel runs the file and password forms that overlay every view.
type promptModel struct {
	ws   *workspace.Workspace
	kind promptKind
	form *huh.Form

	// File waiting for its password.
	path string

	value   *string
	confirm *string
}

func newPromptModel(ws *workspace.Workspace) promptModel {
	v, c := "", ""
	return promptModel{ws: ws, value: &v, confirm: &c}
}

func (p promptModel) active() bool { return p.kind != promptNone && p.form != nil }

func (p promptModel) unlock(path string) (promptModel, tea.Cmd) {
	*p.value = ""
	p.kind = promptUnlock
	p.path = path
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Password for " + filepath.Base(path)).
				EchoMode(huh.EchoModePassword).
				Value(p.value),
		),
	).WithShowHelp(true)
	return p, p.form.Init()
}

func (p promptModel) open() (promptModel, tea.Cmd) {
	*p.value = p.ws.Path()
	p.kind = promptOpen
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("File to open").Value(p.value).Validate(requireText),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return p, p.form.Init()
}

func (p promptModel) saveAs() (promptModel, tea.Cmd) {
	*p.value = p.ws.Path()
	p.kind = promptSaveAs
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Save to").Value(p.value).Validate(requireText),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return p, p.form.Init()
}

func (p promptModel) password() (promptModel, tea.Cmd) {
	*p.value, *p.confirm = "", ""
	value := p.value
	p.kind = promptPassword
	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(p.value).Validate(requireText),
			huh.NewInput().Title("Repeat password").EchoMode(huh.EchoModePassword).Value(p.confirm).
				Validate(func(s string) error {
					if s != *value {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return p, p.form.Init()
}

func (p promptModel) close() promptModel {
	*p.value, *p.confirm = "", ""
	p.kind = promptNone
	p.form = nil
	return p
}

func (p promptModel) update(msg tea.Msg) (promptModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		return p.close(), nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}
	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	kind, value := p.kind, *p.value
	p = p.close()

	switch kind {
	case promptUnlock:
		return p.openFile(p.path, []byte(value))

	case promptOpen:
		path := expandHome(value)
		locked, err := p.ws.NeedsPassword(path)
		if err != nil {
			return p, errStatus("Open failed: %v", err)
		}
		if locked {
			return p.unlock(path)
		}
		return p.openFile(path, nil)

	case promptSaveAs:
		if err := p.ws.SaveAs(expandHome(value)); err != nil {
			return p, errStatus("Save failed: %v", err)
		}
		path := p.ws.Path()
		return p, func() tea.Msg { return savedMsg{path: path} }

	case promptPassword:
		if err := p.ws.SetPassword([]byte(value)); err != nil {
			return p, errStatus("Set password failed: %v", err)
		}
		if p.ws.Path() == "" {
			return p, status("Password set; it applies when the file is saved")
		}
		return p, status("Password set and file re-encrypted")
	}
	return p, nil
}

func (p promptModel) openFile(path string, password []byte) (promptModel, tea.Cmd) {
	err := p.ws.Open(path, password)
	switch {
	case errors.Is(err, datafile.ErrWrongPassword):
		p, cmd := p.unlock(path)
		return p, tea.Batch(cmd, func() tea.Msg { return statusMsg{text: "Wrong password", isError: true} })
	case err != nil:
		return p, errStatus("Open failed: %v", err)
	}
	return p, tea.Batch(
		func() tea.Msg { return documentChangedMsg{} },
		status("Opened "+path),
	)
}

func (p promptModel) view(width int) string {
	if !p.active() {
		return ""
	}
	content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(promptTitles[p.kind]), "", p.form.View())
	return activePanelStyle.Width(width - 4).Render(content)
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
