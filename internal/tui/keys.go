package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Start        key.Binding
	Stop         key.Binding
	New          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	Target       key.Binding
	ClearTargets key.Binding
	Reallocate   key.Binding
	ReallocAll   key.Binding
	AddTime      key.Binding
	ResetToday   key.Binding
	Sort         key.Binding
	Reverse      key.Binding
	Mode         key.Binding
	Export       key.Binding
	Save         key.Binding
	SaveAs       key.Binding
	Open         key.Binding
	Password     key.Binding
	Decrypt      key.Binding
	Restore      key.Binding
	Tab1         key.Binding
	Tab2         key.Binding
	Tab3         key.Binding
	Tab4         key.Binding
	Tab          key.Binding
	Help         key.Binding
	Enter        key.Binding
	Back         key.Binding
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Target: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "mark target"),
	),
	ClearTargets: key.NewBinding(
		key.WithKeys("T"),
		key.WithHelp("T", "clear targets"),
	),
	Reallocate: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reallocate today"),
	),
	ReallocAll: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reallocate all"),
	),
	AddTime: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add time"),
	),
	ResetToday: key.NewBinding(
		key.WithKeys("z"),
		key.WithHelp("z", "reset today"),
	),
	Sort: key.NewBinding(
		key.WithKeys("S"),
		key.WithHelp("S", "sort"),
	),
	Reverse: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "reverse"),
	),
	Mode: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mode"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	SaveAs: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "save as"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Password: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "set password"),
	),
	Decrypt: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "remove password"),
	),
	Restore: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "restore backup"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "dashboard"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "tasks"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "reports"),
	),
	Tab4: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "settings"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.New, k.Save, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.New, k.Edit, k.Delete},
		{k.Target, k.ClearTargets, k.Reallocate, k.ReallocAll},
		{k.AddTime, k.ResetToday, k.Sort, k.Reverse},
		{k.Save, k.SaveAs, k.Open, k.Export},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.Up, k.Down, k.Back, k.Quit},
	}
}
