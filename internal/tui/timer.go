package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/timekeeper/internal/workspace"
)

// tickerModel turns wall-clock ticks into whole-second workspace steps and
// decides when an autosave is due.
type tickerModel struct {
	ws *workspace.Workspace

	interval time.Duration
	autosave time.Duration

	last     time.Time
	lastSave time.Time

	// Start of the current run of the active task, for the footer.
	runningSince time.Time
	runningID    uint32
}

func newTickerModel(ws *workspace.Workspace, interval, autosave time.Duration, now time.Time) tickerModel {
	if interval <= 0 {
		interval = time.Second
	}
	return tickerModel{
		ws:       ws,
		interval: interval,
		autosave: autosave,
		last:     now,
		lastSave: now,
	}
}

func (t tickerModel) cmd() tea.Cmd {
	return tea.Tick(t.interval, func(now time.Time) tea.Msg {
		return tickMsg(now)
	})
}

// steps returns how many whole seconds passed since the last tick. At most
// one interval's worth is returned, so a suspended process does not credit
// the time it was asleep.
func (t *tickerModel) steps(now time.Time) int {
	elapsed := now.Sub(t.last)
	if elapsed < 0 {
		t.last = now
		return 0
	}
	n := int(elapsed / time.Second)
	limit := max(1, int(t.interval/time.Second))
	t.last = t.last.Add(time.Duration(n) * time.Second)
	if n > limit {
		n = limit
		t.last = now
	}
	return n
}

// tick advances the workspace and reports whether an autosave is due.
func (t *tickerModel) tick(now time.Time) bool {
	for range t.steps(now) {
		t.ws.Advance()
	}
	t.trackRun(now)

	if t.autosave <= 0 || now.Sub(t.lastSave) < t.autosave {
		return false
	}
	t.lastSave = now
	return true
}

func (t *tickerModel) trackRun(now time.Time) {
	id, ok := t.ws.Active()
	switch {
	case !ok:
		t.runningSince = time.Time{}
		t.runningID = 0
	case id != t.runningID || t.runningSince.IsZero():
		t.runningSince = now
		t.runningID = id
	}
}

func (t tickerModel) running() bool {
	_, ok := t.ws.Active()
	return ok
}

// currentRun is how long the active task has been running in this session.
func (t tickerModel) currentRun(now time.Time) time.Duration {
	if t.runningSince.IsZero() || !t.running() {
		return 0
	}
	return now.Sub(t.runningSince)
}

func (t tickerModel) autosaveCmd() tea.Cmd {
	ws := t.ws
	return func() tea.Msg {
		saved, err := ws.Autosave()
		if err != nil {
			return statusMsg{text: "Autosave failed: " + err.Error(), isError: true}
		}
		if !saved {
			return nil
		}
		return savedMsg{path: ws.Path(), auto: true}
	}
}
