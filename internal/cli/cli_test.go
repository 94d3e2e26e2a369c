package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/timekeeper/internal/clock"
	"github.com/sadopc/timekeeper/internal/datafile"
	"github.com/sadopc/timekeeper/internal/ledger"
	"github.com/sadopc/timekeeper/internal/store"
	"github.com/sadopc/timekeeper/internal/workspace"
)

var march10 = ledger.NewDate(2024, time.March, 10)

type testEnv struct {
	dir    string
	config string
	data   string
	db     string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	te := testEnv{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		data:   filepath.Join(dir, "work.tkd"),
		db:     filepath.Join(dir, "settings.db"),
	}
	cfg := fmt.Sprintf("data_file: %s\nsettings_db: %s\nlog_file: %s\nlog_level: debug\n",
		te.data, te.db, filepath.Join(dir, "timekeeper.log"))
	if err := os.WriteFile(te.config, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return te
}

// run executes one command line and returns what it printed.
func (te testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", te.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (te testEnv) mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := te.run(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

// prepare edits the time log directly through a workspace sharing the
// command's settings database.
func (te testEnv) prepare(t *testing.T, fn func(ws *workspace.Workspace)) {
	t.Helper()
	s, err := store.New(te.db)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ws := workspace.New(s, clock.Real(), nil)
	if _, err := os.Stat(te.data); err == nil {
		if err := ws.Open(te.data, nil); err != nil {
			t.Fatal(err)
		}
	}
	fn(ws)
	if ws.Path() == "" {
		err = ws.SaveAs(te.data)
	} else {
		err = ws.Save()
	}
	if err != nil {
		t.Fatal(err)
	}
}

func addTask(t *testing.T, ws *workspace.Workspace, title string, seconds int64) uint32 {
	t.Helper()
	id, err := ws.CreateTask(title, "")
	if err != nil {
		t.Fatal(err)
	}
	if seconds != 0 {
		if err := ws.AddTime(id, march10, seconds); err != nil {
			t.Fatal(err)
		}
	}
	return id
}

// ============================================================
// Tasks
// ============================================================

func TestTasksAddAndList(t *testing.T) {
	te := newTestEnv(t)

	out := te.mustRun(t, "", "tasks", "add", "Dev", "-d", "backend")
	if !strings.Contains(out, "created Dev") {
		t.Fatalf("add output = %q", out)
	}
	te.mustRun(t, "", "tasks", "add", "Ops")

	out = te.mustRun(t, "", "tasks")
	for _, want := range []string{"Dev", "Ops", "Today", "all tasks"} {
		if !strings.Contains(out, want) {
			t.Fatalf("tasks output missing %q:\n%s", want, out)
		}
	}
}

func TestTasksMissingFile(t *testing.T) {
	te := newTestEnv(t)
	if _, err := te.run(t, "", "tasks"); err == nil {
		t.Fatal("listing a missing file should fail")
	}
}

func TestTasksEmpty(t *testing.T) {
	te := newTestEnv(t)
	te.prepare(t, func(*workspace.Workspace) {})

	out := te.mustRun(t, "", "tasks")
	if !strings.Contains(out, "no tasks") {
		t.Fatalf("output = %q", out)
	}
}

func TestTasksRemove(t *testing.T) {
	te := newTestEnv(t)
	var id uint32
	te.prepare(t, func(ws *workspace.Workspace) {
		id = addTask(t, ws, "Dev", 0)
		addTask(t, ws, "Ops", 0)
	})

	out := te.mustRun(t, "", "tasks", "remove", fmt.Sprint(id))
	if !strings.Contains(out, "removed Dev") {
		t.Fatalf("remove output = %q", out)
	}
	out = te.mustRun(t, "", "tasks")
	if strings.Contains(out, "Dev") {
		t.Fatalf("Dev still listed:\n%s", out)
	}

	_, err := te.run(t, "", "tasks", "remove", "12345678")
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("remove unknown id: %v, want ErrNotFound", err)
	}
	if _, err := te.run(t, "", "tasks", "remove", "abc"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("remove bad id: %v, want ErrNotFound", err)
	}
}

// ============================================================
// Reports
// ============================================================

func TestReportDaily(t *testing.T) {
	te := newTestEnv(t)
	te.prepare(t, func(ws *workspace.Workspace) {
		addTask(t, ws, "Dev", 5400)
		addTask(t, ws, "Ops", 1800)
	})

	out := te.mustRun(t, "", "report", "daily", "2024-03-10")
	for _, want := range []string{"2024-03-10", "Dev", "01:30:00", "1.50", "75.0%", "Ops", "25.0%", "total 02:00:00 over 1 day(s)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("daily report missing %q:\n%s", want, out)
		}
	}
}

func TestReportMonthlyAndYearly(t *testing.T) {
	te := newTestEnv(t)
	te.prepare(t, func(ws *workspace.Workspace) {
		id := addTask(t, ws, "Dev", 3600)
		if err := ws.AddTime(id, march10.AddDays(1), 3600); err != nil {
			t.Fatal(err)
		}
	})

	out := te.mustRun(t, "", "report", "monthly", "2024-03")
	if !strings.Contains(out, "02:00:00") || !strings.Contains(out, "over 2 day(s), 01:00:00 per day") {
		t.Fatalf("monthly report:\n%s", out)
	}

	out = te.mustRun(t, "", "report", "yearly", "2024")
	if !strings.Contains(out, "2024") || !strings.Contains(out, "Dev") {
		t.Fatalf("yearly report:\n%s", out)
	}

	out = te.mustRun(t, "", "report", "yearly", "2019")
	if !strings.Contains(out, "nothing logged") {
		t.Fatalf("empty year:\n%s", out)
	}
}

func TestReportBadArguments(t *testing.T) {
	te := newTestEnv(t)
	te.prepare(t, func(*workspace.Workspace) {})

	for _, args := range [][]string{
		{"report", "daily", "10.03.2024"},
		{"report", "monthly", "2024-13"},
		{"report", "yearly", "twenty"},
	} {
		if _, err := te.run(t, "", args...); err == nil {
			t.Fatalf("%v should fail", args)
		}
	}
}

// ============================================================
// Export
// ============================================================

func TestExportCSV(t *testing.T) {
	te := newTestEnv(t)
	te.prepare(t, func(ws *workspace.Workspace) {
		addTask(t, ws, "Dev", 5400)
	})

	path := filepath.Join(te.dir, "hours.csv")
	out := te.mustRun(t, "", "export", "csv", "-o", path)
	if !strings.Contains(out, path) {
		t.Fatalf("export output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Date,Dev") {
		t.Fatalf("csv header: %q", data)
	}
	if !strings.Contains(string(data), "10.03.2024,1.500") {
		t.Fatalf("csv row missing:\n%s", data)
	}
}

func TestExportJSONDefaultName(t *testing.T) {
	te := newTestEnv(t)
	te.prepare(t, func(ws *workspace.Workspace) {
		addTask(t, ws, "Dev", 60)
	})

	te.mustRun(t, "", "export", "json")
	matches, err := filepath.Glob(filepath.Join(te.dir, "work-*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("json exports = %v, want one next to the time log", matches)
	}
}

// ============================================================
// Passwords
// ============================================================

func TestPasswdAndDecrypt(t *testing.T) {
	te := newTestEnv(t)
	te.prepare(t, func(ws *workspace.Workspace) {
		addTask(t, ws, "Dev", 60)
	})

	te.mustRun(t, "secret\n", "passwd")
	if kind, err := datafile.Detect(te.data); err != nil || kind != datafile.KindEncrypted {
		t.Fatalf("after passwd: kind %v, err %v", kind, err)
	}

	out := te.mustRun(t, "secret\n", "tasks")
	if !strings.Contains(out, "Dev") {
		t.Fatalf("encrypted tasks:\n%s", out)
	}

	if _, err := te.run(t, "wrong\n", "tasks"); !errors.Is(err, datafile.ErrWrongPassword) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := te.run(t, "", "tasks"); err == nil {
		t.Fatal("empty password should fail")
	}

	// Current password, then the new one, read from the same stdin.
	te.mustRun(t, "secret\nnewer\n", "passwd")
	if _, err := te.run(t, "secret\n", "tasks"); !errors.Is(err, datafile.ErrWrongPassword) {
		t.Fatalf("old password after change: %v", err)
	}

	out = te.mustRun(t, "newer\n", "decrypt")
	if !strings.Contains(out, "decrypted") {
		t.Fatalf("decrypt output = %q", out)
	}
	if kind, err := datafile.Detect(te.data); err != nil || kind != datafile.KindPlain {
		t.Fatalf("after decrypt: kind %v, err %v", kind, err)
	}

	out = te.mustRun(t, "", "decrypt")
	if !strings.Contains(out, "not encrypted") {
		t.Fatalf("second decrypt = %q", out)
	}
}

// ============================================================
// Journal
// ============================================================

func TestJournal(t *testing.T) {
	te := newTestEnv(t)
	var dev uint32
	te.prepare(t, func(ws *workspace.Workspace) {
		dev = addTask(t, ws, "Dev", 5400)
		addTask(t, ws, "Ops", 60)
	})

	out := te.mustRun(t, "", "journal")
	for _, want := range []string{"add_time", "Dev", "Ops", "2024-03-10", "01:30:00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("journal missing %q:\n%s", want, out)
		}
	}

	out = te.mustRun(t, "", "journal", "--task", fmt.Sprint(dev))
	if strings.Contains(out, "Ops") {
		t.Fatalf("task filter leaked Ops:\n%s", out)
	}

	out = te.mustRun(t, "", "journal", "--action", "reallocate")
	if !strings.Contains(out, "no journal entries") {
		t.Fatalf("action filter:\n%s", out)
	}
}

func TestSignedHMS(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{5400, "01:30:00"},
		{-61, "-00:01:01"},
	}
	for _, tt := range tests {
		if got := signedHMS(tt.secs); got != tt.want {
			t.Errorf("signedHMS(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

// ============================================================
// Backup
// ============================================================

func TestRestoreBackup(t *testing.T) {
	te := newTestEnv(t)
	te.prepare(t, func(ws *workspace.Workspace) {
		addTask(t, ws, "Dev", 0)
	})
	// The second save moves the one-task file to .bak.
	te.prepare(t, func(ws *workspace.Workspace) {
		addTask(t, ws, "Ops", 0)
	})

	out := te.mustRun(t, "", "restore-backup")
	if !strings.Contains(out, "(1 task(s))") {
		t.Fatalf("restore output = %q", out)
	}
	out = te.mustRun(t, "", "tasks")
	if strings.Contains(out, "Ops") {
		t.Fatalf("restored file still has Ops:\n%s", out)
	}
}

func TestRestoreBackupMissing(t *testing.T) {
	te := newTestEnv(t)
	if _, err := te.run(t, "", "restore-backup"); !errors.Is(err, datafile.ErrIO) {
		t.Fatalf("missing backup: %v, want ErrIO", err)
	}
}

// ============================================================
// Configuration
// ============================================================

func TestBadConfig(t *testing.T) {
	te := newTestEnv(t)
	if err := os.WriteFile(te.config, []byte("log_level: loud\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := te.run(t, "", "tasks"); err == nil {
		t.Fatal("invalid config should fail")
	}
}

func TestFileFlagOverridesConfig(t *testing.T) {
	te := newTestEnv(t)
	other := filepath.Join(te.dir, "other.tkd")

	te.mustRun(t, "", "--file", other, "tasks", "add", "Side")
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("--file target not created: %v", err)
	}
	if _, err := os.Stat(te.data); err == nil {
		t.Fatal("config data_file should be untouched")
	}
}
