package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LogLevel != "info" {
		t.Fatalf("expected log_level=info, got %s", cfg.LogLevel)
	}
	if cfg.Poll() != time.Second {
		t.Fatalf("expected poll interval 1s, got %s", cfg.Poll())
	}
	if cfg.Autosave() != 5*time.Minute {
		t.Fatalf("expected autosave interval 5m, got %s", cfg.Autosave())
	}
	if !strings.HasSuffix(cfg.SettingsDB, filepath.Join(".config", "timekeeper", "timekeeper.db")) {
		t.Fatalf("unexpected settings_db: %s", cfg.SettingsDB)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults: %v", err)
	}
	if cfg.PollInterval != "1s" {
		t.Fatalf("expected default poll interval, got %s", cfg.PollInterval)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
data_file: /tmp/work.tkd
settings_db: /tmp/settings.db
log_file: /tmp/timekeeper.log
log_level: debug
poll_interval: 500ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataFile != "/tmp/work.tkd" {
		t.Fatalf("data_file: got %s", cfg.DataFile)
	}
	if cfg.SettingsDB != "/tmp/settings.db" {
		t.Fatalf("settings_db: got %s", cfg.SettingsDB)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level: got %s", cfg.LogLevel)
	}
	if cfg.Poll() != 500*time.Millisecond {
		t.Fatalf("poll: got %s", cfg.Poll())
	}
	// Unset fields keep their defaults.
	if cfg.Autosave() != 5*time.Minute {
		t.Fatalf("autosave: got %s", cfg.Autosave())
	}
}

func TestLoadExpandsPaths(t *testing.T) {
	t.Setenv("TK_TEST_DIR", "/srv/tk")
	path := writeConfig(t, "data_file: ${TK_TEST_DIR}/log.tkd\nlog_file: ~/tk.log\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataFile != "/srv/tk/log.tkd" {
		t.Fatalf("expected env expansion, got %s", cfg.DataFile)
	}
	home, _ := os.UserHomeDir()
	if cfg.LogFile != filepath.Join(home, "tk.log") {
		t.Fatalf("expected home expansion, got %s", cfg.LogFile)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "log_level: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bad log level")
	}

	cfg = Default()
	cfg.PollInterval = "0s"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero poll interval")
	}

	cfg = Default()
	cfg.AutosaveInterval = "soon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unparsable autosave interval")
	}

	cfg = Default()
	cfg.SettingsDB = ""
	cfg.LogLevel = "loud"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "settings_db") || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("expected both problems reported, got %v", err)
	}
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvVar, "/from/env.yaml")

	if got, _ := Resolve("/from/flag.yaml"); got != "/from/flag.yaml" {
		t.Fatalf("flag should win, got %s", got)
	}
	if got, _ := Resolve(""); got != "/from/env.yaml" {
		t.Fatalf("env should be used, got %s", got)
	}

	t.Setenv(EnvVar, "")
	got, err := Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "config.yaml" {
		t.Fatalf("expected default config path, got %s", got)
	}
}
