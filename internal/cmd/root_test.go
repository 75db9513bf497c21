package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("Root command should not be nil")
	}

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("--help returned error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "wordfinder") {
		t.Errorf("Help text should contain 'wordfinder', got: %s", output)
	}
	for _, flag := range []string{"--config", "--log-level", "--max-line-bytes", "--exclude"} {
		if !strings.Contains(output, flag) {
			t.Errorf("Help text should list %s, got: %s", flag, output)
		}
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	want := map[string]bool{"find": false, "tree": false, "serve": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Expected subcommand %q", name)
		}
	}
}

func TestLoadSettingsOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := "search:\n  max_line_bytes: 4096\n  exclude_dirs: [\".git\"]\nlogging:\n  level: warn\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := &globalOptions{configPath: configPath}
	settings, err := opts.loadSettings()
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if settings.Search.MaxLineBytes != 4096 {
		t.Errorf("MaxLineBytes = %d, want 4096", settings.Search.MaxLineBytes)
	}
	if settings.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", settings.Logging.Level)
	}

	opts = &globalOptions{configPath: configPath, logLevel: "debug", maxLineBytes: 64, exclude: []string{"vendor"}}
	settings, err = opts.loadSettings()
	if err != nil {
		t.Fatalf("loadSettings() error = %v", err)
	}
	if settings.Search.MaxLineBytes != 64 {
		t.Errorf("MaxLineBytes = %d, want 64", settings.Search.MaxLineBytes)
	}
	if settings.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", settings.Logging.Level)
	}
	if got := strings.Join(settings.Search.ExcludeDirs, ","); got != ".git,vendor" {
		t.Errorf("ExcludeDirs = %q, want .git,vendor", got)
	}
}

func TestLoadSettingsRejectsBadFlags(t *testing.T) {
	opts := &globalOptions{logLevel: "loud"}
	if _, err := opts.loadSettings(); err == nil {
		t.Error("Expected an error for an unknown log level")
	}

	opts = &globalOptions{configPath: filepath.Join(t.TempDir(), "missing.yaml")}
	if _, err := opts.loadSettings(); err == nil {
		t.Error("Expected an error for a missing config file")
	}
}
