package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/lbmenu/internal/config"
	"github.com/example/lbmenu/internal/dispatch"
)

func TestParseGlobalFlagsStopsAtCommand(t *testing.T) {
	base := config.Config{SettingsRoot: "/default", ProfilesEnabled: true, Watch: true, ControlAddr: config.DefaultControlAddr}
	args := []string{"-s", "/tmp/root", "--no-profiles", "--debug", "run", "--debug", "Apps/Shell"}

	cfg, rest, err := parseGlobalFlags(base, args)
	if err != nil {
		t.Fatalf("parseGlobalFlags returned error: %v", err)
	}
	if cfg.SettingsRoot != "/tmp/root" {
		t.Fatalf("unexpected settings root %q", cfg.SettingsRoot)
	}
	if cfg.ProfilesEnabled {
		t.Fatalf("profiles should be disabled")
	}
	if !cfg.Debug {
		t.Fatalf("expected debug flag to be enabled")
	}
	if !cfg.Watch {
		t.Fatalf("watch should stay enabled")
	}
	want := []string{"run", "--debug", "Apps/Shell"}
	if strings.Join(rest, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected remaining args: %#v", rest)
	}
}

func TestParseGlobalFlagsControl(t *testing.T) {
	cfg, rest, err := parseGlobalFlags(config.Config{}, []string{"--control", "--control-addr", "127.0.0.1:9000", "--no-watch"})
	if err != nil {
		t.Fatalf("parseGlobalFlags returned error: %v", err)
	}
	if !cfg.ControlEnabled || cfg.ControlAddr != "127.0.0.1:9000" || cfg.Watch {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(rest) != 0 {
		t.Fatalf("unexpected remaining args: %#v", rest)
	}
}

func TestParseGlobalFlagsRejectsUnknownFlag(t *testing.T) {
	if _, _, err := parseGlobalFlags(config.Config{}, []string{"--bogus"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func TestFindActionPrefersIdentifier(t *testing.T) {
	actions := []dispatch.Action{
		{ID: "a", Path: "Apps/Shell"},
		{ID: "Apps/Shell", Path: "Other"},
	}
	if got, ok := findAction(actions, "Apps/Shell"); !ok || got.Path != "Other" {
		t.Fatalf("expected identifier match, got %+v", got)
	}
	if got, ok := findAction(actions, "Other"); !ok || got.ID != "Apps/Shell" {
		t.Fatalf("expected path match, got %+v", got)
	}
	if _, ok := findAction(actions, "missing"); ok {
		t.Fatalf("expected no match")
	}
}

func TestInitThenList(t *testing.T) {
	root := t.TempDir()
	cfg := config.Config{SettingsRoot: root}
	var out bytes.Buffer

	if err := handleCLI(context.Background(), cfg, []string{"init", "--format", "yaml"}, &out); err != nil {
		t.Fatalf("init returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "settings.yaml")); err != nil {
		t.Fatalf("expected settings.yaml: %v", err)
	}
	if err := handleCLI(context.Background(), cfg, []string{"init", "--format", "yaml"}, &out); err == nil {
		t.Fatalf("expected init to refuse overwriting without --force")
	}

	out.Reset()
	if err := handleCLI(context.Background(), cfg, []string{"list"}, &out); err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	for _, want := range []string{"Applications/Terminal", "Applications/Edit settings", "Home folder"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("list output missing %q:\n%s", want, out.String())
		}
	}
}

func TestListWithoutSettings(t *testing.T) {
	var out bytes.Buffer
	if err := handleList(config.Config{SettingsRoot: t.TempDir()}, &out); err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	if !strings.Contains(out.String(), "No menu actions configured") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}

func TestEncryptProducesLoadableSettings(t *testing.T) {
	t.Setenv(config.EnvSecret, "hunter2")
	root := t.TempDir()
	cfg := config.Config{SettingsRoot: root}
	var out bytes.Buffer

	if err := handleCLI(context.Background(), cfg, []string{"init", "--format", "json"}, &out); err != nil {
		t.Fatalf("init returned error: %v", err)
	}
	if err := handleCLI(context.Background(), cfg, []string{"encrypt"}, &out); err != nil {
		t.Fatalf("encrypt returned error: %v", err)
	}
	if err := os.Remove(filepath.Join(root, "settings.json")); err != nil {
		t.Fatalf("remove plaintext: %v", err)
	}

	doc, err := cfg.LoadDocument()
	if err != nil {
		t.Fatalf("LoadDocument returned error: %v", err)
	}
	if len(doc.Root.Children) != 3 {
		t.Fatalf("expected three top-level nodes, got %d", len(doc.Root.Children))
	}
}

func TestRunRejectsUnknownTarget(t *testing.T) {
	var out bytes.Buffer
	err := handleRun(config.Config{SettingsRoot: t.TempDir()}, []string{"Nope"}, &out)
	if err == nil {
		t.Fatalf("expected error for unknown action")
	}
}

func TestUnknownCommand(t *testing.T) {
	err := handleCLI(context.Background(), config.Config{}, []string{"explode"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
