package profiles

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	return path
}

func TestScanOrdersProfilesAndFallsBackOnLabels(t *testing.T) {
	dir := t.TempDir()
	named := writeProfile(t, dir, "b.remmina", "[remmina]\nname=Build server\nserver=build.local\nprotocol=RDP\n")
	server := writeProfile(t, dir, "a.remmina", "[remmina]\nserver=alpha.local:3389\n")
	bare := writeProfile(t, dir, "c-host.remmina", "[remmina]\nprotocol=VNC\n")
	writeProfile(t, dir, "d.remmina", "[other]\nserver=ignored\n")
	writeProfile(t, dir, "notes.txt", "[remmina]\nserver=ignored\n")
	if err := os.Mkdir(filepath.Join(dir, "dir.remmina"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	node, err := Scan(dir, Options{})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if node == nil {
		t.Fatalf("expected a profile submenu")
	}
	if node.Label != "Remmina" || node.Icon != "remmina" {
		t.Fatalf("unexpected submenu %+v", node)
	}

	want := []struct {
		label string
		path  string
	}{
		{"alpha.local:3389", server},
		{"Build server", named},
		{"c-host", bare},
	}
	if len(node.Children) != len(want) {
		t.Fatalf("expected %d profiles, got %d", len(want), len(node.Children))
	}
	for i, w := range want {
		child := node.Children[i]
		if child.Label != w.label {
			t.Fatalf("profile %d label = %q, want %q", i, child.Label, w.label)
		}
		if child.Command != "remmina" {
			t.Fatalf("unexpected command %q", child.Command)
		}
		if len(child.Args) != 2 || child.Args[0] != "-c" || child.Args[1] != w.path {
			t.Fatalf("unexpected args %#v", child.Args)
		}
	}
}

func TestScanCustomCommand(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "a.remmina", "[remmina]\nserver=alpha\n")

	node, err := Source(dir, Options{Command: "/usr/bin/remmina", Label: "Desktops"})()
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if node.Label != "Desktops" || node.Children[0].Command != "/usr/bin/remmina" {
		t.Fatalf("options not applied: %+v", node)
	}
}

func TestScanMissingOrEmptyDirectory(t *testing.T) {
	tests := []struct {
		name string
		dir  string
	}{
		{name: "missing", dir: filepath.Join(t.TempDir(), "nope")},
		{name: "empty", dir: t.TempDir()},
		{name: "unset", dir: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Scan(tt.dir, Options{})
			if err != nil {
				t.Fatalf("Scan returned error: %v", err)
			}
			if node != nil {
				t.Fatalf("expected no node, got %+v", node)
			}
		})
	}
}
