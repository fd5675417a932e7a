package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()
	want := []string{"serve", "edit", "replace", "stats", "config", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("missing command %q: %v", name, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) == "" {
		t.Fatalf("expected version output")
	}
}

func TestStatsCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("one two\nthree"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := runRoot(t, "stats", path)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if want := path + ": 13 characters, 3 words, 2 lines\n"; out != want {
		t.Fatalf("unexpected output %q, want %q", out, want)
	}
}

func TestReplaceCommandPrints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("Cat cat CAT"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := runRoot(t, "replace", "--find", "cat", "--with", "dog", path)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if out != "dog dog dog" {
		t.Fatalf("unexpected output %q", out)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "Cat cat CAT" {
		t.Fatalf("file changed without --in-place: %q", data)
	}
}

func TestReplaceCommandInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("a.b a.b"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := runRoot(t, "replace", "--find", "a.b", "--with", "x", "--in-place", path)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !strings.Contains(out, "replaced 2 occurrence(s)") {
		t.Fatalf("unexpected output %q", out)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "x x" {
		t.Fatalf("unexpected file content %q", data)
	}
}

func TestReplaceRequiresFind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := runRoot(t, "replace", "--with", "y", path); err == nil {
		t.Fatalf("expected error without --find")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := runRoot(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "config_version: 1") {
		t.Fatalf("unexpected config:\n%s", data)
	}
	if _, err := runRoot(t, "config", "init", "--config", path); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := runRoot(t, "config", "init", "--config", path, "--force"); err != nil {
		t.Fatalf("config init --force: %v", err)
	}
}
