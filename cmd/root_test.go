package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"init", "sync", "add", "edit", "list", "today", "run", "schedule",
		"stats", "overview", "history", "explain", "check-email", "test-email",
	}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestReadCodeFile(t *testing.T) {
	if code, err := readCodeFile(""); err != nil || code != "" {
		t.Fatalf("empty path = %q, %v", code, err)
	}
	path := filepath.Join(t.TempDir(), "sol.go")
	if err := os.WriteFile(path, []byte("package main"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	code, err := readCodeFile(path)
	if err != nil || code != "package main" {
		t.Fatalf("readCodeFile = %q, %v", code, err)
	}
	if _, err := readCodeFile(filepath.Join(t.TempDir(), "missing.go")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
