package deps

import (
	"os"
	"path/filepath"
	"testing"

	"vfrchap/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("blank command detail = %q", results[2].Detail)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	reqs := Requirements(cfg, true)
	if len(reqs) != 1 || reqs[0].Command != "mkvmerge" || reqs[0].Optional {
		t.Fatalf("Requirements = %#v", reqs)
	}
	statuses := CheckBinaries(reqs)
	if !statuses[0].Available {
		t.Fatalf("stubbed mkvmerge not found: %s", statuses[0].Detail)
	}
	if len(Missing(statuses)) != 0 {
		t.Fatalf("unexpected missing: %#v", Missing(statuses))
	}
}

func TestMissingIgnoresOptional(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Audio.MkvmergeBinary = "clearly-not-present-mkvmerge"

	if got := Missing(CheckBinaries(Requirements(cfg, false))); len(got) != 0 {
		t.Fatalf("optional mkvmerge reported missing: %#v", got)
	}
	if got := Missing(CheckBinaries(Requirements(cfg, true))); len(got) != 1 {
		t.Fatalf("expected mkvmerge to be missing, got %#v", got)
	}
}
