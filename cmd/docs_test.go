package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDocsMan(t *testing.T) {
	setupCmdTest(t, "")

	tmpDir := t.TempDir()
	if err := execute("docs", "--format", "man", "--output", tmpDir); err != nil {
		t.Fatalf("docs --format man failed: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(tmpDir, "*.1"))
	if err != nil {
		t.Fatalf("glob failed: %v", err)
	}
	if len(matches) == 0 {
		t.Error("no man pages generated")
	}
}

func TestDocsMarkdown(t *testing.T) {
	setupCmdTest(t, "")

	tmpDir := t.TempDir()
	if err := execute("docs", "--format", "markdown", "--output", tmpDir); err != nil {
		t.Fatalf("docs --format markdown failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "normscan_detect.md")); err != nil {
		entries, _ := os.ReadDir(tmpDir)
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("normscan_detect.md not generated. Files in dir: %v", names)
	}
}

func TestDocsInvalidFormat(t *testing.T) {
	setupCmdTest(t, "")

	if err := execute("docs", "--format", "pdf", "--output", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown docs format")
	}
}
