package cmd

import (
	"strings"
	"testing"

	"github.com/alt-project/normscan/internal/output"
)

func TestCompletion_Shells(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			buf := setupCmdTest(t, "")
			if err := execute("completion", shell); err != nil {
				t.Fatalf("completion %s failed: %v", shell, err)
			}
			if !strings.Contains(buf.String(), "normscan") {
				t.Errorf("completion script for %s does not mention normscan", shell)
			}
		})
	}
}

func TestCompletion_InvalidShell(t *testing.T) {
	setupCmdTest(t, "")

	requireExitCode(t, execute("completion", "tcsh"), output.ExitUsageError)
}
