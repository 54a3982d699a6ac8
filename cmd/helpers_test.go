package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alt-project/normscan/internal/output"
)

const baseTestConfig = `output:
  colors: false
logging:
  level: error
`

// setupCmdTest resets flag state left over from earlier executions and
// points the root command at a fresh config file holding extra
func setupCmdTest(t *testing.T, extra string) *bytes.Buffer {
	t.Helper()

	resetFlags(rootCmd)

	path := filepath.Join(t.TempDir(), "normscan.yaml")
	if err := os.WriteFile(path, []byte(baseTestConfig+extra), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfgFile = path

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		cfgFile = ""
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return buf
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(args ...string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// requireExitCode fails unless err is a CLIError with the given code
func requireExitCode(t *testing.T, err error, code int) *output.CLIError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with exit code %d, got nil", code)
	}
	var cliErr *output.CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected *output.CLIError, got %T: %v", err, err)
	}
	if cliErr.ExitCode != code {
		t.Fatalf("exit code = %d, want %d (%s: %s)", cliErr.ExitCode, code, cliErr.Summary, cliErr.Detail)
	}
	return cliErr
}

type dayShape int

const (
	shapeNormal dayShape = iota
	shapeConstant
	shapeOutlier
)

// writeSampleFile writes one day of n samples per shape, starting at the
// Unix epoch, and returns the file path
func writeSampleFile(t *testing.T, n int, shapes ...dayShape) string {
	t.Helper()
	rng := rand.New(rand.NewPCG(42, 43))

	var b strings.Builder
	for d, shape := range shapes {
		for i := 0; i < n; i++ {
			var v int64
			switch shape {
			case shapeNormal:
				v = int64(math.Round(100000 + 1000*rng.NormFloat64()))
			case shapeConstant:
				v = 100
			case shapeOutlier:
				v = 100
				if i == n/2 {
					v = 0
				}
			}
			fmt.Fprintf(&b, "%d,%d\n", int64(d)*86400+int64(i), v)
		}
	}
	return writeFile(t, b.String())
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "samples.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing samples: %v", err)
	}
	return path
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}
