package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/alt-project/normscan/internal/report"
)

const unknownBuild = "unknown"

var (
	commit    = unknownBuild
	buildTime = unknownBuild
)

// SetBuildInfo records the commit and build time stamped in by the linker.
// Empty values leave the fallback from the embedded module info in place.
func SetBuildInfo(c, bt string) {
	if c != "" {
		commit = c
	}
	if bt != "" {
		buildTime = bt
	}
}

// buildInfo is what "normscan version" reports
type buildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Built     string `json:"built" yaml:"built"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// currentBuild fills commit and build time from the VCS stamp go build
// embeds when the linker did not set them
func currentBuild() buildInfo {
	info := buildInfo{
		Version:   version,
		Commit:    commit,
		Built:     buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == unknownBuild:
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.Built == unknownBuild:
				info.Built = s.Value
			}
		}
	}
	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the version, commit, build time and Go runtime of this binary.

Examples:
  normscan version             # Human readable
  normscan version --short     # Version string only
  normscan version -o json     # Structured`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		info := currentBuild()

		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(w, info.Version)
			return nil
		}

		name, _ := cmd.Flags().GetString("format")
		format, err := report.ParseFormat(name)
		if err != nil {
			return usageError(err.Error(), "")
		}
		if format.Structured() {
			return report.Encode(w, format, info)
		}

		fmt.Fprintf(w, "normscan version %s\n", info.Version)
		fmt.Fprintf(w, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(w, "  built:      %s\n", info.Built)
		fmt.Fprintf(w, "  go version: %s\n", info.GoVersion)
		fmt.Fprintf(w, "  platform:   %s\n", info.Platform)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().Bool("short", false, "print the version string only")
	versionCmd.Flags().StringP("format", "o", "text", "output format (text, json, yaml)")
}
