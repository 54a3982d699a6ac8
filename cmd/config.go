package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alt-project/normscan/internal/output"
	"github.com/alt-project/normscan/internal/report"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Display the effective normscan configuration after defaults, the config
file and NORMSCAN_* environment variables have been applied.

Examples:
  normscan config                # Show all config
  normscan config --path         # Show config file path
  normscan config --json         # Output as JSON
  normscan config --yaml         # Output as YAML, usable as .normscan.yaml`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("path", false, "show config file path")
	configCmd.Flags().Bool("json", false, "output as JSON")
	configCmd.Flags().Bool("yaml", false, "output as YAML")
	configCmd.MarkFlagsMutuallyExclusive("path", "json", "yaml")
}

func runConfig(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	showPath, _ := cmd.Flags().GetBool("path")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")

	if showPath {
		if cfg.File == "" {
			printer.Info("No config file found (using defaults)")
		} else {
			printer.Info("Config file: %s", cfg.File)
		}
		return nil
	}

	if jsonOutput {
		return report.Encode(cmd.OutOrStdout(), report.FormatJSON, cfg)
	}
	if yamlOutput {
		return report.Encode(cmd.OutOrStdout(), report.FormatYAML, cfg)
	}

	printer.Header("Current Configuration")

	table := output.NewTableWithWriter(cmd.OutOrStdout(), []string{"KEY", "VALUE"})
	table.AddRows([][]string{
		{"detect.threshold", strconv.FormatFloat(cfg.Detect.Threshold, 'g', -1, 64)},
		{"detect.limit", strconv.Itoa(cfg.Detect.Limit)},
		{"detect.min_samples", strconv.Itoa(cfg.Detect.MinSamples)},
		{"detect.on_insufficient", cfg.Detect.OnInsufficient},
		{"grouping.key", cfg.Grouping.Key},
		{"grouping.timezone", cfg.Grouping.Timezone},
		{"synthetic.seed", strconv.FormatUint(cfg.Synthetic.Seed, 10)},
		{"synthetic.baseline", strconv.FormatFloat(cfg.Synthetic.Baseline, 'g', -1, 64)},
		{"synthetic.anomaly_period", strconv.Itoa(cfg.Synthetic.AnomalyPeriod)},
		{"scan.parallel", strconv.Itoa(cfg.Scan.Parallel)},
		{"logging.level", cfg.Logging.Level},
		{"logging.format", cfg.Logging.Format},
		{"logging.file", cfg.Logging.File},
		{"output.colors", fmt.Sprintf("%v", cfg.Output.Colors)},
		{"output.format", cfg.Output.Format},
	})
	table.Render()

	printer.PrintHints("config")
	return nil
}
