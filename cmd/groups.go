package cmd

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alt-project/normscan/internal/anomaly"
	"github.com/alt-project/normscan/internal/output"
	"github.com/alt-project/normscan/internal/report"
)

var groupsCmd = &cobra.Command{
	Use:   "groups <file|->",
	Short: "List every day of a sample log with its test result",
	Long: `Classify every day of the input and print one row per day with its size,
K² statistic, p-value and whether it passed the normality test.

Examples:
  normscan groups data.csv                         # Table of all days
  normscan groups data.csv --on-insufficient skip  # Keep going past short days
  normscan groups data.csv -o yaml                 # Structured listing`,
	Args: usageArgs(cobra.ExactArgs(1)),
	RunE: runGroups,
}

func init() {
	rootCmd.AddCommand(groupsCmd)

	groupsCmd.Flags().StringP("format", "o", "table", "output format (table, json, yaml); unset uses output.format")
	addPipelineFlags(groupsCmd)
}

func runGroups(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	settings, err := resolvePipeline(cmd)
	if err != nil {
		return err
	}
	format, err := resolveListFormat(cmd)
	if err != nil {
		return err
	}

	src, err := openInput(args[0], settings.Location)
	if err != nil {
		return err
	}

	it := anomaly.NewGroups(src, settings.Options)
	var entries []report.GroupEntry
	for it.Next() {
		entries = append(entries, report.NewGroupEntry(it.Classified()))
	}
	runErr := errors.Join(it.Err(), it.Close())
	stats := it.Stats()

	logger.Debug("groups listed",
		"source", args[0],
		"groups", stats.GroupsFormed,
		"anomalies", stats.Anomalies,
		"skipped", stats.GroupsSkipped,
	)

	if runErr != nil {
		return pipelineError(runErr)
	}

	if format.Structured() {
		if entries == nil {
			entries = []report.GroupEntry{}
		}
		return report.Encode(cmd.OutOrStdout(), format, entries)
	}

	table := output.NewTableWithWriter(cmd.OutOrStdout(), []string{"DAY", "FROM", "TO", "SAMPLES", "K2", "P_VALUE", "STATUS"})
	for _, e := range entries {
		k2, p := e.Statistic.String(), e.PValue.String()
		if e.Status == output.StatusSkipped {
			k2, p = "-", "-"
		}
		table.AddRow([]string{
			e.Key,
			e.Start.Format(report.TimeLayout),
			e.End.Format(report.TimeLayout),
			strconv.Itoa(e.Samples),
			k2,
			p,
			printer.StatusBadge(e.Status),
		})
	}
	table.Render()

	printer.Info("\n%d days, %d anomalous, %d skipped", stats.GroupsFormed, stats.Anomalies, stats.GroupsSkipped)
	printer.PrintHints("groups")
	return nil
}
