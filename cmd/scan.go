package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alt-project/normscan/internal/anomaly"
	"github.com/alt-project/normscan/internal/output"
	"github.com/alt-project/normscan/internal/report"
	"github.com/alt-project/normscan/internal/sample"
)

var scanCmd = &cobra.Command{
	Use:   "scan <files...>",
	Short: "Count anomalous days in several sample logs",
	Long: `Run an independent detection pipeline over each file and print one
summary row per file. Up to --parallel files are processed at a time; each
file is still read by a single sequential pipeline.

Examples:
  normscan scan logs/*.csv                 # Summary table
  normscan scan a.csv b.csv --parallel 1   # One file at a time
  normscan scan logs/*.csv --fail-fast     # Stop at the first bad file`,
	Args: usageArgs(cobra.MinimumNArgs(1)),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().IntP("parallel", "p", 4, "number of files processed at a time")
	scanCmd.Flags().Bool("fail-fast", false, "cancel remaining files after the first failure")
	scanCmd.Flags().StringP("format", "o", "table", "output format (table, json, yaml); unset uses output.format")
	addPipelineFlags(scanCmd)
}

// scanResult summarises one file of a scan
type scanResult struct {
	File     string        `json:"file" yaml:"file"`
	Checksum string        `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Status   string        `json:"status" yaml:"status"`
	Stats    anomaly.Stats `json:"stats" yaml:"stats"`
	FirstDay string        `json:"first_anomaly,omitempty" yaml:"first_anomaly,omitempty"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"-" yaml:"-"`
	err      error
}

func runScan(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	settings, err := resolvePipeline(cmd)
	if err != nil {
		return err
	}
	format, err := resolveListFormat(cmd)
	if err != nil {
		return err
	}

	parallel := cfg.Scan.Parallel
	if cmd.Flags().Changed("parallel") {
		parallel, _ = cmd.Flags().GetInt("parallel")
	}
	if parallel < 1 {
		return usageError("invalid parallel: must be at least 1", "")
	}
	failFast, _ := cmd.Flags().GetBool("fail-fast")

	results := make([]scanResult, len(args))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var g *errgroup.Group
	if failFast {
		g, ctx = errgroup.WithContext(ctx)
	} else {
		g = new(errgroup.Group)
	}
	g.SetLimit(parallel)

	for i, path := range args {
		g.Go(func() error {
			results[i] = scanFile(ctx, path, settings)
			if failFast {
				return results[i].err
			}
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r.err)
		}
	}

	if format.Structured() {
		if err := report.Encode(cmd.OutOrStdout(), format, results); err != nil {
			return err
		}
	} else {
		renderScanTable(cmd, printer, results)
	}

	if len(failed) > 0 {
		cliErr := pipelineError(failed[0])
		cliErr.Summary = fmt.Sprintf("%d of %d files failed: %s", len(failed), len(args), cliErr.Summary)
		return cliErr
	}
	printer.PrintHints("scan")
	return nil
}

// scanFile runs one unbounded pipeline. Each call owns its source, so
// calls may run concurrently.
func scanFile(ctx context.Context, path string, settings pipelineSettings) (res scanResult) {
	res = scanResult{File: path}
	started := time.Now()
	defer func() { res.Duration = time.Since(started) }()

	if err := ctx.Err(); err != nil {
		res.Status = output.StatusSkipped
		res.Error = "cancelled"
		return res
	}

	src, err := sample.Open(path, settings.Location)
	if err != nil {
		res.Status, res.Error, res.err = output.StatusFailed, err.Error(), err
		return res
	}
	if path != sample.StdinPath {
		if res.Checksum, err = sample.FileChecksum(path); err != nil {
			logger.Warn("checksum failed", "file", path, "error", err)
		}
	}

	f := anomaly.NewFilter(sample.WithContext(ctx, src), settings.Options)
	for f.Next() {
		if res.FirstDay == "" {
			res.FirstDay = f.Anomaly().Group.Key
		}
	}
	runErr := errors.Join(f.Err(), f.Close())
	res.Stats = f.Stats()

	switch {
	case errors.Is(runErr, context.Canceled):
		res.Status, res.Error = output.StatusSkipped, "cancelled"
	case runErr != nil:
		res.Status, res.Error, res.err = output.StatusFailed, runErr.Error(), runErr
	default:
		res.Status = output.StatusOK
	}

	logger.Debug("file scanned",
		"file", path,
		"status", res.Status,
		"anomalies", res.Stats.Anomalies,
		"samples_read", res.Stats.SamplesRead,
	)
	return res
}

func renderScanTable(cmd *cobra.Command, printer *output.Printer, results []scanResult) {
	table := output.NewTableWithWriter(cmd.OutOrStdout(), []string{"FILE", "STATUS", "SAMPLES", "DAYS", "ANOMALIES", "FIRST", "DURATION"})
	for _, r := range results {
		first := r.FirstDay
		if first == "" {
			first = "-"
		}
		table.AddRow([]string{
			r.File,
			printer.StatusBadge(r.Status),
			strconv.Itoa(r.Stats.SamplesRead),
			strconv.Itoa(r.Stats.GroupsFormed),
			strconv.Itoa(r.Stats.Anomalies),
			first,
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	table.Render()

	for _, r := range results {
		if r.Status == output.StatusFailed {
			printer.Warning("%s: %s", r.File, r.Error)
		}
	}
}
