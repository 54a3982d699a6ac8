package cmd

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/alt-project/normscan/internal/output"
	"github.com/alt-project/normscan/internal/sample"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic sample log",
	Long: `Write the output of the built-in generator in the input format, one
"<unix seconds>,<integer value>" line per simulated second. Values are
rounded to integers, so the file can be read back by detect and groups.

Examples:
  normscan generate --days 14 --output data.csv
  normscan generate --days 1 --anomaly-period 3600 | normscan groups -
  normscan generate --days 30 --start 2024-01-01 --seed 7 -f jan.csv`,
	Args: usageArgs(cobra.NoArgs),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Int("days", 7, "number of days to generate")
	generateCmd.Flags().StringP("output", "f", sample.StdinPath, "output file ('-' writes to standard output)")
	generateCmd.Flags().Uint64("seed", 1, "generator seed")
	generateCmd.Flags().Float64("baseline", sample.DefaultBaseline, "value of ordinary samples")
	generateCmd.Flags().Int("anomaly-period", sample.DefaultAnomalyPeriod, "one sample in this many is drawn from N(0,1)")
	generateCmd.Flags().String("start", "1970-01-01", "first day, as YYYY-MM-DD or RFC 3339")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	printer := newPrinter(cmd)

	days, _ := cmd.Flags().GetInt("days")
	if days < 1 {
		return usageError("invalid days: must be at least 1", "")
	}

	opts := sample.DefaultSyntheticOptions()
	opts.Seed = cfg.Synthetic.Seed
	opts.Baseline = cfg.Synthetic.Baseline
	opts.AnomalyPeriod = cfg.Synthetic.AnomalyPeriod
	if cmd.Flags().Changed("seed") {
		opts.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("baseline") {
		opts.Baseline, _ = cmd.Flags().GetFloat64("baseline")
	}
	if cmd.Flags().Changed("anomaly-period") {
		opts.AnomalyPeriod, _ = cmd.Flags().GetInt("anomaly-period")
	}
	if opts.AnomalyPeriod < 1 {
		return usageError("invalid anomaly-period: must be at least 1", "")
	}

	startFlag, _ := cmd.Flags().GetString("start")
	start, err := parseStart(startFlag)
	if err != nil {
		return usageError(err.Error(), "Use YYYY-MM-DD or an RFC 3339 timestamp")
	}
	opts.Start = start

	path, _ := cmd.Flags().GetString("output")
	var w io.Writer = cmd.OutOrStdout()
	var f *os.File
	if path != sample.StdinPath {
		f, err = os.Create(path)
		if err != nil {
			return &output.CLIError{
				Summary:  fmt.Sprintf("cannot create %s", path),
				Detail:   err.Error(),
				ExitCode: output.ExitResourceError,
			}
		}
		w = f
	}

	src := sample.NewSyntheticSource(opts)
	n := int64(days) * sample.SecondsPerDay
	written, anomalies, err := writeSamples(w, src, n, opts.Baseline)
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return &output.CLIError{
			Summary:  "failed writing samples",
			Detail:   err.Error(),
			ExitCode: output.ExitResourceError,
		}
	}

	logger.Debug("samples generated", "samples", written, "anomalous", anomalies, "seed", opts.Seed)
	if f != nil {
		printer.Success("Wrote %d samples (%d days, %d anomalous) to %s", written, days, anomalies, path)
		printer.PrintHints("generate")
	}
	return nil
}

// writeSamples writes n samples from src, rounding values to integers.
// It returns the number written and how many differ from baseline.
func writeSamples(w io.Writer, src sample.Source, n int64, baseline float64) (int64, int64, error) {
	defer src.Close()

	bw := bufio.NewWriter(w)
	var written, anomalies int64
	line := make([]byte, 0, 32)
	for written < n && src.Next() {
		s := src.Sample()
		if s.Value != baseline {
			anomalies++
		}
		line = strconv.AppendInt(line[:0], s.Timestamp.Unix(), 10)
		line = append(line, ',')
		line = strconv.AppendInt(line, int64(math.Round(s.Value)), 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return written, anomalies, err
		}
		written++
	}
	if err := src.Err(); err != nil {
		return written, anomalies, err
	}
	return written, anomalies, bw.Flush()
}

func parseStart(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start %q", s)
	}
	return t, nil
}
