package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/alt-project/normscan/internal/anomaly"
	"github.com/alt-project/normscan/internal/metrics"
	"github.com/alt-project/normscan/internal/report"
	"github.com/alt-project/normscan/internal/sample"
)

const syntheticSourceName = "synthetic"

var detectCmd = &cobra.Command{
	Use:   "detect [file|-]",
	Short: "Report the first anomalous days of a sample log",
	Long: `Read samples from a file, standard input ("-") or the built-in generator,
group them by day and print the days that fail the normality test.

Parsing stops as soon as --limit anomalies have been found, so lines past
the last reported day are never decoded. Structured formats also record
the sha256 checksum of the whole input file, which hashes it once up front.

Examples:
  normscan detect data.csv                 # First 5 anomalies
  normscan detect data.csv -k 0            # Every anomaly in the file
  cat data.csv | normscan detect -         # Read standard input
  normscan detect --synthetic -k 3         # Generated data, weekly anomalies
  normscan detect data.csv -o json         # Structured report`,
	Args: usageArgs(cobra.MaximumNArgs(1)),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Bool("synthetic", false, "use the built-in generator instead of a file")
	detectCmd.Flags().IntP("limit", "k", 5, "stop after this many anomalies (0 reads the whole input)")
	detectCmd.Flags().StringP("format", "o", "text", "output format (text, table, json, yaml)")
	detectCmd.Flags().Uint64("seed", 1, "seed of the built-in generator")
	detectCmd.Flags().String("metrics-file", "", "write prometheus textfile metrics to this path")
	addPipelineFlags(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	settings, err := resolvePipeline(cmd)
	if err != nil {
		return err
	}
	format, err := resolveFormat(cmd)
	if err != nil {
		return err
	}

	limit := cfg.Detect.Limit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}
	if limit < 0 {
		return usageError("invalid limit: must not be negative", "")
	}

	synthetic, _ := cmd.Flags().GetBool("synthetic")
	switch {
	case synthetic && len(args) > 0:
		return usageError("--synthetic does not take an input file", "")
	case synthetic && limit == 0:
		return usageError("the synthetic source never ends", "Pass --limit greater than 0 with --synthetic")
	case !synthetic && len(args) == 0:
		return usageError("no input given", "Pass a file, '-' for standard input, or --synthetic")
	}

	var (
		src    sample.Source
		name   string
		digest string
	)
	if synthetic {
		src = newSyntheticSource(cmd, settings.Location)
		name = syntheticSourceName
	} else {
		name = args[0]
		src, err = openInput(name, settings.Location)
		if err != nil {
			return err
		}
		if format != report.FormatText && name != sample.StdinPath {
			if digest, err = sample.FileChecksum(name); err != nil {
				logger.Warn("checksum failed", "file", name, "error", err)
			}
		}
	}

	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	var collector *metrics.Collector
	if metricsFile != "" {
		collector = metrics.NewCollector(name)
		settings.Options.Observer = collector
	}

	logger.Debug("starting detection",
		"source", name,
		"limit", limit,
		"threshold", settings.Options.Threshold,
		"key", settings.KeyName,
	)

	started := time.Now()
	driver := &report.Driver{Limit: limit, Format: format, Out: cmd.OutOrStdout()}
	rep, runErr := driver.Run(anomaly.NewFilter(src, settings.Options), settings.meta(name, digest))

	logger.Info("detection finished",
		"source", name,
		"anomalies", len(rep.Anomalies),
		"samples_read", rep.Stats.SamplesRead,
		"groups_classified", rep.Stats.GroupsClassified,
		"groups_skipped", rep.Stats.GroupsSkipped,
		"duration", time.Since(started),
	)

	if collector != nil {
		if err := collector.WriteTextfile(metricsFile); err != nil {
			newPrinter(cmd).Warning("%v", err)
		}
	}

	if runErr != nil {
		return pipelineError(runErr)
	}
	if format == report.FormatTable {
		newPrinter(cmd).PrintHints("detect")
	}
	return nil
}

// newSyntheticSource builds the generator from the synthetic config section
// and the --seed flag
func newSyntheticSource(cmd *cobra.Command, loc *time.Location) *sample.SyntheticSource {
	opts := sample.DefaultSyntheticOptions()
	opts.Location = loc
	opts.Seed = cfg.Synthetic.Seed
	opts.Baseline = cfg.Synthetic.Baseline
	opts.AnomalyPeriod = cfg.Synthetic.AnomalyPeriod
	if cmd.Flags().Changed("seed") {
		opts.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	return sample.NewSyntheticSource(opts)
}

