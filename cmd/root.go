// Package cmd contains all CLI commands for normscan
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/alt-project/normscan/internal/config"
	"github.com/alt-project/normscan/internal/output"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	colorFlag string
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	version   = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "normscan",
	Short: "Find days whose samples are not normally distributed",
	Long: `normscan reads a log of "<unix seconds>,<integer value>" samples, groups
the samples by day and runs the D'Agostino-Pearson normality test on every
day. Days whose p-value falls below the threshold are reported as anomalies.

Example usage:
  normscan detect data.csv             # First 5 anomalous days of a file
  normscan detect --synthetic -k 3     # First 3 anomalies of generated data
  normscan groups data.csv             # Every day with its test result
  normscan scan logs/*.csv             # One summary row per file
  normscan generate --days 14 -f x.csv # Write a synthetic log`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer closeLog()
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

// HandleError reports err on stderr and returns the process exit code
func HandleError(err error) int {
	if err == nil {
		return output.ExitSuccess
	}

	var cliErr *output.CLIError
	if !errors.As(err, &cliErr) {
		cliErr = &output.CLIError{Summary: err.Error(), ExitCode: output.ExitGeneral}
		if strings.HasPrefix(err.Error(), "unknown command") || strings.HasPrefix(err.Error(), "unknown flag") {
			cliErr.ExitCode = output.ExitUsageError
			cliErr.Suggestion = "Run 'normscan --help' for usage"
		}
	}

	colors := false
	if cfg != nil {
		colors = cfg.Output.Colors
	}
	mode, _ := output.ParseColorMode(colorFlag)
	printer := output.NewPrinterWithOptions(output.PrinterOptions{ColorMode: mode, ConfigColors: colors})
	printer.FormatError(cliErr)
	return cliErr.ExitCode
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .normscan.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "colorize output (auto, always, never)")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &output.CLIError{
			Summary:    err.Error(),
			Suggestion: fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()),
			ExitCode:   output.ExitUsageError,
		}
	})
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: levelFor("info"),
	}))

	if _, err := output.ParseColorMode(colorFlag); err != nil {
		return &output.CLIError{
			Summary:  err.Error(),
			ExitCode: output.ExitUsageError,
		}
	}

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:    "failed loading configuration",
			Detail:     err.Error(),
			Suggestion: "Check .normscan.yaml syntax or use --config flag",
			ExitCode:   output.ExitConfigError,
		}
	}

	logger = newLogger(cfg.Logging)

	logger.Debug("configuration loaded",
		"config_file", cfg.File,
		"threshold", cfg.Detect.Threshold,
		"grouping_key", cfg.Grouping.Key,
		"timezone", cfg.Grouping.Timezone,
	)

	return nil
}

// newLogger builds the slog logger described by the logging section.
// --verbose forces debug level.
func newLogger(lc config.LoggingConfig) *slog.Logger {
	closeLog()

	var w io.Writer = os.Stderr
	if lc.File != "" {
		lj := &lumberjack.Logger{
			Filename:   lc.File,
			MaxSize:    lc.MaxSize,
			MaxBackups: lc.MaxBackups,
			MaxAge:     lc.MaxAge,
			Compress:   lc.Compress,
		}
		w = lj
		logCloser = lj
	}

	level := levelFor(lc.Level)
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func levelFor(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// newPrinter creates a printer for cmd honoring --color, --quiet and the
// output.colors setting
func newPrinter(cmd *cobra.Command) *output.Printer {
	mode, _ := output.ParseColorMode(colorFlag)
	colors := false
	if cfg != nil {
		colors = cfg.Output.Colors
	}
	return output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: colors,
		Quiet:        quiet,
		Out:          cmd.OutOrStdout(),
		Err:          cmd.ErrOrStderr(),
	})
}
