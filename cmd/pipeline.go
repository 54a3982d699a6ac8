package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alt-project/normscan/internal/anomaly"
	"github.com/alt-project/normscan/internal/group"
	"github.com/alt-project/normscan/internal/normality"
	"github.com/alt-project/normscan/internal/output"
	"github.com/alt-project/normscan/internal/report"
	"github.com/alt-project/normscan/internal/sample"
)

// addPipelineFlags registers the classification flags shared by detect,
// groups and scan. Unset flags fall back to the configuration.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("threshold", normality.DefaultThreshold, "p-value below which a day is anomalous")
	cmd.Flags().String("key", group.KeyDate, "grouping key (date or day-of-month)")
	cmd.Flags().String("timezone", "UTC", "time zone used to split days")
	cmd.Flags().Int("min-samples", normality.MinSamples, "smallest day that is tested (at least 8)")
	cmd.Flags().String("on-insufficient", string(anomaly.InsufficientFail), "what to do with days below --min-samples (fail or skip)")
}

// pipelineSettings is the resolved pipeline configuration of one command run
type pipelineSettings struct {
	Options  anomaly.Options
	KeyName  string
	Location *time.Location
}

func (s pipelineSettings) meta(source, checksum string) report.Meta {
	return report.Meta{
		Source:    source,
		Checksum:  checksum,
		Threshold: s.Options.Threshold,
		Key:       s.KeyName,
	}
}

// resolvePipeline merges cfg with the flags the user set explicitly
func resolvePipeline(cmd *cobra.Command) (pipelineSettings, error) {
	flags := cmd.Flags()

	threshold := cfg.Detect.Threshold
	if flags.Changed("threshold") {
		threshold, _ = flags.GetFloat64("threshold")
	}
	if threshold <= 0 || threshold >= 1 {
		return pipelineSettings{}, usageError(fmt.Sprintf("invalid threshold: %g", threshold), "The threshold must be between 0 and 1")
	}

	minSamples := cfg.Detect.MinSamples
	if flags.Changed("min-samples") {
		minSamples, _ = flags.GetInt("min-samples")
	}
	if minSamples < normality.MinSamples {
		return pipelineSettings{}, usageError(fmt.Sprintf("invalid min-samples: %d", minSamples),
			fmt.Sprintf("The normality test needs at least %d samples per day", normality.MinSamples))
	}

	keyName := cfg.Grouping.Key
	if flags.Changed("key") {
		keyName, _ = flags.GetString("key")
	}
	key, err := group.ParseKey(keyName)
	if err != nil {
		return pipelineSettings{}, usageError(err.Error(), "")
	}

	tz := cfg.Grouping.Timezone
	if flags.Changed("timezone") {
		tz, _ = flags.GetString("timezone")
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return pipelineSettings{}, usageError(fmt.Sprintf("unknown time zone: %s", tz), "Use an IANA name such as UTC or Europe/Berlin")
	}

	policyName := cfg.Detect.OnInsufficient
	if flags.Changed("on-insufficient") {
		policyName, _ = flags.GetString("on-insufficient")
	}
	policy, err := anomaly.ParseInsufficientPolicy(policyName)
	if err != nil {
		return pipelineSettings{}, usageError(err.Error(), "")
	}

	return pipelineSettings{
		Options: anomaly.Options{
			Threshold:      threshold,
			MinSamples:     minSamples,
			Key:            key,
			OnInsufficient: policy,
			Logger:         logger,
		},
		KeyName:  keyName,
		Location: loc,
	}, nil
}

// resolveFormat returns the -o/--format flag or the configured default
func resolveFormat(cmd *cobra.Command) (report.Format, error) {
	name := cfg.Output.Format
	if cmd.Flags().Changed("format") {
		name, _ = cmd.Flags().GetString("format")
	}
	f, err := report.ParseFormat(name)
	if err != nil {
		return "", usageError(err.Error(), "")
	}
	return f, nil
}

// resolveListFormat is resolveFormat for the tabular commands, where the
// line-oriented text format means a table
func resolveListFormat(cmd *cobra.Command) (report.Format, error) {
	f, err := resolveFormat(cmd)
	if err != nil {
		return "", err
	}
	if f == report.FormatText {
		return report.FormatTable, nil
	}
	return f, nil
}

// usageArgs makes positional argument failures exit with the usage code
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err.Error(), fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()))
		}
		return nil
	}
}

func usageError(summary, suggestion string) *output.CLIError {
	return &output.CLIError{
		Summary:    summary,
		Suggestion: suggestion,
		ExitCode:   output.ExitUsageError,
	}
}

// pipelineError maps a pipeline failure to a CLIError with the matching
// exit code
func pipelineError(err error) *output.CLIError {
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	var parseErr *sample.ParseError
	var resErr *sample.ResourceError
	switch {
	case errors.As(err, &parseErr):
		return &output.CLIError{
			Summary:    "malformed input",
			Detail:     err.Error(),
			Suggestion: "Each line must be <unix seconds>,<integer value>",
			ExitCode:   output.ExitDataError,
		}
	case errors.Is(err, normality.ErrInsufficientData):
		return &output.CLIError{
			Summary:    "day too small for the normality test",
			Detail:     err.Error(),
			Suggestion: "Use --on-insufficient skip to ignore short days",
			ExitCode:   output.ExitDataError,
		}
	case errors.As(err, &resErr):
		return &output.CLIError{
			Summary:    fmt.Sprintf("cannot read %s", resErr.Path),
			Detail:     err.Error(),
			Suggestion: "Check that the file exists and is readable",
			ExitCode:   output.ExitResourceError,
		}
	default:
		return &output.CLIError{
			Summary:  "detection failed",
			Detail:   err.Error(),
			ExitCode: output.ExitGeneral,
		}
	}
}

// openInput opens a file or stdin ("-") as a sample source
func openInput(path string, loc *time.Location) (sample.Source, error) {
	src, err := sample.Open(path, loc)
	if err != nil {
		return nil, pipelineError(err)
	}
	return src, nil
}
