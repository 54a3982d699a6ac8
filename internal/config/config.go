// Package config provides Viper-based configuration management for normscan
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete normscan configuration
type Config struct {
	Detect    DetectConfig    `mapstructure:"detect" json:"detect" yaml:"detect"`
	Grouping  GroupingConfig  `mapstructure:"grouping" json:"grouping" yaml:"grouping"`
	Synthetic SyntheticConfig `mapstructure:"synthetic" json:"synthetic" yaml:"synthetic"`
	Scan      ScanConfig      `mapstructure:"scan" json:"scan" yaml:"scan"`
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging" yaml:"logging"`
	Output    OutputConfig    `mapstructure:"output" json:"output" yaml:"output"`

	// File is the config file that was read, empty when running on defaults
	File string `mapstructure:"-" json:"-" yaml:"-"`
}

// DetectConfig contains classification settings
type DetectConfig struct {
	Threshold      float64 `mapstructure:"threshold" json:"threshold" yaml:"threshold"`
	Limit          int     `mapstructure:"limit" json:"limit" yaml:"limit"`
	MinSamples     int     `mapstructure:"min_samples" json:"min_samples" yaml:"min_samples"`
	OnInsufficient string  `mapstructure:"on_insufficient" json:"on_insufficient" yaml:"on_insufficient"`
}

// GroupingConfig controls how samples are bucketed into days
type GroupingConfig struct {
	Key      string `mapstructure:"key" json:"key" yaml:"key"`
	Timezone string `mapstructure:"timezone" json:"timezone" yaml:"timezone"`
}

// SyntheticConfig configures the built-in generator
type SyntheticConfig struct {
	Seed          uint64  `mapstructure:"seed" json:"seed" yaml:"seed"`
	Baseline      float64 `mapstructure:"baseline" json:"baseline" yaml:"baseline"`
	AnomalyPeriod int     `mapstructure:"anomaly_period" json:"anomaly_period" yaml:"anomaly_period"`
}

// ScanConfig contains multi-file scan settings
type ScanConfig struct {
	Parallel int `mapstructure:"parallel" json:"parallel" yaml:"parallel"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
	// File enables rotated file logging instead of stderr
	File       string `mapstructure:"file" json:"file" yaml:"file"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size" yaml:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups" yaml:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" json:"max_age" yaml:"max_age"`
	Compress   bool   `mapstructure:"compress" json:"compress" yaml:"compress"`
}

// OutputConfig contains output formatting settings
type OutputConfig struct {
	Colors bool   `mapstructure:"colors" json:"colors" yaml:"colors"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// Load reads configuration from file and environment variables
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".normscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/normscan")
	}

	// NORMSCAN_DETECT_THRESHOLD overrides detect.threshold
	v.SetEnvPrefix("NORMSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or environment
// overrides are present
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults configures default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("detect.threshold", 1e-3)
	v.SetDefault("detect.limit", 5)
	v.SetDefault("detect.min_samples", 8)
	v.SetDefault("detect.on_insufficient", "fail")

	v.SetDefault("grouping.key", "date")
	v.SetDefault("grouping.timezone", "UTC")

	v.SetDefault("synthetic.seed", 1)
	v.SetDefault("synthetic.baseline", 100)
	v.SetDefault("synthetic.anomaly_period", 7*86400)

	v.SetDefault("scan.parallel", 4)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)

	v.SetDefault("output.colors", true)
	v.SetDefault("output.format", "text")
}

// validate checks the configuration for errors
func validate(cfg *Config) error {
	if cfg.Detect.Threshold <= 0 || cfg.Detect.Threshold >= 1 {
		return fmt.Errorf("invalid detect threshold: %g (must be between 0 and 1)", cfg.Detect.Threshold)
	}
	if cfg.Detect.MinSamples < 8 {
		return fmt.Errorf("invalid detect min_samples: %d (must be at least 8)", cfg.Detect.MinSamples)
	}
	if cfg.Detect.Limit < 0 {
		return fmt.Errorf("invalid detect limit: %d (must not be negative)", cfg.Detect.Limit)
	}

	validPolicies := map[string]bool{"fail": true, "skip": true}
	if !validPolicies[cfg.Detect.OnInsufficient] {
		return fmt.Errorf("invalid detect on_insufficient: %s (must be fail or skip)", cfg.Detect.OnInsufficient)
	}

	validKeys := map[string]bool{"date": true, "day-of-month": true}
	if !validKeys[cfg.Grouping.Key] {
		return fmt.Errorf("invalid grouping key: %s (must be date or day-of-month)", cfg.Grouping.Key)
	}
	if _, err := time.LoadLocation(cfg.Grouping.Timezone); err != nil {
		return fmt.Errorf("invalid grouping timezone: %s", cfg.Grouping.Timezone)
	}

	if cfg.Synthetic.AnomalyPeriod < 1 {
		return fmt.Errorf("invalid synthetic anomaly_period: %d (must be positive)", cfg.Synthetic.AnomalyPeriod)
	}
	if cfg.Scan.Parallel < 1 {
		return fmt.Errorf("invalid scan parallel: %d (must be positive)", cfg.Scan.Parallel)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	validOutputs := map[string]bool{"text": true, "table": true, "json": true, "yaml": true}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s (must be text, table, json, or yaml)", cfg.Output.Format)
	}

	return nil
}

// Location returns the grouping time zone. An invalid zone, which
// validate rejects, falls back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Grouping.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
