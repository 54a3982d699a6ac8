// Package anomaly composes the sample source, day grouper and normality
// classifier into lazy iterators over classified and anomalous groups
package anomaly

import (
	"fmt"
	"log/slog"

	"github.com/alt-project/normscan/internal/group"
	"github.com/alt-project/normscan/internal/normality"
)

// InsufficientPolicy decides what happens to groups too small to test
type InsufficientPolicy string

const (
	// InsufficientFail stops the pipeline with the classifier error
	InsufficientFail InsufficientPolicy = "fail"
	// InsufficientSkip drops the group and keeps going
	InsufficientSkip InsufficientPolicy = "skip"
)

// ParseInsufficientPolicy parses a policy name
func ParseInsufficientPolicy(s string) (InsufficientPolicy, error) {
	switch InsufficientPolicy(s) {
	case InsufficientFail, InsufficientSkip:
		return InsufficientPolicy(s), nil
	default:
		return "", fmt.Errorf("invalid insufficient-data policy %q: must be fail or skip", s)
	}
}

// Options configures a pipeline
type Options struct {
	Threshold      float64
	MinSamples     int
	Key            group.KeyFunc
	OnInsufficient InsufficientPolicy
	Observer       Observer
	Logger         *slog.Logger
}

// DefaultOptions returns the reference pipeline settings
func DefaultOptions() Options {
	return Options{
		Threshold:      normality.DefaultThreshold,
		MinSamples:     normality.MinSamples,
		Key:            group.CalendarDate,
		OnInsufficient: InsufficientFail,
	}
}

// Observer is notified as samples and groups move through a pipeline.
// Calls happen on the goroutine driving the iterator.
type Observer interface {
	SampleRead()
	GroupFormed(g group.Group)
	GroupClassified(g group.Group, r normality.Result)
	GroupSkipped(g group.Group, err error)
}

type nopObserver struct{}

func (nopObserver) SampleRead()                                  {}
func (nopObserver) GroupFormed(group.Group)                      {}
func (nopObserver) GroupClassified(group.Group, normality.Result) {}
func (nopObserver) GroupSkipped(group.Group, error)              {}

// Stats counts the work a pipeline has done so far
type Stats struct {
	SamplesRead      int `json:"samples_read" yaml:"samples_read"`
	GroupsFormed     int `json:"groups_formed" yaml:"groups_formed"`
	GroupsClassified int `json:"groups_classified" yaml:"groups_classified"`
	GroupsSkipped    int `json:"groups_skipped" yaml:"groups_skipped"`
	Anomalies        int `json:"anomalies" yaml:"anomalies"`
}
