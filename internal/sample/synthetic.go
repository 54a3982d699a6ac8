package sample

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// SecondsPerDay is the number of synthetic samples in one day
	SecondsPerDay = 24 * 60 * 60
	// DefaultAnomalyPeriod makes roughly one sample per week anomalous
	DefaultAnomalyPeriod = 7 * SecondsPerDay
	// DefaultBaseline is the value emitted for every ordinary sample
	DefaultBaseline = 100
)

// SyntheticOptions configures a SyntheticSource
type SyntheticOptions struct {
	Start         time.Time
	Location      *time.Location
	Baseline      float64
	AnomalyPeriod int
	Seed          uint64
}

// DefaultSyntheticOptions returns the weekly-anomaly generator settings
func DefaultSyntheticOptions() SyntheticOptions {
	return SyntheticOptions{
		Start:         time.Unix(0, 0),
		Location:      time.UTC,
		Baseline:      DefaultBaseline,
		AnomalyPeriod: DefaultAnomalyPeriod,
		Seed:          1,
	}
}

// SyntheticSource emits one sample per simulated second, forever. Each
// sample is the baseline value, except that with probability
// 1/AnomalyPeriod it is drawn from a standard normal distribution instead.
type SyntheticSource struct {
	opts    SyntheticOptions
	rng     *rand.Rand
	normal  distuv.Normal
	offset  int64
	current Sample
	closed  bool
}

// NewSyntheticSource creates a generator. A nil Location, zero Start or
// non-positive AnomalyPeriod fall back to DefaultSyntheticOptions; Baseline
// and Seed are used as given, zero included.
func NewSyntheticSource(opts SyntheticOptions) *SyntheticSource {
	defaults := DefaultSyntheticOptions()
	if opts.Location == nil {
		opts.Location = defaults.Location
	}
	if opts.Start.IsZero() {
		opts.Start = defaults.Start
	}
	if opts.AnomalyPeriod <= 0 {
		opts.AnomalyPeriod = defaults.AnomalyPeriod
	}

	src := rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)
	return &SyntheticSource{
		opts:   opts,
		rng:    rand.New(src),
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

// Next generates the next sample. It only returns false after Close.
func (s *SyntheticSource) Next() bool {
	if s.closed {
		return false
	}

	value := s.opts.Baseline
	if s.rng.IntN(s.opts.AnomalyPeriod) == 0 {
		value = s.normal.Rand()
	}

	s.current = Sample{
		Timestamp: s.opts.Start.Add(time.Duration(s.offset) * time.Second).In(s.opts.Location),
		Value:     value,
	}
	s.offset++
	return true
}

// Sample returns the last generated sample
func (s *SyntheticSource) Sample() Sample {
	return s.current
}

// Err always returns nil
func (s *SyntheticSource) Err() error {
	return nil
}

// Close stops generation
func (s *SyntheticSource) Close() error {
	s.closed = true
	return nil
}

// Generated returns how many samples have been produced
func (s *SyntheticSource) Generated() int64 {
	return s.offset
}
