package anomaly

import (
	"errors"
	"log/slog"

	"github.com/alt-project/normscan/internal/group"
	"github.com/alt-project/normscan/internal/normality"
	"github.com/alt-project/normscan/internal/sample"
)

// countingSource reports every sample it hands out
type countingSource struct {
	sample.Source
	stats    *Stats
	observer Observer
}

func (c *countingSource) Next() bool {
	if !c.Source.Next() {
		return false
	}
	c.stats.SamplesRead++
	c.observer.SampleRead()
	return true
}

// pipeline is the shared grouping and classification stage behind Filter
// and Groups
type pipeline struct {
	groups     *group.Grouper
	classifier *normality.Classifier
	policy     InsufficientPolicy
	observer   Observer
	logger     *slog.Logger
	stats      Stats
	err        error
	closed     bool
}

func newPipeline(src sample.Source, opts Options) *pipeline {
	defaults := DefaultOptions()
	if opts.Key == nil {
		opts.Key = defaults.Key
	}
	if opts.OnInsufficient == "" {
		opts.OnInsufficient = defaults.OnInsufficient
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	p := &pipeline{
		classifier: normality.NewClassifier(opts.Threshold, opts.MinSamples),
		policy:     opts.OnInsufficient,
		observer:   opts.Observer,
		logger:     opts.Logger,
	}
	p.groups = group.NewGrouper(&countingSource{Source: src, stats: &p.stats, observer: opts.Observer}, opts.Key)
	return p
}

// next forms and classifies the next group. skipped is set when the group
// was too small and the policy allows dropping it.
func (p *pipeline) next() (g group.Group, res normality.Result, skipped error, ok bool) {
	if p.err != nil || p.closed {
		return group.Group{}, normality.Result{}, nil, false
	}

	if !p.groups.Next() {
		p.err = p.groups.Err()
		return group.Group{}, normality.Result{}, nil, false
	}

	g = p.groups.Group()
	p.stats.GroupsFormed++
	p.observer.GroupFormed(g)

	res, err := p.classifier.Classify(g.Values())
	if err != nil {
		if errors.Is(err, normality.ErrInsufficientData) && p.policy == InsufficientSkip {
			p.stats.GroupsSkipped++
			p.observer.GroupSkipped(g, err)
			p.logger.Debug("skipping group", "key", g.Key, "samples", g.Len(), "error", err)
			return g, res, err, true
		}
		p.err = &GroupError{Key: g.Key, Start: g.Start(), End: g.End(), Err: err}
		_ = p.close()
		return group.Group{}, normality.Result{}, nil, false
	}

	p.stats.GroupsClassified++
	p.observer.GroupClassified(g, res)
	p.logger.Debug("classified group",
		"key", g.Key,
		"samples", g.Len(),
		"k2", res.Statistic,
		"p_value", res.PValue,
		"normal", res.IsNormal,
	)
	return g, res, nil, true
}

func (p *pipeline) close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.groups.Close()
}
