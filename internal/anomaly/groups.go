package anomaly

import (
	"github.com/alt-project/normscan/internal/group"
	"github.com/alt-project/normscan/internal/normality"
	"github.com/alt-project/normscan/internal/sample"
)

// Classified is a group with its test result. Skipped holds the reason a
// group was not tested under InsufficientSkip; Result is then zero.
type Classified struct {
	Group   group.Group
	Result  normality.Result
	Skipped error
}

// Groups yields every group of a sample stream with its classification
type Groups struct {
	p       *pipeline
	current Classified
}

// NewGroups builds the pipeline over src and takes ownership of it
func NewGroups(src sample.Source, opts Options) *Groups {
	return &Groups{p: newPipeline(src, opts)}
}

// Next forms and classifies the next group
func (it *Groups) Next() bool {
	g, res, skipped, ok := it.p.next()
	if !ok {
		return false
	}
	if skipped == nil && !res.IsNormal {
		it.p.stats.Anomalies++
	}
	it.current = Classified{Group: g, Result: res, Skipped: skipped}
	return true
}

// Classified returns the group produced by the last successful Next
func (it *Groups) Classified() Classified {
	return it.current
}

// Err returns the error that stopped the pipeline, if any
func (it *Groups) Err() error {
	return it.p.err
}

// Stats returns the work done so far
func (it *Groups) Stats() Stats {
	return it.p.stats
}

// Close stops the pipeline and releases the source
func (it *Groups) Close() error {
	return it.p.close()
}
