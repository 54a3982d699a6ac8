package anomaly

import (
	"github.com/alt-project/normscan/internal/group"
	"github.com/alt-project/normscan/internal/normality"
	"github.com/alt-project/normscan/internal/sample"
)

// Anomaly is a group the classifier rejected, together with the result
// that rejected it
type Anomaly struct {
	Group  group.Group
	Result normality.Result
}

// Filter yields the groups of a sample stream that are not normally
// distributed, in stream order. Work is done on demand: a group is only
// formed and classified when Next is called, so stopping after K
// anomalies leaves the rest of the stream untouched apart from the one
// sample the grouper reads ahead.
type Filter struct {
	p       *pipeline
	current Anomaly
}

// NewFilter builds the pipeline over src. The filter owns src and closes
// it when iteration ends or Close is called.
func NewFilter(src sample.Source, opts Options) *Filter {
	return &Filter{p: newPipeline(src, opts)}
}

// Next advances to the next anomalous group
func (f *Filter) Next() bool {
	for {
		g, res, skipped, ok := f.p.next()
		if !ok {
			return false
		}
		if skipped != nil || res.IsNormal {
			continue
		}
		f.p.stats.Anomalies++
		f.current = Anomaly{Group: g, Result: res}
		return true
	}
}

// Anomaly returns the group found by the last successful Next
func (f *Filter) Anomaly() Anomaly {
	return f.current
}

// Err returns the error that stopped the pipeline, if any
func (f *Filter) Err() error {
	return f.p.err
}

// Stats returns the work done so far
func (f *Filter) Stats() Stats {
	return f.p.stats
}

// Close stops the pipeline and releases the source
func (f *Filter) Close() error {
	return f.p.close()
}
