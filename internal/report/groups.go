package report

import (
	"github.com/alt-project/normscan/internal/anomaly"
	"github.com/alt-project/normscan/internal/output"
)

// GroupEntry is one day in a full group listing
type GroupEntry struct {
	Entry  `yaml:",inline"`
	Status string `json:"status" yaml:"status"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// NewGroupEntry converts a classified group. Skipped groups carry the
// reason they were not tested.
func NewGroupEntry(c anomaly.Classified) GroupEntry {
	e := GroupEntry{Entry: NewEntry(anomaly.Anomaly{Group: c.Group, Result: c.Result})}
	switch {
	case c.Skipped != nil:
		e.Status = output.StatusSkipped
		e.Reason = c.Skipped.Error()
	case c.Result.IsNormal:
		e.Status = output.StatusNormal
	default:
		e.Status = output.StatusAnomalous
	}
	return e
}
