// Package group partitions an ordered sample stream into per-day groups
package group

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alt-project/normscan/internal/sample"
)

// KeyFunc maps a timestamp to the key of the group it belongs to
type KeyFunc func(time.Time) string

// Key names accepted by ParseKey
const (
	KeyDayOfMonth = "day-of-month"
	KeyDate       = "date"
)

// DayOfMonth keys samples by day of month only, so the 1st of January and
// the 1st of February share a key. Runs are still split at every change
// of key, which keeps consecutive months apart in a time-ordered stream.
func DayOfMonth(t time.Time) string {
	return strconv.Itoa(t.Day())
}

// CalendarDate keys samples by full calendar date
func CalendarDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseKey returns the KeyFunc registered under name
func ParseKey(name string) (KeyFunc, error) {
	switch name {
	case KeyDayOfMonth:
		return DayOfMonth, nil
	case KeyDate:
		return CalendarDate, nil
	default:
		return nil, fmt.Errorf("invalid grouping key %q: must be %s or %s", name, KeyDate, KeyDayOfMonth)
	}
}

// Group is a maximal run of consecutive samples sharing a key. A Group
// handed out by a Grouper is never empty.
type Group struct {
	Key     string
	Samples []sample.Sample
}

// Len returns the number of samples in the group
func (g Group) Len() int {
	return len(g.Samples)
}

// Start returns the timestamp of the first sample
func (g Group) Start() time.Time {
	if len(g.Samples) == 0 {
		return time.Time{}
	}
	return g.Samples[0].Timestamp
}

// End returns the timestamp of the last sample
func (g Group) End() time.Time {
	if len(g.Samples) == 0 {
		return time.Time{}
	}
	return g.Samples[len(g.Samples)-1].Timestamp
}

// Values returns a copy of the sample values in order
func (g Group) Values() []float64 {
	values := make([]float64, len(g.Samples))
	for i, s := range g.Samples {
		values[i] = s.Value
	}
	return values
}
