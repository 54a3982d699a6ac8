package group

import (
	"slices"

	"github.com/alt-project/normscan/internal/sample"
)

// Grouper lazily turns a sample source into a sequence of groups. Only
// the group currently being accumulated is buffered; the stream is never
// sorted, so groups are only contiguous if the source is time ordered.
type Grouper struct {
	src        sample.Source
	key        KeyFunc
	pending    []sample.Sample
	pendingKey string
	current    Group
	err        error
	done       bool
}

// NewGrouper creates a grouper over src. A nil key groups by calendar date.
func NewGrouper(src sample.Source, key KeyFunc) *Grouper {
	if key == nil {
		key = CalendarDate
	}
	return &Grouper{src: src, key: key}
}

// Next reads samples until a group is complete. It returns false when
// the source is exhausted or has failed; a failure discards the
// partially accumulated group.
func (g *Grouper) Next() bool {
	if g.done {
		return false
	}

	for g.src.Next() {
		s := g.src.Sample()
		k := g.key(s.Timestamp)

		if len(g.pending) > 0 && k != g.pendingKey {
			g.current = Group{Key: g.pendingKey, Samples: slices.Clip(g.pending)}
			g.pending = make([]sample.Sample, 1, len(g.pending))
			g.pending[0] = s
			g.pendingKey = k
			return true
		}

		g.pendingKey = k
		g.pending = append(g.pending, s)
	}

	g.done = true
	if err := g.src.Err(); err != nil {
		g.err = err
		g.pending = nil
		return false
	}

	if len(g.pending) == 0 {
		return false
	}
	g.current = Group{Key: g.pendingKey, Samples: slices.Clip(g.pending)}
	g.pending = nil
	return true
}

// Group returns the group produced by the last successful Next
func (g *Grouper) Group() Group {
	return g.current
}

// Err returns the source error that stopped grouping, if any
func (g *Grouper) Err() error {
	return g.err
}

// Pending returns the number of samples accumulated for the next group
func (g *Grouper) Pending() int {
	return len(g.pending)
}

// Close stops grouping and closes the source
func (g *Grouper) Close() error {
	g.done = true
	g.pending = nil
	return g.src.Close()
}
