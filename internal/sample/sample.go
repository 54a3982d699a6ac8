// Package sample provides the sources of timestamped samples fed into the
// anomaly pipeline
package sample

import "time"

// Sample is a single timestamped reading
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Source is a pull-based, single-pass sequence of samples.
//
// Next advances to the next sample and reports whether one is available.
// Once Next returns false the source is exhausted or failed; Err tells the
// two apart. Close releases the underlying resource and is safe to call
// more than once.
type Source interface {
	Next() bool
	Sample() Sample
	Err() error
	Close() error
}
