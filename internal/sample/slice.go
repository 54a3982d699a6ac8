package sample

// SliceSource replays samples held in memory. An optional error is
// reported once the samples run out, which lets callers simulate a
// source that fails mid-stream.
type SliceSource struct {
	samples []Sample
	fail    error
	pos     int
	current Sample
	err     error
	closes  int
	done    bool
}

// NewSliceSource creates a source over samples
func NewSliceSource(samples []Sample) *SliceSource {
	return &SliceSource{samples: samples}
}

// FailAfter makes the source report err after the last sample
func (s *SliceSource) FailAfter(err error) *SliceSource {
	s.fail = err
	return s
}

// Next advances to the next sample
func (s *SliceSource) Next() bool {
	if s.done {
		return false
	}
	if s.pos >= len(s.samples) {
		s.done = true
		s.err = s.fail
		return false
	}
	s.current = s.samples[s.pos]
	s.pos++
	return true
}

// Sample returns the current sample
func (s *SliceSource) Sample() Sample {
	return s.current
}

// Err returns the configured failure once the samples are exhausted
func (s *SliceSource) Err() error {
	return s.err
}

// Close marks the source as closed
func (s *SliceSource) Close() error {
	s.done = true
	s.closes++
	return nil
}

// Consumed returns how many samples have been handed out
func (s *SliceSource) Consumed() int {
	return s.pos
}

// Closes returns how many times Close was called
func (s *SliceSource) Closes() int {
	return s.closes
}
