package sample

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// StdinPath is the path that selects standard input
	StdinPath = "-"
	// MaxLineSize bounds a single record; longer lines are parse errors
	MaxLineSize = 64 * 1024
)

// ReaderSource decodes "<unix seconds>,<integer value>" lines from a reader.
// The reader is closed exactly once: when the lines run out, when a line
// fails to decode, or when Close is called, whichever comes first.
type ReaderSource struct {
	name    string
	rc      io.ReadCloser
	scanner *bufio.Scanner
	loc     *time.Location
	line    int
	current Sample
	err     error
	done    bool
	closed  bool
}

// Open opens the file at path as a sample source. A path of "-" reads
// standard input, which is left open when the source is closed.
func Open(path string, loc *time.Location) (*ReaderSource, error) {
	if path == StdinPath {
		return NewReaderSource(io.NopCloser(os.Stdin), "stdin", loc), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ResourceError{Op: "open", Path: path, Err: err}
	}
	return NewReaderSource(f, path, loc), nil
}

// NewReaderSource wraps an open reader. name is used in error messages.
// A nil location means UTC.
func NewReaderSource(rc io.ReadCloser, name string, loc *time.Location) *ReaderSource {
	if loc == nil {
		loc = time.UTC
	}
	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 4096), MaxLineSize)
	return &ReaderSource{
		name:    name,
		rc:      rc,
		scanner: scanner,
		loc:     loc,
	}
}

// Next decodes the next line
func (s *ReaderSource) Next() bool {
	if s.done {
		return false
	}

	if !s.scanner.Scan() {
		switch err := s.scanner.Err(); {
		case errors.Is(err, bufio.ErrTooLong):
			s.finish(&ParseError{Source: s.name, Line: s.line + 1, Err: fmt.Errorf("line exceeds %d bytes: %w", MaxLineSize, err)})
		case err != nil:
			s.finish(&ResourceError{Op: "read", Path: s.name, Err: err})
		default:
			s.finish(nil)
		}
		return false
	}

	s.line++
	text := s.scanner.Text()
	sample, err := ParseLine(text, s.loc)
	if err != nil {
		s.finish(&ParseError{Source: s.name, Line: s.line, Text: text, Err: err})
		return false
	}

	s.current = sample
	return true
}

// Sample returns the sample decoded by the last successful Next
func (s *ReaderSource) Sample() Sample {
	return s.current
}

// Err returns the error that stopped iteration, if any
func (s *ReaderSource) Err() error {
	return s.err
}

// Line returns the number of lines consumed so far
func (s *ReaderSource) Line() int {
	return s.line
}

// Close releases the underlying reader
func (s *ReaderSource) Close() error {
	s.done = true
	if s.closed {
		return nil
	}
	s.closed = true
	return s.rc.Close()
}

func (s *ReaderSource) finish(err error) {
	s.err = err
	if cerr := s.Close(); cerr != nil && s.err == nil {
		s.err = &ResourceError{Op: "close", Path: s.name, Err: cerr}
	}
}

// ParseLine decodes a single "<unix seconds>,<integer value>" record
func ParseLine(line string, loc *time.Location) (Sample, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 2 {
		return Sample{}, fmt.Errorf("%w: got %d field(s)", ErrMalformedLine, len(fields))
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("timestamp: %w", err)
	}
	value, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return Sample{}, fmt.Errorf("value: %w", err)
	}

	return Sample{
		Timestamp: time.Unix(ts, 0).In(loc),
		Value:     float64(value),
	}, nil
}
