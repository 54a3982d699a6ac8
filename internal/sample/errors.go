package sample

import (
	"errors"
	"fmt"
)

// ErrMalformedLine is wrapped by ParseError when a line does not have
// exactly two comma separated fields
var ErrMalformedLine = errors.New("expected <timestamp>,<value>")

// ParseError reports a line that could not be decoded into a Sample
type ParseError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: parsing %q: %v", e.Source, e.Line, e.Text, e.Err)
}

// Unwrap returns the underlying cause
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failure to open, read or close an input
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *ResourceError) Unwrap() error {
	return e.Err
}
