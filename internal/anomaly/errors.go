package anomaly

import (
	"fmt"
	"time"
)

// GroupError attaches the offending group to a classification failure
type GroupError struct {
	Key   string
	Start time.Time
	End   time.Time
	Err   error
}

// Error implements the error interface
func (e *GroupError) Error() string {
	return fmt.Sprintf("group %s (%s - %s): %v",
		e.Key, e.Start.Format(time.DateTime), e.End.Format(time.DateTime), e.Err)
}

// Unwrap returns the classifier error
func (e *GroupError) Unwrap() error {
	return e.Err
}
