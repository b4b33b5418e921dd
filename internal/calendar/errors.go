package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidDay is returned for day numbers outside 1..24
var ErrInvalidDay = errors.New("day out of range")

// GateError means a window was opened before its date.
// Its message is shown to the user as a transient notice.
type GateError struct {
	Day int
}

func (e *GateError) Error() string {
	return fmt.Sprintf("Day %d is not available yet. Please wait until December %d!", e.Day, e.Day)
}

// NoContentError means an unlocked window has no DayEntry
type NoContentError struct {
	Day int
}

func (e *NoContentError) Error() string {
	return fmt.Sprintf("No content found for day %d.", e.Day)
}

// IsNotice reports whether err is meant for the user rather than the log
func IsNotice(err error) bool {
	var gate *GateError
	var missing *NoContentError
	return errors.As(err, &gate) || errors.As(err, &missing)
}
