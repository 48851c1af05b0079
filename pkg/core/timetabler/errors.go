package timetabler

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned when Generate is called on an engine that is already running
var ErrRunInProgress = errors.New("a generation run is already in progress")

// InvalidInputError reports input from which no assignment can be constructed
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func invalidInput(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
