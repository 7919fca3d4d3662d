package interview

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a backend round-trip is already outstanding.
	ErrBusy = errors.New("interview: a request is already in progress")

	// ErrEmptyAnswer rejects answers that are blank after trimming.
	ErrEmptyAnswer = &ValidationError{Field: "text", Reason: "answer must not be empty"}
)

// ValidationError is raised for input rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// TransitionError reports an intent that is not valid in the current stage.
type TransitionError struct {
	Event string
	Stage Stage
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("interview: %s not allowed in stage %q", e.Event, e.Stage)
}

// ErrInvalidTransition matches any *TransitionError via errors.Is.
var ErrInvalidTransition = errors.New("interview: invalid transition")

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
