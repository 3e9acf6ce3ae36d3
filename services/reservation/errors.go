package reservation

import (
	"errors"
	"fmt"

	draftRepo "pmove/database/repository/draft"
)

var (
	// ErrDraftNotFound covers expired drafts and drafts owned by another session.
	ErrDraftNotFound = draftRepo.ErrDraftNotFound
	// ErrDraftBusy means a lookup or submission for the draft is still in flight.
	ErrDraftBusy = draftRepo.ErrDraftLocked
	// ErrStaleResponse is returned when a lookup finished after the draft moved on.
	ErrStaleResponse = errors.New("draft changed while the request was in flight")
	// ErrTerminal is returned for any event on a confirmed draft.
	ErrTerminal = errors.New("reservation already confirmed")
	// ErrInvalidTransition matches every *TransitionError via errors.Is.
	ErrInvalidTransition = errors.New("invalid transition")
)

// TransitionError rejects an event that the current step does not accept.
type TransitionError struct {
	Step  string
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s is not allowed at the %s step", e.Event, e.Step)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// ValidationError is a blocking input error raised at a step boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// LookupError reports a failed reservation lookup. The draft is left untouched.
type LookupError struct {
	NotFound bool
	Message  string
	Err      error
}

func (e *LookupError) Error() string {
	return e.Message
}

func (e *LookupError) Unwrap() error { return e.Err }

// SubmissionError carries the sink's rejection message verbatim.
type SubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error { return e.Err }
