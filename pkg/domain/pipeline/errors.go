package pipeline

import (
	"context"
	"errors"
)

// ErrorKind classifies a collaborator failure.
type ErrorKind string

const (
	KindInvalidInput     ErrorKind = "invalid_input"
	KindExecutionFailure ErrorKind = "execution_failure"
	KindTimeout          ErrorKind = "timeout"
	KindUnavailable      ErrorKind = "unavailable"
)

// Retryable reports whether a failure of this kind may succeed on retry.
// Invalid input and plain execution failures are deterministic.
func (k ErrorKind) Retryable() bool {
	return k == KindTimeout || k == KindUnavailable
}

// CollaboratorError wraps a failure from a phase's external call. It is
// always terminal for the pipeline run and is recorded on the project.
type CollaboratorError struct {
	Phase string
	Kind  ErrorKind
	Err   error
}

func (e *CollaboratorError) Error() string {
	return "phase " + e.Phase + " failed (" + string(e.Kind) + "): " + e.Err.Error()
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// NewError builds a CollaboratorError with an explicit kind.
func NewError(phase string, kind ErrorKind, err error) *CollaboratorError {
	return &CollaboratorError{Phase: phase, Kind: kind, Err: err}
}

// Classify converts an arbitrary collaborator failure into a
// CollaboratorError. An existing CollaboratorError keeps its kind but is
// stamped with the phase; context deadline errors become timeouts.
func Classify(phase string, err error) *CollaboratorError {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		if ce.Phase == "" {
			ce.Phase = phase
		}
		return ce
	}
	kind := KindExecutionFailure
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &CollaboratorError{Phase: phase, Kind: kind, Err: err}
}
