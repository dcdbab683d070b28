package project

import "errors"

// Domain errors for project lifecycle operations.
var (
	// ErrNotFound indicates the project does not exist in the store.
	ErrNotFound = errors.New("project not found")

	// ErrTerminal indicates the project reached a terminal status and is immutable.
	ErrTerminal = errors.New("project is in a terminal status")

	// ErrInvalidTransition indicates the requested status transition is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPhaseNotPending indicates a phase was asked to start twice.
	ErrPhaseNotPending = errors.New("phase is not pending")

	// ErrPhaseNotStarted indicates a phase completion without a start.
	ErrPhaseNotStarted = errors.New("phase is not in progress")

	// ErrUnknownPhase indicates a phase name outside the pipeline.
	ErrUnknownPhase = errors.New("unknown phase")

	// ErrNotClarifying indicates clarification answers for a project that is not paused.
	ErrNotClarifying = errors.New("project is not awaiting clarifications")

	// ErrUnknownQuestion indicates an answer for a clarification id that was never asked.
	ErrUnknownQuestion = errors.New("unknown clarification question")

	// ErrAnswerRequired indicates an empty answer to a required question.
	ErrAnswerRequired = errors.New("answer must not be empty")

	// ErrCancelled indicates the project was cancelled while a run was in flight.
	ErrCancelled = errors.New("project cancelled")
)

// TransitionError provides details about an invalid status transition.
type TransitionError struct {
	From  Status
	Event string
}

func (e *TransitionError) Error() string {
	return "cannot transition from " + string(e.From) + " via " + e.Event
}

// Is allows errors.Is to match ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// QuestionError identifies the offending clarification question id.
type QuestionError struct {
	QuestionID string
	Err        error
}

func (e *QuestionError) Error() string {
	return "question " + e.QuestionID + ": " + e.Err.Error()
}

func (e *QuestionError) Unwrap() error { return e.Err }
