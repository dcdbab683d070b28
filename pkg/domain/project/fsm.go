package project

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// State constants for statekit integration.
// These must remain untyped string constants for statekit.StateID compatibility.
// Values are kept in sync with Status constants in status.go.
const (
	StatePending    = "pending"
	StateAnalyzing  = "analyzing"
	StateClarifying = "clarifying"
	StateGenerating = "generating"
	StateDeploying  = "deploying"
	StateDeployed   = "deployed"
	StateFailed     = "failed"
	StateCancelled  = "cancelled"
)

// init validates at startup that FSM state constants match Status values.
func init() {
	stateMap := map[string]Status{
		StatePending:    StatusPending,
		StateAnalyzing:  StatusAnalyzing,
		StateClarifying: StatusClarifying,
		StateGenerating: StatusGenerating,
		StateDeploying:  StatusDeploying,
		StateDeployed:   StatusDeployed,
		StateFailed:     StatusFailed,
		StateCancelled:  StatusCancelled,
	}
	if len(stateMap) != len(AllStatuses()) {
		panic("FSM state constants do not cover every Status value")
	}
	for fsmState, status := range stateMap {
		if fsmState != string(status) {
			panic(fmt.Sprintf("FSM state %q does not match Status %q - constants are out of sync", fsmState, status))
		}
	}
}

// StatusContext carries state data for the status machine.
type StatusContext struct {
	ProjectID string
}

// StatusMachine validates project status transitions.
type StatusMachine struct {
	interpreter *statekit.Interpreter[StatusContext]
}

// NewStatusMachine builds a machine positioned at initialState.
func NewStatusMachine(initialState Status, projectID string) (*StatusMachine, error) {
	builder := statekit.NewMachine[StatusContext]("project-status").
		WithInitial(statekit.StateID(initialState)).
		WithContext(StatusContext{ProjectID: projectID})

	builder.State(StatePending).
		On(EventAnalyze).Target(StateAnalyzing).
		On(EventFail).Target(StateFailed).
		On(EventCancel).Target(StateCancelled).
		Done()

	builder.State(StateAnalyzing).
		On(EventClarify).Target(StateClarifying).
		On(EventGenerate).Target(StateGenerating).
		On(EventFail).Target(StateFailed).
		On(EventCancel).Target(StateCancelled).
		Done()

	builder.State(StateClarifying).
		On(EventGenerate).Target(StateGenerating).
		On(EventFail).Target(StateFailed).
		On(EventCancel).Target(StateCancelled).
		Done()

	builder.State(StateGenerating).
		On(EventDeploy).Target(StateDeploying).
		On(EventComplete).Target(StateDeployed).
		On(EventFail).Target(StateFailed).
		On(EventCancel).Target(StateCancelled).
		Done()

	builder.State(StateDeploying).
		On(EventComplete).Target(StateDeployed).
		On(EventFail).Target(StateFailed).
		On(EventCancel).Target(StateCancelled).
		Done()

	// Terminal states carry no outgoing transitions.
	builder.State(StateDeployed).Done()
	builder.State(StateFailed).Done()
	builder.State(StateCancelled).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build status machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &StatusMachine{interpreter: interpreter}, nil
}

// Transition attempts to move the project to a new status.
func (sm *StatusMachine) Transition(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}

	// In statekit, when no transition matches the state stays the same.
	return &TransitionError{From: before, Event: event}
}

// Current returns the machine's current status.
func (sm *StatusMachine) Current() Status {
	return Status(sm.interpreter.State().Value)
}

// CanTransition checks if the given event is valid for the current status.
// This delegates to the Status value object for consistency.
func (sm *StatusMachine) CanTransition(event string) bool {
	return sm.Current().CanTransitionWith(event)
}

// IsFinal returns true if the current status is terminal.
func (sm *StatusMachine) IsFinal() bool {
	return sm.Current().IsTerminal()
}
