package project

// Status is the lifecycle state of a project pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAnalyzing  Status = "analyzing"
	StatusClarifying Status = "clarifying"
	StatusGenerating Status = "generating"
	StatusDeploying  Status = "deploying"
	StatusDeployed   Status = "deployed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Transition events accepted by the status machine.
const (
	EventAnalyze  = "analyze"
	EventClarify  = "clarify"
	EventGenerate = "generate"
	EventDeploy   = "deploy"
	EventComplete = "complete"
	EventFail     = "fail"
	EventCancel   = "cancel"
)

// transitions maps each non-terminal status to its outgoing events.
// EventFail and EventCancel are valid from every non-terminal status.
var transitions = map[Status]map[string]Status{
	StatusPending: {
		EventAnalyze: StatusAnalyzing,
	},
	StatusAnalyzing: {
		EventClarify:  StatusClarifying,
		EventGenerate: StatusGenerating,
	},
	StatusClarifying: {
		EventGenerate: StatusGenerating,
	},
	StatusGenerating: {
		EventDeploy: StatusDeploying,
		// EventComplete from generating covers the auto_deploy=false path
		// where the deployment phase is skipped.
		EventComplete: StatusDeployed,
	},
	StatusDeploying: {
		EventComplete: StatusDeployed,
	},
}

// AllStatuses lists every status, for filter validation and the FSM sync check.
func AllStatuses() []Status {
	return []Status{
		StatusPending, StatusAnalyzing, StatusClarifying, StatusGenerating,
		StatusDeploying, StatusDeployed, StatusFailed, StatusCancelled,
	}
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	for _, s := range AllStatuses() {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusDeployed || s == StatusFailed || s == StatusCancelled
}

// IsActive reports whether a phase is executing for this status.
// These are exactly the statuses for which CurrentPhase is set.
func (s Status) IsActive() bool {
	return s == StatusAnalyzing || s == StatusGenerating || s == StatusDeploying
}

// Next returns the status reached from s via event.
func (s Status) Next(event string) (Status, bool) {
	if s.IsTerminal() {
		return "", false
	}
	switch event {
	case EventFail:
		return StatusFailed, true
	case EventCancel:
		return StatusCancelled, true
	}
	next, ok := transitions[s][event]
	return next, ok
}

// CanTransitionWith reports whether event is valid from s.
func (s Status) CanTransitionWith(event string) bool {
	_, ok := s.Next(event)
	return ok
}

// ValidEvents returns the events accepted from s, in stable order.
func (s Status) ValidEvents() []string {
	if s.IsTerminal() {
		return nil
	}
	var events []string
	for _, ev := range []string{EventAnalyze, EventClarify, EventGenerate, EventDeploy, EventComplete} {
		if _, ok := transitions[s][ev]; ok {
			events = append(events, ev)
		}
	}
	return append(events, EventFail, EventCancel)
}

// phaseFor maps an active status to the phase it executes.
func phaseFor(s Status) string {
	switch s {
	case StatusAnalyzing:
		return PhaseSpecAnalysis
	case StatusGenerating:
		return PhaseCodeGeneration
	case StatusDeploying:
		return PhaseDeployment
	default:
		return ""
	}
}
