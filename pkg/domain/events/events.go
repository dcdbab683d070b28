// Package events defines the progress events published during pipeline runs
// and the in-process bus that fans them out to live subscribers.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the pipeline.
const (
	TypePhaseStarted       = "phase_started"
	TypePhaseCompleted     = "phase_completed"
	TypeAgentMessage       = "agent_message"
	TypeFileGenerated      = "file_generated"
	TypeDeploymentComplete = "deployment_complete"
	TypeError              = "error"
)

// Event is an immutable progress fact. Events are advisory: authoritative
// state always lives in the project store.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	ProjectID string    `json:"project_id"`
	Timestamp time.Time `json:"timestamp"`

	Phase      string `json:"phase,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Agent      string `json:"agent,omitempty"`
	Message    string `json:"message,omitempty"`
	Path       string `json:"path,omitempty"`
	Lines      int    `json:"lines,omitempty"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Terminal reports whether the event ends a stream: the pipeline either
// finished or failed.
func (e Event) Terminal() bool {
	return e.Type == TypeDeploymentComplete || e.Type == TypeError
}

func newEvent(eventType, projectID string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		ProjectID: projectID,
		Timestamp: time.Now().UTC(),
	}
}

// PhaseStarted announces a phase entering in_progress.
func PhaseStarted(projectID, phase string) Event {
	e := newEvent(TypePhaseStarted, projectID)
	e.Phase = phase
	return e
}

// PhaseCompleted announces a successful phase with its elapsed duration.
func PhaseCompleted(projectID, phase string, durationMS int64) Event {
	e := newEvent(TypePhaseCompleted, projectID)
	e.Phase = phase
	e.DurationMS = durationMS
	return e
}

// AgentMessage carries free-form progress text from a collaborator.
func AgentMessage(projectID, agent, message string) Event {
	e := newEvent(TypeAgentMessage, projectID)
	e.Agent = agent
	e.Message = message
	return e
}

// FileGenerated announces a single synthesized file.
func FileGenerated(projectID, path string, lines int) Event {
	e := newEvent(TypeFileGenerated, projectID)
	e.Path = path
	e.Lines = lines
	return e
}

// DeploymentComplete announces the final URL.
func DeploymentComplete(projectID, url string) Event {
	e := newEvent(TypeDeploymentComplete, projectID)
	e.URL = url
	return e
}

// Error announces a pipeline failure.
func Error(projectID, phase, message string) Event {
	e := newEvent(TypeError, projectID)
	e.Phase = phase
	e.Error = message
	return e
}
