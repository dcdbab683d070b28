// Package project defines the Project aggregate: the unit of work driven
// through the spec-analysis, code-generation and deployment pipeline.
package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

// Pipeline phase names, in execution order.
const (
	PhaseSpecAnalysis   = "spec_analysis"
	PhaseCodeGeneration = "code_generation"
	PhaseDeployment     = "deployment"
)

// PhaseNames returns the pipeline phases in execution order.
func PhaseNames() []string {
	return []string{PhaseSpecAnalysis, PhaseCodeGeneration, PhaseDeployment}
}

// PhaseStatus is the execution state of a single phase.
type PhaseStatus string

const (
	PhasePending    PhaseStatus = "pending"
	PhaseInProgress PhaseStatus = "in_progress"
	PhaseCompleted  PhaseStatus = "completed"
	PhaseFailed     PhaseStatus = "failed"
	PhaseSkipped    PhaseStatus = "skipped"
)

// PhaseInfo is the per-phase execution record.
type PhaseInfo struct {
	Status      PhaseStatus    `json:"status" yaml:"status"`
	StartedAt   *time.Time     `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	DurationMS  int64          `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Options control generation and deployment behavior.
type Options struct {
	Framework    string `json:"framework" yaml:"framework"`
	Styling      string `json:"styling" yaml:"styling"`
	AutoDeploy   bool   `json:"auto_deploy" yaml:"auto_deploy"`
	IncludeTests bool   `json:"include_tests" yaml:"include_tests"`
	TypeScript   bool   `json:"typescript" yaml:"typescript"`
}

// DefaultOptions returns the defaults applied when a request omits options.
func DefaultOptions() Options {
	return Options{
		Framework:    "nextjs",
		Styling:      "tailwind",
		AutoDeploy:   true,
		IncludeTests: true,
		TypeScript:   true,
	}
}

// GeneratedFile is one synthesized source file.
type GeneratedFile struct {
	Path     string `json:"path" yaml:"path"`
	Content  string `json:"content,omitempty" yaml:"content,omitempty"`
	FileType string `json:"file_type" yaml:"file_type"` // "source", "config", "test", "docs"
	Lines    int    `json:"lines" yaml:"lines"`
}

// GeneratedProject is the output of the code-generation phase.
type GeneratedProject struct {
	OutputDirectory string            `json:"output_directory" yaml:"output_directory"`
	Files           []GeneratedFile   `json:"files,omitempty" yaml:"files,omitempty"`
	EntryPoint      string            `json:"entry_point" yaml:"entry_point"`
	BuildCommand    string            `json:"build_command" yaml:"build_command"`
	StartCommand    string            `json:"start_command" yaml:"start_command"`
	Dependencies    map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"dev_dependencies,omitempty" yaml:"dev_dependencies,omitempty"`
}

// FileCount returns the number of generated files.
func (g *GeneratedProject) FileCount() int { return len(g.Files) }

// TotalLines returns the total generated line count.
func (g *GeneratedProject) TotalLines() int {
	total := 0
	for _, f := range g.Files {
		total += f.Lines
	}
	return total
}

// DeploymentResult is the output of the deployment phase.
type DeploymentResult struct {
	URL          string `json:"url" yaml:"url"`
	DeploymentID string `json:"deployment_id" yaml:"deployment_id"`
	BuildLogsURL string `json:"build_logs_url,omitempty" yaml:"build_logs_url,omitempty"`
	DurationMS   int64  `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

// Project is the canonical record for one pipeline run. The store owns the
// record; everything else works on snapshots.
type Project struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`

	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`

	SpecFormat  string  `json:"spec_format" yaml:"spec_format"` // "markdown" or "csv"
	SpecContent string  `json:"spec_content" yaml:"spec_content"`
	Options     Options `json:"options" yaml:"options"`

	CurrentPhase string                `json:"current_phase,omitempty" yaml:"current_phase,omitempty"`
	Phases       map[string]*PhaseInfo `json:"phases" yaml:"phases"`

	Clarifications []ClarificationQuestion `json:"clarifications,omitempty" yaml:"clarifications,omitempty"`

	Spec       *spec.StructuredSpec `json:"structured_spec,omitempty" yaml:"structured_spec,omitempty"`
	Generated  *GeneratedProject    `json:"generated_project,omitempty" yaml:"generated_project,omitempty"`
	Deployment *DeploymentResult    `json:"deployment_result,omitempty" yaml:"deployment_result,omitempty"`

	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorPhase string `json:"error_phase,omitempty" yaml:"error_phase,omitempty"`
}

// New creates a pending project with a fresh id and all phases pending.
func New(name, specFormat, specContent string, opts Options, now time.Time) *Project {
	phases := make(map[string]*PhaseInfo, len(PhaseNames()))
	for _, name := range PhaseNames() {
		phases[name] = &PhaseInfo{Status: PhasePending}
	}
	return &Project{
		ID:          uuid.New().String(),
		Name:        name,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		SpecFormat:  specFormat,
		SpecContent: specContent,
		Options:     opts,
		Phases:      phases,
	}
}

// Clone returns a deep copy so callers never alias the stored record.
func (p *Project) Clone() *Project {
	c := *p
	c.Phases = make(map[string]*PhaseInfo, len(p.Phases))
	for name, info := range p.Phases {
		pi := *info
		if info.StartedAt != nil {
			t := *info.StartedAt
			pi.StartedAt = &t
		}
		if info.CompletedAt != nil {
			t := *info.CompletedAt
			pi.CompletedAt = &t
		}
		if info.Metadata != nil {
			pi.Metadata = make(map[string]any, len(info.Metadata))
			for k, v := range info.Metadata {
				pi.Metadata[k] = v
			}
		}
		c.Phases[name] = &pi
	}
	if p.CompletedAt != nil {
		t := *p.CompletedAt
		c.CompletedAt = &t
	}
	if p.Clarifications != nil {
		c.Clarifications = make([]ClarificationQuestion, len(p.Clarifications))
		copy(c.Clarifications, p.Clarifications)
	}
	if p.Spec != nil {
		s := *p.Spec
		c.Spec = &s
	}
	if p.Generated != nil {
		g := *p.Generated
		if p.Generated.Files != nil {
			g.Files = make([]GeneratedFile, len(p.Generated.Files))
			copy(g.Files, p.Generated.Files)
		}
		c.Generated = &g
	}
	if p.Deployment != nil {
		d := *p.Deployment
		c.Deployment = &d
	}
	return &c
}

// Transition moves the project status via the given event. Terminal statuses
// reject every event; CurrentPhase tracks the active status.
func (p *Project) Transition(event string, now time.Time) error {
	if p.Status.IsTerminal() {
		return ErrTerminal
	}
	sm, err := NewStatusMachine(p.Status, p.ID)
	if err != nil {
		return err
	}
	if err := sm.Transition(event); err != nil {
		return err
	}
	p.Status = sm.Current()
	p.CurrentPhase = phaseFor(p.Status)
	p.UpdatedAt = now
	if p.Status == StatusDeployed {
		t := now
		p.CompletedAt = &t
	}
	return nil
}

// Phase returns the record for the named phase.
func (p *Project) Phase(name string) (*PhaseInfo, error) {
	info, ok := p.Phases[name]
	if !ok {
		return nil, ErrUnknownPhase
	}
	return info, nil
}

// StartPhase transitions a pending phase to in_progress.
func (p *Project) StartPhase(name string, now time.Time) error {
	info, err := p.Phase(name)
	if err != nil {
		return err
	}
	if info.Status != PhasePending {
		return ErrPhaseNotPending
	}
	info.Status = PhaseInProgress
	t := now
	info.StartedAt = &t
	p.UpdatedAt = now
	return nil
}

// CompletePhase transitions an in_progress phase to completed and records
// elapsed duration plus any metadata.
func (p *Project) CompletePhase(name string, now time.Time, metadata map[string]any) error {
	info, err := p.Phase(name)
	if err != nil {
		return err
	}
	if info.Status != PhaseInProgress {
		return ErrPhaseNotStarted
	}
	info.Status = PhaseCompleted
	t := now
	info.CompletedAt = &t
	if info.StartedAt != nil {
		info.DurationMS = now.Sub(*info.StartedAt).Milliseconds()
	}
	if len(metadata) > 0 {
		if info.Metadata == nil {
			info.Metadata = make(map[string]any, len(metadata))
		}
		for k, v := range metadata {
			info.Metadata[k] = v
		}
	}
	p.UpdatedAt = now
	return nil
}

// FailPhase marks the phase failed and records the error on the project.
func (p *Project) FailPhase(name string, now time.Time, message string) error {
	info, err := p.Phase(name)
	if err != nil {
		return err
	}
	info.Status = PhaseFailed
	t := now
	info.CompletedAt = &t
	if info.StartedAt != nil {
		info.DurationMS = now.Sub(*info.StartedAt).Milliseconds()
	}
	info.Error = message
	p.Error = message
	p.ErrorPhase = name
	p.UpdatedAt = now
	return nil
}

// SkipPhase marks a phase that will never run, e.g. deployment with
// auto_deploy disabled.
func (p *Project) SkipPhase(name string, now time.Time) error {
	info, err := p.Phase(name)
	if err != nil {
		return err
	}
	if info.Status != PhasePending {
		return ErrPhaseNotPending
	}
	info.Status = PhaseSkipped
	p.UpdatedAt = now
	return nil
}

// PendingClarifications returns the unanswered questions.
func (p *Project) PendingClarifications() []ClarificationQuestion {
	var pending []ClarificationQuestion
	for _, q := range p.Clarifications {
		if !q.Answered {
			pending = append(pending, q)
		}
	}
	return pending
}

// AnswerClarification records an answer. Answering twice overwrites; an
// unknown id or an empty answer to a required question is rejected.
func (p *Project) AnswerClarification(questionID, answer string) error {
	for i := range p.Clarifications {
		q := &p.Clarifications[i]
		if q.ID != questionID {
			continue
		}
		if q.Required && answer == "" {
			return &QuestionError{QuestionID: questionID, Err: ErrAnswerRequired}
		}
		q.Answered = true
		q.Answer = answer
		return nil
	}
	return &QuestionError{QuestionID: questionID, Err: ErrUnknownQuestion}
}

// RequiredAnswered reports whether every required question has an answer.
func (p *Project) RequiredAnswered() bool {
	for _, q := range p.Clarifications {
		if q.Required && !q.Answered {
			return false
		}
	}
	return true
}
