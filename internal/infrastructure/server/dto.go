package server

import (
	"time"

	"github.com/felixgeelhaar/specforge/pkg/domain/project"
	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

// CreateProjectRequest is the POST /projects body.
type CreateProjectRequest struct {
	Name        string           `json:"name" example:"task-tracker" doc:"Project name (lowercase, digits, hyphens)"`
	SpecFormat  string           `json:"spec_format" example:"markdown" doc:"Specification format: markdown or csv"`
	SpecContent string           `json:"spec_content" doc:"Raw specification document"`
	Options     *project.Options `json:"options,omitempty" doc:"Generation options; defaults applied when omitted"`
}

// PhaseResponse is one pipeline phase in API responses.
type PhaseResponse struct {
	Name        string         `json:"name"`
	Status      string         `json:"status"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	DurationMS  int64          `json:"duration_ms,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty" jsonschema:"type=object,additionalProperties=true"`
	Error       string         `json:"error,omitempty"`
}

// GeneratedSummary summarizes the generation output without file contents.
type GeneratedSummary struct {
	OutputDirectory string `json:"output_directory,omitempty"`
	FileCount       int    `json:"file_count"`
	TotalLines      int    `json:"total_lines"`
	EntryPoint      string `json:"entry_point"`
}

// ProjectResponse is the API view of a project.
type ProjectResponse struct {
	ID             string                          `json:"id"`
	Name           string                          `json:"name"`
	Status         string                          `json:"status"`
	CurrentPhase   string                          `json:"current_phase,omitempty"`
	CreatedAt      time.Time                       `json:"created_at"`
	UpdatedAt      time.Time                       `json:"updated_at"`
	CompletedAt    *time.Time                      `json:"completed_at,omitempty"`
	Options        project.Options                 `json:"options"`
	Phases         []PhaseResponse                 `json:"phases"`
	Spec           *spec.StructuredSpec            `json:"spec,omitempty"`
	Clarifications []project.ClarificationQuestion `json:"clarifications,omitempty"`
	Generated      *GeneratedSummary               `json:"generated,omitempty"`
	Deployment     *project.DeploymentResult       `json:"deployment,omitempty"`
	Error          string                          `json:"error,omitempty"`
	ErrorPhase     string                          `json:"error_phase,omitempty"`
}

// ProjectListResponse is the paged GET /projects body.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit,omitempty"`
	Offset   int               `json:"offset,omitempty"`
}

// ClarificationListResponse is the GET /projects/{id}/clarifications body.
type ClarificationListResponse struct {
	ProjectID string                          `json:"project_id"`
	Questions []project.ClarificationQuestion `json:"questions"`
}

// ClarifyRequest is the POST /projects/{id}/clarify body.
type ClarifyRequest struct {
	Answers []project.ClarificationAnswer `json:"answers" minItems:"1"`
}

func projectResponse(p *project.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		Status:         string(p.Status),
		CurrentPhase:   p.CurrentPhase,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		CompletedAt:    p.CompletedAt,
		Options:        p.Options,
		Spec:           p.Spec,
		Clarifications: p.Clarifications,
		Deployment:     p.Deployment,
		Error:          p.Error,
		ErrorPhase:     p.ErrorPhase,
	}
	for _, name := range project.PhaseNames() {
		info := p.Phases[name]
		if info == nil {
			continue
		}
		resp.Phases = append(resp.Phases, PhaseResponse{
			Name:        name,
			Status:      string(info.Status),
			StartedAt:   info.StartedAt,
			CompletedAt: info.CompletedAt,
			DurationMS:  info.DurationMS,
			Metadata:    info.Metadata,
			Error:       info.Error,
		})
	}
	if p.Generated != nil {
		resp.Generated = &GeneratedSummary{
			OutputDirectory: p.Generated.OutputDirectory,
			FileCount:       p.Generated.FileCount(),
			TotalLines:      p.Generated.TotalLines(),
			EntryPoint:      p.Generated.EntryPoint,
		}
	}
	return resp
}

func mapProjects(items []*project.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(items))
	for _, p := range items {
		out = append(out, projectResponse(p))
	}
	return out
}
