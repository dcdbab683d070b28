// Package pipeline defines the collaborator interfaces invoked by the three
// pipeline phases. The orchestration core treats collaborators as opaque,
// slow, fallible calls; implementations live under internal/infrastructure.
package pipeline

import (
	"context"

	"github.com/felixgeelhaar/specforge/pkg/domain/project"
	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

// AnalysisRequest carries the raw document into spec analysis.
type AnalysisRequest struct {
	ProjectName string
	Format      string // "markdown" or "csv"
	Content     string
}

// AnalysisResult is the spec-analysis output: the structured spec plus any
// clarification questions the analyzer wants answered.
type AnalysisResult struct {
	Spec      *spec.StructuredSpec
	Questions []project.ClarificationQuestion
}

// Analyzer turns a raw specification document into a structured spec.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

// GenerationRequest carries the structured spec into code generation.
type GenerationRequest struct {
	ProjectID   string
	ProjectName string
	Spec        *spec.StructuredSpec
	Options     project.Options
}

// Generator synthesizes an application file set from a structured spec.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (*project.GeneratedProject, error)
}

// DeploymentRequest carries the generated project into deployment.
type DeploymentRequest struct {
	ProjectName string
	Generated   *project.GeneratedProject
	Environment string // "production" or "preview"
}

// Deployer publishes a generated project and returns its public URL.
type Deployer interface {
	Deploy(ctx context.Context, req DeploymentRequest) (*project.DeploymentResult, error)
}
