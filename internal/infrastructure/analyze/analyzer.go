// Package analyze implements the spec-analysis collaborator: it parses a
// markdown or CSV specification document into a structured spec, scores its
// complexity and raises clarification questions for the gaps it finds.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/felixgeelhaar/specforge/pkg/domain/pipeline"
	"github.com/felixgeelhaar/specforge/pkg/domain/project"
	"github.com/felixgeelhaar/specforge/pkg/domain/spec"
)

const specSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["project_name", "description"],
  "properties": {
    "project_name": { "type": "string", "minLength": 1 },
    "description": { "type": "string" },
    "features": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": { "type": "string" },
          "name": { "type": "string", "minLength": 1 },
          "priority": { "enum": ["must", "should", "could", "wont"] }
        }
      }
    },
    "estimated_complexity": { "enum": ["simple", "medium", "complex"] }
  }
}`

var specSchemaLoader = gojsonschema.NewStringLoader(specSchemaJSON)

// Analyzer implements pipeline.Analyzer over the document parsers.
type Analyzer struct{}

// New creates the analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze parses the document, builds the structured spec, validates it
// against the spec schema and raises clarification questions for gaps.
func (a *Analyzer) Analyze(_ context.Context, req pipeline.AnalysisRequest) (*pipeline.AnalysisResult, error) {
	structured, err := a.buildSpec(req)
	if err != nil {
		return nil, err
	}

	if err := validateSpec(structured); err != nil {
		return nil, pipeline.NewError(project.PhaseSpecAnalysis, pipeline.KindExecutionFailure, err)
	}

	return &pipeline.AnalysisResult{
		Spec:      structured,
		Questions: identifyGaps(structured),
	}, nil
}

func (a *Analyzer) buildSpec(req pipeline.AnalysisRequest) (*spec.StructuredSpec, error) {
	structured := &spec.StructuredSpec{
		ProjectName: req.ProjectName,
		Description: req.ProjectName + " application",
		Tech: spec.TechStack{
			Framework:       "nextjs",
			Styling:         "tailwind",
			StateManagement: "zustand",
			Rationale:       "Modern React stack with excellent DX and performance",
		},
	}

	switch req.Format {
	case "markdown":
		parsed := parseMarkdown(req.Content)
		structured.Features = parsed.Features
		structured.DataModels = parsed.DataModels
		structured.APIEndpoints = parsed.APIEndpoints
		structured.UIComponents = parsed.UIComponents
		if parsed.Description != "" {
			structured.Description = parsed.Description
		}
	case "csv":
		features, err := parseCSV(req.Content)
		if err != nil {
			return nil, pipeline.NewError(project.PhaseSpecAnalysis, pipeline.KindInvalidInput, err)
		}
		structured.Features = features
	default:
		return nil, pipeline.NewError(project.PhaseSpecAnalysis, pipeline.KindInvalidInput,
			fmt.Errorf("unsupported spec format %q", req.Format))
	}

	structured.Complexity = estimateComplexity(structured)
	return structured, nil
}

// validateSpec checks the structured spec against the embedded JSON schema.
func validateSpec(s *spec.StructuredSpec) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal structured spec: %w", err)
	}
	result, err := gojsonschema.Validate(specSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate structured spec: %w", err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return fmt.Errorf("structured spec violates schema: %s", strings.Join(issues, "; "))
	}
	return nil
}

// identifyGaps raises clarification questions for missing pieces of the
// specification. Required questions pause the pipeline until answered.
func identifyGaps(s *spec.StructuredSpec) []project.ClarificationQuestion {
	var questions []project.ClarificationQuestion

	var withoutCriteria []string
	for _, f := range s.Features {
		if len(f.AcceptanceCriteria) == 0 {
			withoutCriteria = append(withoutCriteria, f.Name)
		}
	}
	if len(withoutCriteria) > 0 {
		if len(withoutCriteria) > 3 {
			withoutCriteria = withoutCriteria[:3]
		}
		q := project.NewQuestion(project.CategoryFeature, fmt.Sprintf(
			"The following features lack acceptance criteria: %s. Can you provide specific acceptance criteria for these?",
			strings.Join(withoutCriteria, ", ")))
		q.Required = false
		q.Context = "Acceptance criteria help ensure features are implemented correctly"
		questions = append(questions, q)
	}

	if len(s.Features) > 0 && len(s.DataModels) == 0 {
		q := project.NewQuestion(project.CategoryTechnical,
			"No data models were specified. What data entities does this application need? (e.g., User, Task, etc.)")
		q.Context = "Data models are essential for generating database schemas and API types"
		questions = append(questions, q)
	}

	if len(s.Features) > 0 && !hasAuthFeature(s.Features) {
		q := project.NewQuestion(project.CategoryFeature, "Does this application require user authentication?")
		q.Options = []string{"Yes, with email/password", "Yes, with social login", "No authentication needed"}
		q.Context = "Authentication affects many aspects of the application architecture"
		questions = append(questions, q)
	}

	if len(s.Features) > 0 && len(s.UIComponents) == 0 {
		q := project.NewQuestion(project.CategoryDesign, "What kind of user interface is needed?")
		q.Options = []string{"Web application (browser)", "Mobile-responsive web app", "Admin dashboard"}
		q.Context = "UI type affects component library choices and responsive design"
		questions = append(questions, q)
	}

	return questions
}

func hasAuthFeature(features []spec.Feature) bool {
	keywords := []string{"auth", "login", "register", "user", "account"}
	for _, f := range features {
		text := strings.ToLower(f.Name + " " + f.Description)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}

// estimateComplexity scores the spec by feature, model and endpoint counts
// plus keywords that historically correlate with complex builds.
func estimateComplexity(s *spec.StructuredSpec) spec.Complexity {
	score := 0

	switch {
	case len(s.Features) > 10:
		score += 3
	case len(s.Features) > 5:
		score += 2
	default:
		score++
	}

	switch {
	case len(s.DataModels) > 5:
		score += 3
	case len(s.DataModels) > 2:
		score += 2
	default:
		score++
	}

	switch {
	case len(s.APIEndpoints) > 15:
		score += 3
	case len(s.APIEndpoints) > 5:
		score += 2
	default:
		score++
	}

	complexKeywords := []string{"real-time", "sync", "payment", "oauth", "websocket", "notification"}
	for _, f := range s.Features {
		text := strings.ToLower(f.Name + " " + f.Description)
		for _, kw := range complexKeywords {
			if strings.Contains(text, kw) {
				score++
				break
			}
		}
	}

	switch {
	case score >= 8:
		return spec.ComplexityComplex
	case score >= 5:
		return spec.ComplexityMedium
	default:
		return spec.ComplexitySimple
	}
}
