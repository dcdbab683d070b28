// Package spec defines the structured specification produced by spec analysis.
package spec

// Priority follows MoSCoW prioritization.
type Priority string

const (
	PriorityMust   Priority = "must"
	PriorityShould Priority = "should"
	PriorityCould  Priority = "could"
	PriorityWont   Priority = "wont"
)

// Complexity is a coarse sizing of the whole specification.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// Feature is a single capability extracted from the input document.
type Feature struct {
	ID                 string   `json:"id" yaml:"id"`
	Name               string   `json:"name" yaml:"name"`
	Description        string   `json:"description" yaml:"description"`
	Priority           Priority `json:"priority" yaml:"priority"`
	UserStories        []string `json:"user_stories,omitempty" yaml:"user_stories,omitempty"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty" yaml:"acceptance_criteria,omitempty"`
	DependsOn          []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// ModelField is a field of a data model.
type ModelField struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"` // "string", "number", "boolean", "date", "json"
	Required    bool   `json:"required" yaml:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// DataModel is an entity the generated application persists.
type DataModel struct {
	Name        string       `json:"name" yaml:"name"`
	Description string       `json:"description" yaml:"description"`
	Fields      []ModelField `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// APIEndpoint describes one HTTP operation of the generated application.
type APIEndpoint struct {
	Method       string `json:"method" yaml:"method"`
	Path         string `json:"path" yaml:"path"`
	Description  string `json:"description" yaml:"description"`
	AuthRequired bool   `json:"auth_required" yaml:"auth_required"`
}

// ComponentType classifies a UI component.
type ComponentType string

const (
	ComponentPage   ComponentType = "page"
	ComponentLayout ComponentType = "layout"
	ComponentWidget ComponentType = "component"
	ComponentModal  ComponentType = "modal"
	ComponentForm   ComponentType = "form"
)

// UIComponent describes one UI unit of the generated application.
type UIComponent struct {
	Name        string        `json:"name" yaml:"name"`
	Type        ComponentType `json:"type" yaml:"type"`
	Description string        `json:"description" yaml:"description"`
	Route       string        `json:"route,omitempty" yaml:"route,omitempty"`
}

// TechStack captures technology recommendations for generation.
type TechStack struct {
	Framework       string `json:"framework" yaml:"framework"`
	Styling         string `json:"styling" yaml:"styling"`
	StateManagement string `json:"state_management" yaml:"state_management"`
	Rationale       string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// StructuredSpec is the complete output of the spec-analysis phase.
type StructuredSpec struct {
	ProjectName  string        `json:"project_name" yaml:"project_name"`
	Description  string        `json:"description" yaml:"description"`
	Features     []Feature     `json:"features,omitempty" yaml:"features,omitempty"`
	DataModels   []DataModel   `json:"data_models,omitempty" yaml:"data_models,omitempty"`
	APIEndpoints []APIEndpoint `json:"api_endpoints,omitempty" yaml:"api_endpoints,omitempty"`
	UIComponents []UIComponent `json:"ui_components,omitempty" yaml:"ui_components,omitempty"`
	Assumptions  []string      `json:"assumptions,omitempty" yaml:"assumptions,omitempty"`
	Tech         TechStack     `json:"tech" yaml:"tech"`
	Complexity   Complexity    `json:"estimated_complexity" yaml:"estimated_complexity"`
}

// FeatureByID returns the feature with the given id, or nil if absent.
func (s *StructuredSpec) FeatureByID(id string) *Feature {
	for i := range s.Features {
		if s.Features[i].ID == id {
			return &s.Features[i]
		}
	}
	return nil
}
