package project

import (
	"strings"

	"github.com/google/uuid"
)

// QuestionCategory classifies a clarification question.
type QuestionCategory string

const (
	CategoryFeature   QuestionCategory = "feature"
	CategoryDesign    QuestionCategory = "design"
	CategoryTechnical QuestionCategory = "technical"
	CategoryScope     QuestionCategory = "scope"
)

// ClarificationQuestion is raised during spec analysis and gates progression
// while unanswered (required questions only).
type ClarificationQuestion struct {
	ID       string           `json:"id" yaml:"id"`
	Category QuestionCategory `json:"category" yaml:"category"`
	Question string           `json:"question" yaml:"question"`
	Options  []string         `json:"options,omitempty" yaml:"options,omitempty"`
	Required bool             `json:"required" yaml:"required"`
	Context  string           `json:"context,omitempty" yaml:"context,omitempty"`
	Answered bool             `json:"answered" yaml:"answered"`
	Answer   string           `json:"answer,omitempty" yaml:"answer,omitempty"`
}

// NewQuestion creates a required question with a fresh id.
func NewQuestion(category QuestionCategory, question string) ClarificationQuestion {
	return ClarificationQuestion{
		ID:       "q_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
		Category: category,
		Question: question,
		Required: true,
	}
}

// ClarificationAnswer pairs a question id with its answer.
type ClarificationAnswer struct {
	QuestionID string `json:"question_id" yaml:"question_id"`
	Answer     string `json:"answer" yaml:"answer"`
}
