package dto

import (
	"encoding/json"
	"fmt"
)

// AIGenerateRequest asks the configured text-generation provider for
// multiple choice questions. Without a prompt, subject and category are
// required to build the default one.
type AIGenerateRequest struct {
	Prompt       string `json:"prompt" validate:"omitempty,max=4000"`
	Subject      string `json:"subject" validate:"required_without=Prompt"`
	Category     string `json:"category" validate:"required_without=Prompt"`
	Difficulty   string `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	NumQuestions int    `json:"numQuestions" validate:"omitempty,min=1,max=50"`
	Persist      bool   `json:"persist"`
}

// DefaultQuestionCount is used when a request leaves numQuestions empty.
const DefaultQuestionCount = 5

// EffectivePrompt returns the caller's prompt or the default question prompt.
func (r AIGenerateRequest) EffectivePrompt() string {
	if r.Prompt != "" {
		return r.Prompt
	}

	count := r.NumQuestions
	if count <= 0 {
		count = DefaultQuestionCount
	}
	difficulty := r.Difficulty
	if difficulty == "" {
		difficulty = "Medium"
	}

	return fmt.Sprintf(
		"Generate %d multiple choice questions for subject: %s, category: %s, difficulty: %s. Return JSON array with {text, options, correctOption}.",
		count, r.Subject, r.Category, difficulty,
	)
}

// AIGenerateResult carries the extracted array and, when persisted, the
// stored questions.
type AIGenerateResult struct {
	Provider string
	Items    []json.RawMessage
	Stored   []QuestionResponse
}
