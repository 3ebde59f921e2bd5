package dto

import (
	"time"

	"github.com/noah-isme/nepses-go-api/internal/models"
)

// QuestionCreateRequest describes a single question-bank entry.
type QuestionCreateRequest struct {
	Text          string   `json:"text" validate:"required,min=1"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectOption *int     `json:"correctOption" validate:"required,min=0"`
	Subject       string   `json:"subject" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	Difficulty    string   `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
}

// QuestionUpdateRequest is a sparse question update.
type QuestionUpdateRequest struct {
	Text          *string   `json:"text" validate:"omitempty,min=1"`
	Options       *[]string `json:"options" validate:"omitempty,min=2,dive,required"`
	CorrectOption *int      `json:"correctOption" validate:"omitempty,min=0"`
	Subject       *string   `json:"subject" validate:"omitempty,min=1"`
	Category      *string   `json:"category" validate:"omitempty,min=1"`
	Difficulty    *string   `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
}

// QuestionBulkRequest inserts many questions at once.
type QuestionBulkRequest struct {
	Questions []QuestionCreateRequest `json:"questions" validate:"required,min=1,dive"`
}

// QuestionListRequest filters the question bank.
type QuestionListRequest struct {
	Subject    string
	Category   string
	Difficulty string
}

// QuestionResponse is the serialized representation of a question.
type QuestionResponse struct {
	ID            uint      `json:"id"`
	Text          string    `json:"text"`
	Options       []string  `json:"options"`
	CorrectOption *int      `json:"correctOption,omitempty"`
	Subject       string    `json:"subject"`
	Category      string    `json:"category"`
	Difficulty    string    `json:"difficulty"`
	IsAIGenerated bool      `json:"isAIGenerated"`
	CreatedBy     *uint     `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewQuestionResponse converts a model into a DTO.
func NewQuestionResponse(q models.Question) QuestionResponse {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	correct := q.CorrectOption
	return QuestionResponse{
		ID:            q.ID,
		Text:          q.Text,
		Options:       options,
		CorrectOption: &correct,
		Subject:       q.Subject,
		Category:      q.Category,
		Difficulty:    q.Difficulty,
		IsAIGenerated: q.IsAIGenerated,
		CreatedBy:     q.CreatedByID,
		CreatedAt:     q.CreatedAt,
	}
}

// NewQuestionResponseSlice converts a slice of models into DTOs.
func NewQuestionResponseSlice(questions []models.Question) []QuestionResponse {
	responses := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, NewQuestionResponse(q))
	}
	return responses
}
