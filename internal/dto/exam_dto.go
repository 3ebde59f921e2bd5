package dto

import (
	"time"

	"github.com/noah-isme/nepses-go-api/internal/models"
)

// ExamPaperCreateRequest builds a paper from an explicit question list.
type ExamPaperCreateRequest struct {
	Title         string `json:"title" validate:"required,min=1,max=255"`
	Subject       string `json:"subject" validate:"required"`
	Category      string `json:"category" validate:"required"`
	Questions     []uint `json:"questions" validate:"required,min=1,unique,dive,gt=0"`
	Duration      *int   `json:"duration" validate:"omitempty,min=5,max=240"`
	IsAIGenerated bool   `json:"isAIGenerated"`
}

// ExamPaperGenerateRequest builds a paper by sampling the question bank.
type ExamPaperGenerateRequest struct {
	Title        string `json:"title" validate:"omitempty,max=255"`
	Subject      string `json:"subject" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Difficulty   string `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	NumQuestions int    `json:"numQuestions" validate:"required,min=1,max=500"`
	Duration     *int   `json:"duration" validate:"omitempty,min=5,max=240"`
}

// ExamPaperUpdateRequest is a sparse paper update. A supplied question list
// is validated exactly like an explicit build.
type ExamPaperUpdateRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=255"`
	Subject   *string `json:"subject" validate:"omitempty,min=1"`
	Category  *string `json:"category" validate:"omitempty,min=1"`
	Questions *[]uint `json:"questions" validate:"omitempty,min=1,unique,dive,gt=0"`
	Duration  *int    `json:"duration" validate:"omitempty,min=5,max=240"`
}

// ExamPaperListRequest filters paper listings.
type ExamPaperListRequest struct {
	Subject  string
	Category string
}

// ExamPaperResponse is the serialized representation of a paper. Questions is
// only populated on detail reads and follows paper order.
type ExamPaperResponse struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Subject       string             `json:"subject"`
	Category      string             `json:"category"`
	QuestionIDs   []uint             `json:"questionIds"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	QuestionCount int                `json:"questionCount"`
	Duration      int                `json:"duration"`
	Provenance    string             `json:"provenance"`
	IsAIGenerated bool               `json:"isAIGenerated"`
	CreatedBy     *uint              `json:"createdBy,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// WithoutAnswerKey returns a copy of the paper with every correctOption
// removed, for readers who sit the exam rather than grade it.
func (r ExamPaperResponse) WithoutAnswerKey() ExamPaperResponse {
	if len(r.Questions) == 0 {
		return r
	}
	questions := make([]QuestionResponse, len(r.Questions))
	for i, q := range r.Questions {
		q.CorrectOption = nil
		questions[i] = q
	}
	r.Questions = questions
	return r
}

// NewExamPaperResponse converts a model into a DTO without resolving questions.
func NewExamPaperResponse(p models.ExamPaper) ExamPaperResponse {
	ids := make([]uint, len(p.QuestionIDs))
	copy(ids, p.QuestionIDs)
	return ExamPaperResponse{
		ID:            p.ID,
		Title:         p.Title,
		Subject:       p.Subject,
		Category:      p.Category,
		QuestionIDs:   ids,
		QuestionCount: len(ids),
		Duration:      p.Duration,
		Provenance:    p.Provenance,
		IsAIGenerated: p.IsAIGenerated,
		CreatedBy:     p.CreatedByID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// NewExamPaperResponseSlice converts a slice of models into DTOs.
func NewExamPaperResponseSlice(papers []models.ExamPaper) []ExamPaperResponse {
	responses := make([]ExamPaperResponse, 0, len(papers))
	for _, p := range papers {
		responses = append(responses, NewExamPaperResponse(p))
	}
	return responses
}
