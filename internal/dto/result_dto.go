package dto

import (
	"time"

	"github.com/noah-isme/nepses-go-api/internal/models"
)

// ResultCreateRequest grades a completed assignment.
type ResultCreateRequest struct {
	AssignmentID uint `json:"assignmentId" validate:"required,gt=0"`
}

// ResultResponse is the serialized representation of a graded result.
type ResultResponse struct {
	ID             uint               `json:"id"`
	StudentID      uint               `json:"studentId"`
	ExamID         uint               `json:"examId"`
	AssignmentID   *uint              `json:"assignmentId,omitempty"`
	Answers        models.AnswerSheet `json:"answers"`
	Score          float64            `json:"score"`
	TotalQuestions int                `json:"totalQuestions"`
	CorrectAnswers int                `json:"correctAnswers"`
	SubmittedAt    time.Time          `json:"submittedAt"`
	TimeTaken      *int               `json:"timeTaken,omitempty"`
}

// NewResultResponse converts a model into a DTO.
func NewResultResponse(r models.Result) ResultResponse {
	answers := r.Answers.Data()
	if answers == nil {
		answers = models.AnswerSheet{}
	}
	return ResultResponse{
		ID:             r.ID,
		StudentID:      r.StudentID,
		ExamID:         r.ExamID,
		AssignmentID:   r.AssignmentID,
		Answers:        answers,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		CorrectAnswers: r.CorrectAnswers,
		SubmittedAt:    r.SubmittedAt,
		TimeTaken:      r.TimeTaken,
	}
}

// NewResultResponseSlice converts a slice of models into DTOs.
func NewResultResponseSlice(results []models.Result) []ResultResponse {
	responses := make([]ResultResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, NewResultResponse(r))
	}
	return responses
}
