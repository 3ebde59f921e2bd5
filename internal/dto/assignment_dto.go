package dto

import (
	"time"

	"github.com/noah-isme/nepses-go-api/internal/models"
)

// AssignmentCreateRequest assigns one paper to one student.
type AssignmentCreateRequest struct {
	ExamID    uint   `json:"examId" validate:"required,gt=0"`
	StudentID uint   `json:"studentId" validate:"required,gt=0"`
	DueDate   string `json:"dueDate" validate:"required"`
}

// BulkAssignRequest assigns one paper to many students.
type BulkAssignRequest struct {
	ExamID     uint   `json:"examId" validate:"required,gt=0"`
	StudentIDs []uint `json:"studentIds" validate:"required,min=1,dive,gt=0"`
	DueDate    string `json:"dueDate" validate:"required"`
}

// AssignmentUpdateRequest is the sparse session update sent while a student
// takes an exam. Nil fields are left untouched.
type AssignmentUpdateRequest struct {
	Status               *string            `json:"status" validate:"omitempty,oneof=scheduled in-progress completed"`
	Progress             *int               `json:"progress" validate:"omitempty,min=0,max=100"`
	TimeRemaining        *int               `json:"timeRemaining" validate:"omitempty,min=0"`
	Answers              models.AnswerSheet `json:"answers" validate:"omitempty,dive,keys,required,endkeys,min=0"`
	CurrentQuestionIndex *int               `json:"currentQuestionIndex" validate:"omitempty,min=0"`
}

// IsEmpty reports whether the update carries no fields at all.
func (r AssignmentUpdateRequest) IsEmpty() bool {
	return r.Status == nil && r.Progress == nil && r.TimeRemaining == nil &&
		r.Answers == nil && r.CurrentQuestionIndex == nil
}

// ExamSummary is the paper information embedded in assignment views.
type ExamSummary struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Subject       string `json:"subject"`
	Category      string `json:"category"`
	Duration      int    `json:"duration"`
	QuestionCount int    `json:"questionCount"`
}

// StudentSummary is the student identity embedded in assignment views.
type StudentSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	CNIC string `json:"cnic,omitempty"`
}

// AssignmentResponse is the serialized representation of an assignment.
type AssignmentResponse struct {
	ID                   uint               `json:"id"`
	ExamID               uint               `json:"examId"`
	Exam                 *ExamSummary       `json:"exam,omitempty"`
	StudentID            uint               `json:"studentId"`
	Student              *StudentSummary    `json:"student,omitempty"`
	Status               string             `json:"status"`
	DueDate              time.Time          `json:"dueDate"`
	AssignedAt           time.Time          `json:"assignedAt"`
	StartedAt            *time.Time         `json:"startedAt,omitempty"`
	CompletedAt          *time.Time         `json:"completedAt,omitempty"`
	TimeRemaining        *int               `json:"timeRemaining,omitempty"`
	Progress             int                `json:"progress"`
	Answers              models.AnswerSheet `json:"answers"`
	CurrentQuestionIndex int                `json:"currentQuestionIndex"`
	AssignedBy           *uint              `json:"assignedBy,omitempty"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// BulkAssignResponse reports the outcome of a bulk assignment.
type BulkAssignResponse struct {
	Created     int                  `json:"created"`
	Skipped     int                  `json:"skipped"`
	Assignments []AssignmentResponse `json:"assignments"`
}

// NewAssignmentResponse converts a model into a DTO. Related paper and
// student are embedded when they were loaded.
func NewAssignmentResponse(a models.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:                   a.ID,
		ExamID:               a.ExamID,
		StudentID:            a.StudentID,
		Status:               a.Status,
		DueDate:              a.DueDate,
		AssignedAt:           a.AssignedAt,
		StartedAt:            a.StartedAt,
		CompletedAt:          a.CompletedAt,
		TimeRemaining:        a.TimeRemaining,
		Progress:             a.Progress,
		Answers:              a.AnswerSheet(),
		CurrentQuestionIndex: a.CurrentQuestionIndex,
		AssignedBy:           a.AssignedByID,
		UpdatedAt:            a.UpdatedAt,
	}

	if a.Exam != nil {
		resp.Exam = &ExamSummary{
			ID:            a.Exam.ID,
			Title:         a.Exam.Title,
			Subject:       a.Exam.Subject,
			Category:      a.Exam.Category,
			Duration:      a.Exam.Duration,
			QuestionCount: a.Exam.QuestionCount(),
		}
	}
	if a.Student != nil {
		resp.Student = &StudentSummary{ID: a.Student.ID, Name: a.Student.Name}
		if a.Student.CNIC != nil {
			resp.Student.CNIC = *a.Student.CNIC
		}
	}

	return resp
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
