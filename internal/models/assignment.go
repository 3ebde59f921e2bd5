package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assignment statuses. A status never moves backwards.
const (
	AssignmentStatusScheduled  = "scheduled"
	AssignmentStatusInProgress = "in-progress"
	AssignmentStatusCompleted  = "completed"
)

// AnswerSheet maps a question identifier to the selected option index.
type AnswerSheet map[string]int

// Assignment binds one exam paper to one student. The composite unique index
// guarantees at most one assignment per (exam, student) pair.
type Assignment struct {
	ID                   uint                            `gorm:"primaryKey" json:"id"`
	ExamID               uint                            `gorm:"not null;uniqueIndex:idx_assignment_exam_student" json:"examId"`
	StudentID            uint                            `gorm:"not null;uniqueIndex:idx_assignment_exam_student;index" json:"studentId"`
	Status               string                          `gorm:"size:16;not null;default:scheduled" json:"status"`
	DueDate              time.Time                       `gorm:"not null" json:"dueDate"`
	AssignedAt           time.Time                       `gorm:"not null;index" json:"assignedAt"`
	StartedAt            *time.Time                      `json:"startedAt,omitempty"`
	CompletedAt          *time.Time                      `json:"completedAt,omitempty"`
	TimeRemaining        *int                            `json:"timeRemaining,omitempty"`
	Progress             int                             `gorm:"not null;default:0" json:"progress"`
	Answers              datatypes.JSONType[AnswerSheet] `json:"answers"`
	CurrentQuestionIndex int                             `gorm:"not null;default:0" json:"currentQuestionIndex"`
	AssignedByID         *uint                           `json:"assignedBy,omitempty"`
	UpdatedAt            time.Time                       `json:"updatedAt"`
	Exam                 *ExamPaper                      `gorm:"foreignKey:ExamID" json:"exam,omitempty"`
	Student              *User                           `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

var assignmentStatusRank = map[string]int{
	AssignmentStatusScheduled:  0,
	AssignmentStatusInProgress: 1,
	AssignmentStatusCompleted:  2,
}

// IsValidAssignmentStatus reports whether status is a known lifecycle state.
func IsValidAssignmentStatus(status string) bool {
	_, ok := assignmentStatusRank[status]
	return ok
}

// CanTransitionTo reports whether moving to status keeps the lifecycle monotonic.
func (a Assignment) CanTransitionTo(status string) bool {
	next, ok := assignmentStatusRank[status]
	if !ok {
		return false
	}
	return next >= assignmentStatusRank[a.Status]
}

// ApplyStatus sets the status and stamps startedAt/completedAt the first time
// the assignment enters in-progress or completed. Existing stamps are kept.
func (a *Assignment) ApplyStatus(status string, now time.Time) {
	a.Status = status
	switch status {
	case AssignmentStatusInProgress:
		if a.StartedAt == nil {
			stamp := now
			a.StartedAt = &stamp
		}
	case AssignmentStatusCompleted:
		if a.CompletedAt == nil {
			stamp := now
			a.CompletedAt = &stamp
		}
	}
}

// AnswerSheet returns the stored answers, never nil.
func (a Assignment) AnswerSheet() AnswerSheet {
	sheet := a.Answers.Data()
	if sheet == nil {
		return AnswerSheet{}
	}
	return sheet
}

// IsCompleted reports whether the student has finished the exam.
func (a Assignment) IsCompleted() bool {
	return a.Status == AssignmentStatusCompleted
}
