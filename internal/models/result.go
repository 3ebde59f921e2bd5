package models

import (
	"time"

	"gorm.io/datatypes"
)

// Result is the immutable graded record of a completed assignment. Like
// assignments, there is at most one result per (exam, student) pair.
type Result struct {
	ID             uint                            `gorm:"primaryKey" json:"id"`
	StudentID      uint                            `gorm:"not null;uniqueIndex:idx_result_exam_student;index" json:"studentId"`
	ExamID         uint                            `gorm:"not null;uniqueIndex:idx_result_exam_student" json:"examId"`
	AssignmentID   *uint                           `json:"assignmentId,omitempty"`
	Answers        datatypes.JSONType[AnswerSheet] `json:"answers"`
	Score          float64                         `gorm:"not null" json:"score"`
	TotalQuestions int                             `gorm:"not null" json:"totalQuestions"`
	CorrectAnswers int                             `gorm:"not null" json:"correctAnswers"`
	SubmittedAt    time.Time                       `gorm:"not null" json:"submittedAt"`
	TimeTaken      *int                            `json:"timeTaken,omitempty"`
}
