package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question difficulty levels.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Question is a multiple choice item in the question bank.
type Question struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Text          string                      `gorm:"type:text;not null" json:"text"`
	Options       datatypes.JSONSlice[string] `gorm:"not null" json:"options"`
	CorrectOption int                         `gorm:"not null" json:"correctOption"`
	Subject       string                      `gorm:"size:128;not null;index:idx_question_filter" json:"subject"`
	Category      string                      `gorm:"size:128;not null;index:idx_question_filter" json:"category"`
	Difficulty    string                      `gorm:"size:16;not null;default:Medium;index:idx_question_filter" json:"difficulty"`
	IsAIGenerated bool                        `gorm:"not null;default:false" json:"isAIGenerated"`
	CreatedByID   *uint                       `json:"createdBy,omitempty"`
	CreatedAt     time.Time                   `json:"createdAt"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}

// IsCorrect reports whether the selected option index is the correct one.
func (q Question) IsCorrect(selected int) bool {
	return selected == q.CorrectOption
}
