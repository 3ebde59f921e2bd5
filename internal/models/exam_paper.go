package models

import (
	"time"

	"gorm.io/datatypes"
)

// Paper provenance values.
const (
	ProvenanceExplicit  = "explicit"
	ProvenanceGenerated = "generated"
)

// Duration bounds for a paper, in minutes.
const (
	DefaultPaperDuration = 60
	MinPaperDuration     = 5
	MaxPaperDuration     = 240
)

// ExamPaper is an ordered, fixed set of question references. The order of
// QuestionIDs is the order students see the questions in.
type ExamPaper struct {
	ID            uint                      `gorm:"primaryKey" json:"id"`
	Title         string                    `gorm:"size:255;not null" json:"title"`
	Subject       string                    `gorm:"size:128;not null;index" json:"subject"`
	Category      string                    `gorm:"size:128;not null;index" json:"category"`
	QuestionIDs   datatypes.JSONSlice[uint] `gorm:"column:question_ids;not null" json:"questions"`
	Duration      int                       `gorm:"not null;default:60" json:"duration"`
	Provenance    string                    `gorm:"size:16;not null;default:explicit" json:"provenance"`
	IsAIGenerated bool                      `gorm:"not null;default:false" json:"isAIGenerated"`
	CreatedByID   *uint                     `json:"createdBy,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	UpdatedAt     time.Time                 `json:"updatedAt"`
}

// QuestionCount returns the number of questions on the paper.
func (p ExamPaper) QuestionCount() int {
	return len(p.QuestionIDs)
}
