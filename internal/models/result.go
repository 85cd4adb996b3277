package models

import (
	"time"

	"gorm.io/datatypes"
)

// Result is one scored attempt, immutable once created. The composite
// unique index on (student_id, exam_code, attempt) rejects a duplicate
// submission for the same attempt slot at the store.
type Result struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;size:100;index;uniqueIndex:idx_results_attempt" validate:"required"`
	ExamID    uint   `json:"exam_id" gorm:"not null;index"`
	ExamCode  string `json:"exam_code" gorm:"not null;size:50;uniqueIndex:idx_results_attempt" validate:"required"`
	Attempt   int    `json:"attempt" gorm:"not null;uniqueIndex:idx_results_attempt" validate:"min=1"`

	TotalQuestions int     `json:"total_questions" gorm:"not null" validate:"min=0"`
	Attempted      int     `json:"attempted" gorm:"not null" validate:"min=0"`
	Correct        int     `json:"correct" gorm:"not null" validate:"min=0"`
	Wrong          int     `json:"wrong" gorm:"not null" validate:"min=0"`
	Score          float64 `json:"score" gorm:"not null"`
	Percentage     float64 `json:"percentage" gorm:"not null" validate:"min=0,max=100"`
	Passed         bool    `json:"passed" gorm:"not null"`

	// Seconds spent on the attempt.
	DurationTaken int `json:"duration_taken" gorm:"default:0" validate:"min=0"`

	// UserAnswers is the raw submission keyed by question code; Questions is
	// the snapshot of what the student was shown, kept for audit and review.
	UserAnswers datatypes.JSON `json:"user_answers" gorm:"type:jsonb"`
	Questions   datatypes.JSON `json:"questions" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
}

func (Result) TableName() string {
	return "results"
}
