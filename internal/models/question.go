package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionRadio     QuestionType = "radio"
	QuestionCheckbox  QuestionType = "checkbox"
	QuestionTrueFalse QuestionType = "truefalse"
	QuestionMatching  QuestionType = "matching"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

type QuestionStatus string

const (
	QuestionPublish QuestionStatus = "publish"
	QuestionDraft   QuestionStatus = "draft"
)

// Question belongs to exactly one exam. Code is unique per exam; the
// composite index backs that invariant. Options holds the selectable
// choices for radio/checkbox/truefalse, MatchingPairs the left/right
// items and the correct mapping when Type is matching.
type Question struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	ExamID uint   `json:"exam_id" gorm:"not null;index;uniqueIndex:idx_questions_exam_code" validate:"required"`
	Code   string `json:"code" gorm:"not null;size:50;uniqueIndex:idx_questions_exam_code" validate:"required,min=1,max=50"`

	Text     string       `json:"text" gorm:"type:text;not null" validate:"required"`
	ImageURL string       `json:"image_url" gorm:"size:500" validate:"omitempty,url"`
	Type     QuestionType `json:"type" gorm:"not null;index" validate:"required,question_type"`

	Difficulty    DifficultyLevel `json:"difficulty" gorm:"default:medium" validate:"omitempty,difficulty_level"`
	Marks         float64         `json:"marks" gorm:"default:1" validate:"min=0,max=100"`
	NegativeMarks float64         `json:"negative_marks" gorm:"default:0" validate:"min=0,max=100"`

	Subject string         `json:"subject" gorm:"size:100;index"`
	Topic   string         `json:"topic" gorm:"size:100;index"`
	Tags    datatypes.JSON `json:"tags" gorm:"type:jsonb"` // []string

	// Options holds QuestionOptions; MatchingPairs holds MatchingContent and
	// is required only when Type is matching.
	Options       datatypes.JSON `json:"options" gorm:"type:jsonb"`
	MatchingPairs datatypes.JSON `json:"matching_pairs" gorm:"type:jsonb"`

	IsSample bool           `json:"is_sample" gorm:"default:false;index"`
	Status   QuestionStatus `json:"status" gorm:"default:draft;index" validate:"omitempty,question_status"`

	CreatedBy string         `json:"created_by" gorm:"size:100"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Exam Exam `json:"-" gorm:"foreignKey:ExamID"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionOptions is the JSON shape stored in Question.Options.
type QuestionOptions struct {
	Choices        []string `json:"choices"`
	CorrectAnswers []string `json:"correct_answers"`
}

// MatchingContent is the JSON shape stored in Question.MatchingPairs.
// CorrectMatches maps each left item to its right item.
type MatchingContent struct {
	LeftItems      []string          `json:"left_items"`
	RightItems     []string          `json:"right_items"`
	CorrectMatches map[string]string `json:"correct_matches"`
}
