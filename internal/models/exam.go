package models

import (
	"time"

	"gorm.io/gorm"
)

type ExamStatus string

const (
	ExamUnpublished ExamStatus = "unpublished"
	ExamPublished   ExamStatus = "published"
)

// Exam is one sellable test definition. Questions and Results reference it
// by ID and by its unique code respectively.
type Exam struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	Name     string     `json:"name" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	ExamCode string     `json:"exam_code" gorm:"not null;size:50;uniqueIndex" validate:"required,min=1,max=50"`
	Status   ExamStatus `json:"status" gorm:"default:unpublished;index" validate:"omitempty,exam_status"`

	// Duration in minutes; SampleDuration bounds the free preview.
	Duration       int `json:"duration" gorm:"not null" validate:"required,min=5,max=300"`
	SampleDuration int `json:"sample_duration" gorm:"default:10" validate:"min=0,max=60"`

	TotalQuestions   int     `json:"total_questions" gorm:"default:0" validate:"min=0"`
	MarksPerQuestion float64 `json:"marks_per_question" gorm:"default:1" validate:"min=0"`
	PassingScore     int     `json:"passing_score" gorm:"not null" validate:"required,min=0,max=100"`

	// Pricing, in the two currencies the storefront quotes.
	PriceINR float64 `json:"price_inr" gorm:"default:0" validate:"min=0"`
	PriceUSD float64 `json:"price_usd" gorm:"default:0" validate:"min=0"`

	// Back-reference to the catalog product this exam belongs to.
	ProductID *uint `json:"product_id" gorm:"index"`

	CreatedBy string         `json:"created_by" gorm:"size:100;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:ExamID"`

	// Computed fields (not stored)
	PublishedQuestions int `json:"published_questions,omitempty" gorm:"-"`
	ResultCount        int `json:"result_count,omitempty" gorm:"-"`
}

func (Exam) TableName() string {
	return "exams"
}
