package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/prepkart/prepkart-api/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	Status    *models.ExamStatus `json:"status"`
	ProductID *uint              `json:"product_id"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "name", "exam_code"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Status     *models.QuestionStatus  `json:"status"`
	Subject    string                  `json:"subject"`
	Topic      string                  `json:"topic"`
	IsSample   *bool                   `json:"is_sample"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
}

type CouponFilters struct {
	IsActive  *bool  `json:"is_active"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// ===== REPOSITORY FACADE =====

// Repository aggregates the per-entity repositories behind one handle so
// services depend on a single constructor argument.
type Repository interface {
	Exam() ExamRepository
	Question() QuestionRepository
	Result() ResultRepository
	Order() OrderRepository
	Coupon() CouponRepository
}

// ===== ERROR HELPERS =====

// IsNotFoundError reports whether err is the store's record-missing error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique-constraint violation.
// GORM surfaces ErrDuplicatedKey for drivers that translate errors; the raw
// Postgres message is matched as a fallback.
func IsDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}
