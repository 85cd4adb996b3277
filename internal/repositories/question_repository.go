package repositories

import (
	"context"

	"github.com/prepkart/prepkart-api/internal/models"
)

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	// GetByExam returns the exam's questions narrowed by filters; an exam
	// with no matching questions yields an empty slice, not an error.
	GetByExam(ctx context.Context, examID uint, filters QuestionFilters) ([]*models.Question, error)

	ExistsByCode(ctx context.Context, examID uint, code string) (bool, error)
	CountByExam(ctx context.Context, examID uint, status *models.QuestionStatus) (int64, error)
}
