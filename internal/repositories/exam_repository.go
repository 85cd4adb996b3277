package repositories

import (
	"context"

	"github.com/prepkart/prepkart-api/internal/models"
)

type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetByCode(ctx context.Context, code string) (*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error

	// Delete removes the exam and cascades to its questions in one
	// transaction. Callers must refuse the delete while results exist.
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	HasResults(ctx context.Context, id uint) (bool, error)
}
