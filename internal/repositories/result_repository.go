package repositories

import (
	"context"

	"github.com/prepkart/prepkart-api/internal/models"
)

type ResultRepository interface {
	// Create inserts the result; a duplicate (student_id, exam_code,
	// attempt) triple fails with a unique-constraint violation.
	Create(ctx context.Context, result *models.Result) error

	GetByID(ctx context.Context, id uint) (*models.Result, error)
	GetByStudent(ctx context.Context, studentID string) ([]*models.Result, error)
	GetByStudentAndExam(ctx context.Context, studentID, examCode string) ([]*models.Result, error)

	// MaxAttempt returns the highest attempt ordinal recorded for the
	// (student, exam) pair, zero when none exist.
	MaxAttempt(ctx context.Context, studentID, examCode string) (int, error)

	CountByExam(ctx context.Context, examID uint) (int64, error)
}
