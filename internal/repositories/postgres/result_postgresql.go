package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) Create(ctx context.Context, result *models.Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	var result models.Result
	if err := r.db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) GetByStudent(ctx context.Context, studentID string) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at desc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ResultPostgreSQL) GetByStudentAndExam(ctx context.Context, studentID, examCode string) ([]*models.Result, error) {
	var results []*models.Result
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND exam_code = ?", studentID, examCode).
		Order("attempt asc").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ResultPostgreSQL) MaxAttempt(ctx context.Context, studentID, examCode string) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Result{}).
		Where("student_id = ? AND exam_code = ?", studentID, examCode).
		Select("COALESCE(MAX(attempt), 0)").
		Scan(&max).Error
	return max, err
}

func (r *ResultPostgreSQL) CountByExam(ctx context.Context, examID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Result{}).
		Where("exam_id = ?", examID).
		Count(&count).Error
	return count, err
}
