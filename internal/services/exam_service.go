package services

import (
	"context"
	"fmt"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

type ExamService interface {
	Create(ctx context.Context, exam *models.Exam) (*models.Exam, error)
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	GetByCode(ctx context.Context, code string) (*models.Exam, error)
	Update(ctx context.Context, id uint, exam *models.Exam) (*models.Exam, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error)
	Publish(ctx context.Context, id uint) (*models.Exam, error)
}

type examService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

func NewExamService(repo repositories.Repository, logger utils.Logger, v *validator.Validator) ExamService {
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *examService) Create(ctx context.Context, exam *models.Exam) (*models.Exam, error) {
	if err := s.validator.ValidateStruct(exam); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	exists, err := s.repo.Exam().ExistsByCode(ctx, exam.ExamCode)
	if err != nil {
		return nil, fmt.Errorf("failed to check exam code: %w", err)
	}
	if exists {
		return nil, ErrExamDuplicateCode
	}

	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrExamDuplicateCode
		}
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("Exam created", "exam_id", exam.ID, "exam_code", exam.ExamCode)
	return exam, nil
}

func (s *examService) GetByID(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	published := models.QuestionPublish
	count, err := s.repo.Question().CountByExam(ctx, id, &published)
	if err == nil {
		exam.PublishedQuestions = int(count)
	}

	return exam, nil
}

func (s *examService) GetByCode(ctx context.Context, code string) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByCode(ctx, code)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func (s *examService) Update(ctx context.Context, id uint, update *models.Exam) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	// The code is immutable once results reference it; everything else is
	// editable by an administrator.
	update.ID = exam.ID
	update.ExamCode = exam.ExamCode
	update.CreatedAt = exam.CreatedAt

	if err := s.validator.ValidateStruct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.repo.Exam().Update(ctx, update); err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	s.logger.Info("Exam updated", "exam_id", update.ID)
	return update, nil
}

// Delete refuses while results reference the exam and otherwise cascades
// the exam's questions in the same transaction.
func (s *examService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Exam().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return fmt.Errorf("failed to get exam: %w", err)
	}

	hasResults, err := s.repo.Exam().HasResults(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check exam results: %w", err)
	}
	if hasResults {
		return ErrExamNotDeletable
	}

	if err := s.repo.Exam().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info("Exam deleted", "exam_id", id)
	return nil
}

func (s *examService) List(ctx context.Context, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	exams, total, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, total, nil
}

func (s *examService) Publish(ctx context.Context, id uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	published := models.QuestionPublish
	count, err := s.repo.Question().CountByExam(ctx, id, &published)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	if count == 0 {
		return nil, NewBusinessRuleError("exam_publish", "exam has no published questions", map[string]interface{}{
			"exam_id": id,
		})
	}

	exam.Status = models.ExamPublished
	if err := s.repo.Exam().Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to publish exam: %w", err)
	}

	s.logger.Info("Exam published", "exam_id", id)
	return exam, nil
}
