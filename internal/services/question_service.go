package services

import (
	"context"
	"fmt"
	"time"

	"github.com/prepkart/prepkart-api/internal/cache"
	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

const publishedQuestionsTTL = 5 * time.Minute

type QuestionService interface {
	Create(ctx context.Context, question *models.Question) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, id uint, question *models.Question) (*models.Question, error)
	Delete(ctx context.Context, id uint) error

	// GetPublishedByExam returns the exam's published questions; an empty
	// list is a valid response, not an error.
	GetPublishedByExam(ctx context.Context, examID uint) ([]*models.Question, error)

	// GetSampleByExam returns the published sample set and fails with
	// ErrNoSampleQuestions when it is empty.
	GetSampleByExam(ctx context.Context, examID uint) ([]*models.Question, error)
}

type questionService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    utils.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, cacheService cache.CacheService, logger utils.Logger, v *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: v,
	}
}

func (s *questionService) Create(ctx context.Context, question *models.Question) (*models.Question, error) {
	if err := s.validator.ValidateStruct(question); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuestionInvalidContent, err)
	}

	if _, err := s.repo.Exam().GetByID(ctx, question.ExamID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}

	exists, err := s.repo.Question().ExistsByCode(ctx, question.ExamID, question.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check question code: %w", err)
	}
	if exists {
		return nil, ErrQuestionDuplicateCode
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrQuestionDuplicateCode
		}
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidateExamCache(ctx, question.ExamID)
	s.logger.Info("Question created", "question_id", question.ID, "exam_id", question.ExamID, "code", question.Code)
	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, id uint, update *models.Question) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	update.ID = question.ID
	update.ExamID = question.ExamID
	update.CreatedAt = question.CreatedAt
	if update.Code == "" {
		update.Code = question.Code
	}

	if err := s.validator.ValidateStruct(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	if err := s.validator.Question().ValidateQuestion(update); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuestionInvalidContent, err)
	}

	if update.Code != question.Code {
		exists, err := s.repo.Question().ExistsByCode(ctx, question.ExamID, update.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to check question code: %w", err)
		}
		if exists {
			return nil, ErrQuestionDuplicateCode
		}
	}

	if err := s.repo.Question().Update(ctx, update); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrQuestionDuplicateCode
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.invalidateExamCache(ctx, question.ExamID)
	s.logger.Info("Question updated", "question_id", id)
	return update, nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.invalidateExamCache(ctx, question.ExamID)
	s.logger.Info("Question deleted", "question_id", id)
	return nil
}

func (s *questionService) GetPublishedByExam(ctx context.Context, examID uint) ([]*models.Question, error) {
	cacheKey := fmt.Sprintf("questions:exam:%d:published", examID)

	var cached []*models.Question
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return cached, nil
	}

	published := models.QuestionPublish
	questions, err := s.repo.Question().GetByExam(ctx, examID, repositories.QuestionFilters{
		Status: &published,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	if err := s.cache.Set(ctx, cacheKey, questions, publishedQuestionsTTL); err != nil {
		s.logger.Debug("Question cache write failed", "exam_id", examID, "error", err)
	}

	return questions, nil
}

func (s *questionService) GetSampleByExam(ctx context.Context, examID uint) ([]*models.Question, error) {
	published := models.QuestionPublish
	isSample := true
	questions, err := s.repo.Question().GetByExam(ctx, examID, repositories.QuestionFilters{
		Status:   &published,
		IsSample: &isSample,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sample questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoSampleQuestions
	}
	return questions, nil
}

func (s *questionService) invalidateExamCache(ctx context.Context, examID uint) {
	pattern := fmt.Sprintf("questions:exam:%d:*", examID)
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Debug("Question cache invalidation failed", "exam_id", examID, "error", err)
	}
}
