package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"gorm.io/datatypes"

	"github.com/prepkart/prepkart-api/internal/events"
	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

// How far the client's self-reported percentage may drift from the
// recomputed one before we log it as suspicious.
const percentageTolerance = 0.5

type SubmitResultRequest struct {
	StudentID string           `json:"student_id" validate:"required"`
	ExamCode  string           `json:"exam_code" validate:"required"`
	Duration  int              `json:"duration" validate:"min=0"`
	Questions []models.Question `json:"questions" validate:"required,min=1"`
	Answers   models.AnswerSet `json:"user_answers" validate:"required"`

	// Client-reported figures, advisory only: the server rescores from the
	// snapshot and stores its own numbers.
	ReportedCorrect    int     `json:"correct"`
	ReportedWrong      int     `json:"wrong"`
	ReportedPercentage float64 `json:"percentage"`
}

type ResultService interface {
	Submit(ctx context.Context, req *SubmitResultRequest) (*models.Result, error)
	GetByID(ctx context.Context, id uint) (*models.Result, error)
	ListByStudent(ctx context.Context, studentID string) ([]*models.Result, error)
}

type resultService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
}

func NewResultService(repo repositories.Repository, publisher events.EventPublisher, logger utils.Logger, v *validator.Validator) ResultService {
	return &resultService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Submit persists one scored attempt. The attempt ordinal is assigned
// server-side; a concurrent submission racing for the same slot loses at
// the unique index and surfaces as ErrDuplicateAttempt.
func (s *resultService) Submit(ctx context.Context, req *SubmitResultRequest) (*models.Result, error) {
	if err := s.validator.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	exam, err := s.repo.Exam().GetByCode(ctx, req.ExamCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}

	questions, err := s.authoritativeQuestions(ctx, exam.ID, req.Questions)
	if err != nil {
		return nil, err
	}

	score := ScoreAttempt(questions, req.Answers)

	if math.Abs(score.Percentage-req.ReportedPercentage) > percentageTolerance {
		s.logger.Warn("Client-reported percentage diverges from recomputed score",
			"student_id", req.StudentID,
			"exam_code", req.ExamCode,
			"reported", req.ReportedPercentage,
			"recomputed", score.Percentage)
	}

	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	snapshotJSON, err := json.Marshal(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question snapshot: %w", err)
	}

	maxAttempt, err := s.repo.Result().MaxAttempt(ctx, req.StudentID, req.ExamCode)
	if err != nil {
		return nil, fmt.Errorf("failed to determine attempt number: %w", err)
	}

	result := &models.Result{
		StudentID:      req.StudentID,
		ExamID:         exam.ID,
		ExamCode:       req.ExamCode,
		Attempt:        maxAttempt + 1,
		TotalQuestions: score.TotalQuestions,
		Attempted:      score.Attempted,
		Correct:        score.Correct,
		Wrong:          score.Wrong,
		Score:          score.Score,
		Percentage:     score.Percentage,
		Passed:         score.Percentage >= float64(exam.PassingScore),
		DurationTaken:  req.Duration,
		UserAnswers:    datatypes.JSON(answersJSON),
		Questions:      datatypes.JSON(snapshotJSON),
	}

	if err := s.repo.Result().Create(ctx, result); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateAttempt
		}
		return nil, fmt.Errorf("failed to save result: %w", err)
	}

	s.logger.Info("Result saved",
		"result_id", result.ID,
		"student_id", result.StudentID,
		"exam_code", result.ExamCode,
		"attempt", result.Attempt,
		"percentage", result.Percentage)

	event := events.NewDomainEvent(events.EventResultSubmitted, events.ResultSubmittedEvent{
		ResultID:   result.ID,
		StudentID:  result.StudentID,
		ExamCode:   result.ExamCode,
		Attempt:    result.Attempt,
		Percentage: result.Percentage,
		Passed:     result.Passed,
	})
	if err := s.publisher.PublishDomainEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish result event", "result_id", result.ID, "error", err)
	}

	return result, nil
}

func (s *resultService) GetByID(ctx context.Context, id uint) (*models.Result, error) {
	result, err := s.repo.Result().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return result, nil
}

func (s *resultService) ListByStudent(ctx context.Context, studentID string) ([]*models.Result, error) {
	results, err := s.repo.Result().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return results, nil
}

// authoritativeQuestions resolves each snapshot question against the stored
// question bank so the correct answers used for scoring are the server's,
// not the client's. A snapshot question deleted from the bank since the
// attempt started is scored from the snapshot itself.
func (s *resultService) authoritativeQuestions(ctx context.Context, examID uint, snapshot []models.Question) ([]*models.Question, error) {
	stored, err := s.repo.Question().GetByExam(ctx, examID, repositories.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load exam questions: %w", err)
	}

	byCode := make(map[string]*models.Question, len(stored))
	for _, q := range stored {
		byCode[q.Code] = q
	}

	out := make([]*models.Question, 0, len(snapshot))
	for i := range snapshot {
		if q, ok := byCode[snapshot[i].Code]; ok {
			out = append(out, q)
			continue
		}
		s.logger.Warn("Snapshot question missing from bank, scoring from snapshot",
			"exam_id", examID, "code", snapshot[i].Code)
		out = append(out, &snapshot[i])
	}
	return out, nil
}
