package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/prepkart/prepkart-api/internal/events"
	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

func newResultFixture(t *testing.T) (*fakeRepo, *events.MockEventPublisher, ResultService) {
	t.Helper()
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc := NewResultService(repo, publisher, utils.NewSilentLogger(), validator.New())
	return repo, publisher, svc
}

func seedExamWithQuestion(t *testing.T, repo *fakeRepo) *models.Exam {
	t.Helper()
	exam := &models.Exam{
		Name:         "NEET Mock 1",
		ExamCode:     "NEET-M1",
		Status:       models.ExamPublished,
		PassingScore: 40,
	}
	require.NoError(t, repo.exams.Create(context.Background(), exam))

	raw, err := json.Marshal(models.QuestionOptions{
		Choices:        []string{"A", "B", "C"},
		CorrectAnswers: []string{"B"},
	})
	require.NoError(t, err)
	q := &models.Question{
		ExamID:  exam.ID,
		Code:    "Q1",
		Text:    "Pick B",
		Type:    models.QuestionRadio,
		Marks:   1,
		Status:  models.QuestionPublish,
		Options: datatypes.JSON(raw),
	}
	require.NoError(t, repo.questions.Create(context.Background(), q))
	return exam
}

func submitRequest(answer string) *SubmitResultRequest {
	return &SubmitResultRequest{
		StudentID: "student-1",
		ExamCode:  "NEET-M1",
		Duration:  900,
		Questions: []models.Question{{Code: "Q1", Type: models.QuestionRadio, Marks: 1}},
		Answers: models.AnswerSet{
			"Q1": {Selected: []string{answer}},
		},
	}
}

func TestResultSubmit_ScoresAndAssignsAttempt(t *testing.T) {
	repo, publisher, svc := newResultFixture(t)
	seedExamWithQuestion(t, repo)

	result, err := svc.Submit(context.Background(), submitRequest("B"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Attempt)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 100.0, result.Percentage)
	assert.True(t, result.Passed)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventResultSubmitted, published[0].Type)
}

func TestResultSubmit_AttemptsIncrement(t *testing.T) {
	repo, _, svc := newResultFixture(t)
	seedExamWithQuestion(t, repo)

	first, err := svc.Submit(context.Background(), submitRequest("B"))
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), submitRequest("A"))
	require.NoError(t, err)

	assert.Equal(t, 1, first.Attempt)
	assert.Equal(t, 2, second.Attempt)
	assert.False(t, second.Passed)
}

func TestResultSubmit_UnknownExam(t *testing.T) {
	_, _, svc := newResultFixture(t)

	_, err := svc.Submit(context.Background(), submitRequest("B"))
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestResultSubmit_ServerAnswersWin(t *testing.T) {
	repo, _, svc := newResultFixture(t)
	seedExamWithQuestion(t, repo)

	// The snapshot claims A is correct; the stored question says B. The
	// stored answer key decides.
	req := submitRequest("A")
	raw, err := json.Marshal(models.QuestionOptions{
		Choices:        []string{"A", "B", "C"},
		CorrectAnswers: []string{"A"},
	})
	require.NoError(t, err)
	req.Questions[0].Options = datatypes.JSON(raw)
	req.ReportedPercentage = 100

	result, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Correct)
	assert.Equal(t, 0.0, result.Percentage)
}

func TestResultSubmit_DuplicateAttempt(t *testing.T) {
	repo, _, svc := newResultFixture(t)
	seedExamWithQuestion(t, repo)

	// Simulate losing the unique-index race: MaxAttempt reads a stale zero
	// while a row for attempt 1 already exists.
	_, err := svc.Submit(context.Background(), submitRequest("B"))
	require.NoError(t, err)
	stale := 0
	repo.results.staleMax = &stale

	_, err = svc.Submit(context.Background(), submitRequest("B"))
	assert.ErrorIs(t, err, ErrDuplicateAttempt)
}

func TestResultGetByID_NotFound(t *testing.T) {
	_, _, svc := newResultFixture(t)

	_, err := svc.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestResultListByStudent(t *testing.T) {
	repo, _, svc := newResultFixture(t)
	seedExamWithQuestion(t, repo)

	_, err := svc.Submit(context.Background(), submitRequest("B"))
	require.NoError(t, err)

	results, err := svc.ListByStudent(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = svc.ListByStudent(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Empty(t, results)
}
