package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

func newExamFixture(t *testing.T) (*fakeRepo, ExamService) {
	t.Helper()
	repo := newFakeRepo()
	svc := NewExamService(repo, utils.NewSilentLogger(), validator.New())
	return repo, svc
}

func validExam(code string) *models.Exam {
	return &models.Exam{
		Name:         "JEE Main Mock",
		ExamCode:     code,
		Duration:     180,
		PassingScore: 35,
	}
}

func TestExamCreate(t *testing.T) {
	_, svc := newExamFixture(t)

	exam, err := svc.Create(context.Background(), validExam("JEE-M1"))
	require.NoError(t, err)
	assert.NotZero(t, exam.ID)
}

func TestExamCreate_DuplicateCode(t *testing.T) {
	_, svc := newExamFixture(t)

	_, err := svc.Create(context.Background(), validExam("JEE-M1"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), validExam("JEE-M1"))
	assert.ErrorIs(t, err, ErrExamDuplicateCode)
}

func TestExamCreate_ValidationFailure(t *testing.T) {
	_, svc := newExamFixture(t)

	exam := validExam("JEE-M1")
	exam.Duration = 1 // below the 5-minute floor

	_, err := svc.Create(context.Background(), exam)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestExamUpdate_CodeImmutable(t *testing.T) {
	_, svc := newExamFixture(t)

	exam, err := svc.Create(context.Background(), validExam("JEE-M1"))
	require.NoError(t, err)

	update := validExam("CHANGED")
	update.Name = "JEE Main Mock v2"
	updated, err := svc.Update(context.Background(), exam.ID, update)
	require.NoError(t, err)

	assert.Equal(t, "JEE-M1", updated.ExamCode)
	assert.Equal(t, "JEE Main Mock v2", updated.Name)
}

func TestExamDelete_RefusedWhileResultsExist(t *testing.T) {
	repo, svc := newExamFixture(t)

	exam, err := svc.Create(context.Background(), validExam("JEE-M1"))
	require.NoError(t, err)
	repo.exams.hasResults = map[uint]bool{exam.ID: true}

	err = svc.Delete(context.Background(), exam.ID)
	assert.ErrorIs(t, err, ErrExamNotDeletable)

	_, getErr := svc.GetByID(context.Background(), exam.ID)
	assert.NoError(t, getErr)
}

func TestExamDelete(t *testing.T) {
	_, svc := newExamFixture(t)

	exam, err := svc.Create(context.Background(), validExam("JEE-M1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), exam.ID))

	_, err = svc.GetByID(context.Background(), exam.ID)
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestExamPublish_RequiresPublishedQuestion(t *testing.T) {
	repo, svc := newExamFixture(t)

	exam, err := svc.Create(context.Background(), validExam("JEE-M1"))
	require.NoError(t, err)

	_, err = svc.Publish(context.Background(), exam.ID)
	assert.True(t, IsBusinessRule(err), "publishing an empty exam must fail")

	require.NoError(t, repo.questions.Create(context.Background(), &models.Question{
		ExamID: exam.ID,
		Code:   "Q1",
		Type:   models.QuestionRadio,
		Status: models.QuestionPublish,
	}))

	published, err := svc.Publish(context.Background(), exam.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExamPublished, published.Status)
}
