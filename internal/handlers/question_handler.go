package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/services"
	"github.com/prepkart/prepkart-api/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
	importExport    services.ImportExportService
}

func NewQuestionHandler(
	questionService services.QuestionService,
	importExport services.ImportExportService,
	logger utils.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
		importExport:    importExport,
	}
}

// CreateQuestion creates a new question
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	h.LogRequest(c, "Creating question")

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	created, err := h.questionService.Create(c.Request.Context(), &question)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetQuestion retrieves a question by ID
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// GetExamQuestions returns the published questions of an exam. An exam
// with no published questions yields an empty list, not a 404.
func (h *QuestionHandler) GetExamQuestions(c *gin.Context) {
	examID := parseIDParam(c, "examId")
	if examID == 0 {
		return
	}

	questions, err := h.questionService.GetPublishedByExam(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if questions == nil {
		questions = []*models.Question{}
	}

	c.JSON(http.StatusOK, questions)
}

// GetSampleQuestions returns the published sample set of an exam; an empty
// sample set is a 404.
func (h *QuestionHandler) GetSampleQuestions(c *gin.Context) {
	examID := parseIDParam(c, "examId")
	if examID == 0 {
		return
	}

	questions, err := h.questionService.GetSampleByExam(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// UpdateQuestion updates an existing question
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var question models.Question
	if err := c.ShouldBindJSON(&question); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	updated, err := h.questionService.Update(c.Request.Context(), id, &question)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteQuestion deletes a question
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.questionService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// ImportQuestions bulk-imports questions for an exam from an uploaded
// CSV or XLSX file
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	examID := parseIDParam(c, "examId")
	if examID == 0 {
		return
	}
	h.LogRequest(c, "Importing questions", "exam_id", examID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing file upload",
			Details: err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Could not read uploaded file",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	summary, err := h.importExport.ImportQuestionsFromFile(
		c.Request.Context(), examID, file, fileHeader.Filename, c.GetHeader("X-Admin-User"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Import finished",
		Data:    summary,
	})
}

// ExportQuestions streams an exam's questions as an XLSX workbook
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	examID := parseIDParam(c, "examId")
	if examID == 0 {
		return
	}

	data, err := h.importExport.ExportQuestionsToExcel(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("exam-%d-questions.xlsx", examID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *QuestionHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var validationError *services.ValidationError
	if errors.As(err, &validationError) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationError,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrQuestionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Question not found",
		})
	case errors.Is(err, services.ErrExamNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exam not found",
		})
	case errors.Is(err, services.ErrNoSampleQuestions):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No sample questions available for this exam",
		})
	case errors.Is(err, services.ErrQuestionDuplicateCode):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Question code already exists in this exam",
		})
	case errors.Is(err, services.ErrQuestionInvalidContent):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid question content for type",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
