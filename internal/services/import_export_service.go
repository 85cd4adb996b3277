package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/prepkart/prepkart-api/internal/models"
	"github.com/prepkart/prepkart-api/internal/repositories"
	"github.com/prepkart/prepkart-api/internal/utils"
	"github.com/prepkart/prepkart-api/internal/validator"
)

// Column layout shared by CSV and XLSX import/export. List-valued cells use
// a pipe separator; matching pairs use left=right entries.
var questionColumns = []string{
	"code", "type", "text", "difficulty", "marks", "negative_marks",
	"subject", "topic", "choices", "correct_answers",
	"left_items", "right_items", "correct_matches", "is_sample", "status",
}

// ImportExportService handles bulk question transfer for administrators.
type ImportExportService interface {
	ImportQuestionsFromFile(ctx context.Context, examID uint, file multipart.File, filename string, createdBy string) (*models.ImportSummary, error)
	ImportQuestionsFromCSV(ctx context.Context, examID uint, reader io.Reader, createdBy string) (*models.ImportSummary, error)
	ImportQuestionsFromExcel(ctx context.Context, examID uint, reader io.Reader, createdBy string) (*models.ImportSummary, error)
	ExportQuestionsToExcel(ctx context.Context, examID uint) ([]byte, error)
}

type importExportService struct {
	repo      repositories.Repository
	logger    utils.Logger
	validator *validator.Validator
}

func NewImportExportService(repo repositories.Repository, logger utils.Logger, v *validator.Validator) ImportExportService {
	return &importExportService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *importExportService) ImportQuestionsFromFile(ctx context.Context, examID uint, file multipart.File, filename string, createdBy string) (*models.ImportSummary, error) {
	s.logger.Info("Starting question import", "exam_id", examID, "filename", filename)

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return s.ImportQuestionsFromCSV(ctx, examID, file, createdBy)
	case ".xlsx", ".xls":
		return s.ImportQuestionsFromExcel(ctx, examID, file, createdBy)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *importExportService) ImportQuestionsFromCSV(ctx context.Context, examID uint, reader io.Reader, createdBy string) (*models.ImportSummary, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return s.importRows(ctx, examID, records, createdBy)
}

func (s *importExportService) ImportQuestionsFromExcel(ctx context.Context, examID uint, reader io.Reader, createdBy string) (*models.ImportSummary, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return s.importRows(ctx, examID, rows, createdBy)
}

func (s *importExportService) importRows(ctx context.Context, examID uint, rows [][]string, createdBy string) (*models.ImportSummary, error) {
	if len(rows) < 2 {
		return nil, NewValidationError("file", "need a header row and at least one data row", len(rows))
	}

	if _, err := s.repo.Exam().GetByID(ctx, examID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to load exam: %w", err)
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range []string{"code", "type", "text"} {
		if _, ok := headerMap[col]; !ok {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	summary := &models.ImportSummary{TotalRows: len(rows) - 1}
	var questions []*models.Question

	for rowIndex, record := range rows[1:] {
		rowNum := rowIndex + 2
		question, rowErrs := s.parseRow(examID, record, headerMap, rowNum, createdBy)
		if len(rowErrs) > 0 {
			summary.Errors = append(summary.Errors, rowErrs...)
			summary.ErrorCount++
			continue
		}
		questions = append(questions, question)
	}

	if len(questions) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, questions); err != nil {
			return nil, fmt.Errorf("failed to save imported questions: %w", err)
		}
		for _, q := range questions {
			summary.CreatedIDs = append(summary.CreatedIDs, q.ID)
		}
		summary.SuccessCount = len(questions)
	}

	s.logger.Info("Question import finished",
		"exam_id", examID,
		"total", summary.TotalRows,
		"imported", summary.SuccessCount,
		"errors", summary.ErrorCount)

	return summary, nil
}

func (s *importExportService) parseRow(examID uint, record []string, headerMap map[string]int, rowNum int, createdBy string) (*models.Question, []models.ImportValidationError) {
	var errs []models.ImportValidationError

	cell := func(name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	addErr := func(column, message, value string) {
		errs = append(errs, models.ImportValidationError{
			Row: rowNum, Column: column, Message: message, Value: value,
		})
	}

	question := &models.Question{
		ExamID:    examID,
		Code:      cell("code"),
		Text:      cell("text"),
		Type:      models.QuestionType(strings.ToLower(cell("type"))),
		Subject:   cell("subject"),
		Topic:     cell("topic"),
		Marks:     1,
		Status:    models.QuestionDraft,
		CreatedBy: createdBy,
	}

	if question.Code == "" {
		addErr("code", "is required", "")
	}
	if question.Text == "" {
		addErr("text", "is required", "")
	}

	if d := cell("difficulty"); d != "" {
		question.Difficulty = models.DifficultyLevel(strings.ToLower(d))
	}
	if m := cell("marks"); m != "" {
		marks, err := strconv.ParseFloat(m, 64)
		if err != nil {
			addErr("marks", "must be a number", m)
		} else {
			question.Marks = marks
		}
	}
	if nm := cell("negative_marks"); nm != "" {
		neg, err := strconv.ParseFloat(nm, 64)
		if err != nil {
			addErr("negative_marks", "must be a number", nm)
		} else {
			question.NegativeMarks = neg
		}
	}
	if sample := cell("is_sample"); sample != "" {
		question.IsSample = sample == "true" || sample == "1" || sample == "yes"
	}
	if status := cell("status"); status != "" {
		question.Status = models.QuestionStatus(strings.ToLower(status))
	}

	switch question.Type {
	case models.QuestionMatching:
		content := models.MatchingContent{
			LeftItems:      splitList(cell("left_items")),
			RightItems:     splitList(cell("right_items")),
			CorrectMatches: parsePairs(cell("correct_matches")),
		}
		raw, err := json.Marshal(content)
		if err != nil {
			addErr("correct_matches", "could not encode matching pairs", cell("correct_matches"))
		} else {
			question.MatchingPairs = datatypes.JSON(raw)
		}
	case models.QuestionRadio, models.QuestionCheckbox, models.QuestionTrueFalse:
		opts := models.QuestionOptions{
			Choices:        splitList(cell("choices")),
			CorrectAnswers: splitList(cell("correct_answers")),
		}
		raw, err := json.Marshal(opts)
		if err != nil {
			addErr("choices", "could not encode options", cell("choices"))
		} else {
			question.Options = datatypes.JSON(raw)
		}
	default:
		addErr("type", "must be radio, checkbox, truefalse, or matching", string(question.Type))
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		addErr("row", err.Error(), question.Code)
		return nil, errs
	}

	return question, nil
}

func (s *importExportService) ExportQuestionsToExcel(ctx context.Context, examID uint) ([]byte, error) {
	questions, err := s.repo.Question().GetByExam(ctx, examID, repositories.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, name := range questionColumns {
		cellRef, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cellRef, name); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, q := range questions {
		values := exportRow(q)
		for col, v := range values {
			cellRef, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cellRef, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", rowIdx+2, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func exportRow(q *models.Question) []string {
	var choices, correct, left, right, matches string

	switch q.Type {
	case models.QuestionMatching:
		var content models.MatchingContent
		if err := json.Unmarshal(q.MatchingPairs, &content); err == nil {
			left = joinList(content.LeftItems)
			right = joinList(content.RightItems)
			matches = joinPairs(content.CorrectMatches)
		}
	default:
		var opts models.QuestionOptions
		if err := json.Unmarshal(q.Options, &opts); err == nil {
			choices = joinList(opts.Choices)
			correct = joinList(opts.CorrectAnswers)
		}
	}

	return []string{
		q.Code, string(q.Type), q.Text, string(q.Difficulty),
		strconv.FormatFloat(q.Marks, 'f', -1, 64),
		strconv.FormatFloat(q.NegativeMarks, 'f', -1, 64),
		q.Subject, q.Topic, choices, correct, left, right, matches,
		strconv.FormatBool(q.IsSample), string(q.Status),
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func joinList(items []string) string {
	return strings.Join(items, "|")
}

func parsePairs(raw string) map[string]string {
	pairs := make(map[string]string)
	for _, entry := range splitList(raw) {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) == 2 {
			pairs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return pairs
}

func joinPairs(pairs map[string]string) string {
	entries := make([]string, 0, len(pairs))
	for left, right := range pairs {
		entries = append(entries, left+"="+right)
	}
	return strings.Join(entries, "|")
}
