package validator

import (
	"encoding/json"
	"fmt"

	"github.com/prepkart/prepkart-api/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object, including the
// type-specific content. MatchingPairs is required only for matching
// questions; every other type needs an option list.
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.Text == "" {
		return fmt.Errorf("question text is required")
	}
	if question.Marks < 0 {
		return fmt.Errorf("question marks cannot be negative")
	}

	switch question.Type {
	case models.QuestionMatching:
		return v.validateMatchingContent(question.MatchingPairs)
	case models.QuestionRadio, models.QuestionCheckbox, models.QuestionTrueFalse:
		return v.validateOptionsContent(question.Type, question.Options)
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

func (v *QuestionValidator) validateOptionsContent(questionType models.QuestionType, raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("options are required for %s questions", questionType)
	}

	var opts models.QuestionOptions
	if err := json.Unmarshal(raw, &opts); err != nil {
		return fmt.Errorf("invalid options payload: %w", err)
	}

	if len(opts.Choices) < 2 {
		return fmt.Errorf("at least 2 choices are required")
	}
	if len(opts.CorrectAnswers) == 0 {
		return fmt.Errorf("at least one correct answer is required")
	}

	switch questionType {
	case models.QuestionRadio:
		if len(opts.CorrectAnswers) != 1 {
			return fmt.Errorf("radio questions must have exactly one correct answer")
		}
	case models.QuestionTrueFalse:
		if len(opts.Choices) != 2 {
			return fmt.Errorf("truefalse questions must have exactly 2 choices")
		}
		if len(opts.CorrectAnswers) != 1 {
			return fmt.Errorf("truefalse questions must have exactly one correct answer")
		}
	}

	// Every correct answer must be one of the choices.
	choiceSet := make(map[string]bool, len(opts.Choices))
	for _, c := range opts.Choices {
		choiceSet[c] = true
	}
	for _, a := range opts.CorrectAnswers {
		if !choiceSet[a] {
			return fmt.Errorf("correct answer %q is not among the choices", a)
		}
	}

	return nil
}

func (v *QuestionValidator) validateMatchingContent(raw []byte) error {
	if len(raw) == 0 {
		return fmt.Errorf("matching pairs are required for matching questions")
	}

	var content models.MatchingContent
	if err := json.Unmarshal(raw, &content); err != nil {
		return fmt.Errorf("invalid matching pairs payload: %w", err)
	}

	if len(content.LeftItems) == 0 || len(content.RightItems) == 0 {
		return fmt.Errorf("matching questions need left and right items")
	}
	if len(content.CorrectMatches) != len(content.LeftItems) {
		return fmt.Errorf("correct matches must cover every left item")
	}

	rightSet := make(map[string]bool, len(content.RightItems))
	for _, r := range content.RightItems {
		rightSet[r] = true
	}
	for left, right := range content.CorrectMatches {
		found := false
		for _, l := range content.LeftItems {
			if l == left {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("matched item %q is not a left item", left)
		}
		if !rightSet[right] {
			return fmt.Errorf("matched item %q is not a right item", right)
		}
	}

	return nil
}
