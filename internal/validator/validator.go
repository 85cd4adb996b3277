package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prepkart/prepkart-api/internal/models"
)

// Validator is the centralized validation entry point: struct tags first,
// then question-content rules where a caller asks for them.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Question returns the question content validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("exam_status", validateExamStatus)
	validate.RegisterValidation("question_status", validateQuestionStatus)
	validate.RegisterValidation("discount_type", validateDiscountType)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	switch models.QuestionType(fl.Field().String()) {
	case models.QuestionRadio, models.QuestionCheckbox, models.QuestionTrueFalse, models.QuestionMatching:
		return true
	}
	return false
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	switch models.DifficultyLevel(fl.Field().String()) {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return true
	}
	return false
}

func validateExamStatus(fl validator.FieldLevel) bool {
	switch models.ExamStatus(fl.Field().String()) {
	case models.ExamUnpublished, models.ExamPublished:
		return true
	}
	return false
}

func validateQuestionStatus(fl validator.FieldLevel) bool {
	switch models.QuestionStatus(fl.Field().String()) {
	case models.QuestionPublish, models.QuestionDraft:
		return true
	}
	return false
}

func validateDiscountType(fl validator.FieldLevel) bool {
	switch models.DiscountType(fl.Field().String()) {
	case models.DiscountPercentage, models.DiscountFixedINR, models.DiscountFixedUSD:
		return true
	}
	return false
}
