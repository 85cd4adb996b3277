package services

import (
	"errors"
	"fmt"

	apperrors "github.com/prepkart/prepkart-api/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")
	ErrUpstreamFailure  = errors.New("upstream call failed")

	// Exam specific errors
	ErrExamNotFound      = errors.New("exam not found")
	ErrExamNotDeletable  = errors.New("exam cannot be deleted - has existing results")
	ErrExamDuplicateCode = errors.New("exam code already exists")

	// Question specific errors
	ErrQuestionNotFound       = errors.New("question not found")
	ErrQuestionDuplicateCode  = errors.New("question code already exists for this exam")
	ErrQuestionInvalidContent = errors.New("invalid question content for type")
	ErrNoSampleQuestions      = errors.New("no published sample questions for this exam")

	// Result specific errors
	ErrResultNotFound   = errors.New("result not found")
	ErrDuplicateAttempt = errors.New("attempt already recorded for this student and exam")

	// Order specific errors
	ErrOrderNotFound = errors.New("order not found")

	// Coupon specific errors
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponNotYetActive = errors.New("coupon is not yet active")
	ErrCouponExpired      = errors.New("coupon has expired")
	ErrCouponExhausted    = errors.New("coupon usage limit reached")
	ErrCouponInactive     = errors.New("coupon is inactive")

	// Cron specific errors
	ErrBadCronSecret = errors.New("invalid or missing cron secret")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrCouponNotFound) ||
		errors.Is(err, ErrNoSampleQuestions)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrBadCronSecret)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrDuplicateAttempt) ||
		errors.Is(err, ErrExamNotDeletable) ||
		errors.Is(err, ErrExamDuplicateCode) ||
		errors.Is(err, ErrQuestionDuplicateCode)
}

// IsCouponRejection checks if error is a coupon redeemability failure,
// surfaced to callers with the specific reason.
func IsCouponRejection(err error) bool {
	return errors.Is(err, ErrCouponNotYetActive) ||
		errors.Is(err, ErrCouponExpired) ||
		errors.Is(err, ErrCouponExhausted) ||
		errors.Is(err, ErrCouponInactive)
}
