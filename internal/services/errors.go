package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/learning-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrForbidden     = errors.New("forbidden - insufficient permissions")
	ErrConflict      = errors.New("resource conflict")
	ErrInternalError = errors.New("internal server error")

	// Account errors
	ErrUserNotFound       = errors.New("user not found")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrPasswordMismatch   = errors.New("current password is incorrect")

	// Assessment errors
	ErrAssessmentNotTaken = errors.New("personality assessment not taken")

	// Module errors
	ErrModuleNotFound = errors.New("module not found")
	ErrTestNotFound   = errors.New("test not found for this module")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type RateLimitedError = apperrors.RateLimitedError

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// UnverifiedError is returned when an unverified account tries to register
// again or log in. It carries a fresh verification token so the client can
// resend the verification link.
type UnverifiedError struct {
	Email             string `json:"email"`
	VerificationToken string `json:"verification_token,omitempty"`
}

func (e *UnverifiedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrEmailNotVerified.Error(), e.Email)
}

func (e *UnverifiedError) Unwrap() error {
	return ErrEmailNotVerified
}

// ===== ERROR HELPERS =====

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
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrModuleNotFound) ||
		errors.Is(err, ErrTestNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken)
}

// IsForbidden covers authenticated callers that may not proceed yet.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrEmailNotVerified) ||
		errors.Is(err, ErrAccountDisabled)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve) || errors.Is(err, ErrPasswordMismatch)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrAlreadyVerified)
}

func IsRateLimited(err error) bool {
	var rle *apperrors.RateLimitedError
	return errors.As(err, &rle)
}
