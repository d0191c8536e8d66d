package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/exam-session-service/internal/errors"
	"github.com/SAP-F-2025/exam-session-service/internal/gateway"
	"github.com/SAP-F-2025/exam-session-service/internal/repositories/postgres"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")

	// Session specific errors
	ErrSessionNotFound         = errors.New("session not found")
	ErrSessionAccessDenied     = errors.New("access denied to session")
	ErrSessionNotLoaded        = errors.New("session test content is not loaded")
	ErrSessionTimedOut         = errors.New("session time has expired")
	ErrSessionAlreadySubmitted = errors.New("session already submitted")
	ErrSessionSubmitting       = errors.New("session submission already in progress")

	// Attempt result errors
	ErrAttemptNotFound = errors.New("attempt not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// RuleOptionOfQuestion is broken by selecting an option of another question.
const RuleOptionOfQuestion = "option_of_question"

// BusinessRuleError rejects well-formed input that conflicts with the loaded
// test content.
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s session %s - %s",
		pe.UserID, pe.Action, pe.SessionID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrSessionAccessDenied
}

// ===== ERROR HELPERS =====

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID, sessionID, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:    userID,
		SessionID: sessionID,
		Action:    action,
		Reason:    reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, postgres.ErrSubmissionNotFound) ||
		gateway.IsNotFound(err)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSessionAccessDenied) ||
		gateway.IsUnauthorized(err)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a state conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrSessionNotLoaded) ||
		errors.Is(err, ErrSessionTimedOut) ||
		errors.Is(err, ErrSessionAlreadySubmitted) ||
		errors.Is(err, ErrSessionSubmitting)
}
