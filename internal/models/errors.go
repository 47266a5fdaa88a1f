package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes surfaced to API clients.
const (
	CodeAlreadyMember   = "ALREADY_MEMBER"
	CodeNotMember       = "NOT_MEMBER"
	CodeNotEligible     = "NOT_ELIGIBLE"
	CodeInvalidContent  = "INVALID_CONTENT"
	CodeChallengeClosed = "CHALLENGE_CLOSED"
	CodeAlreadyVoted    = "ALREADY_VOTED"
	CodeNotVoted        = "NOT_VOTED"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeStorage         = "STORAGE_ERROR"
	CodeInternal        = "INTERNAL_ERROR"
)

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	// Fields holds per-field violations for VALIDATION_ERROR.
	Fields map[string]string
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same operation.
func (e *AppError) Retryable() bool {
	return e.Code == CodeStorage
}

// IsCode reports whether err is an *AppError carrying code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldValidationError carries every violated rule at once, keyed by field.
func NewFieldValidationError(fields map[string]string) *AppError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return &AppError{
		Code:    CodeValidation,
		Message: strings.Join(msgs, "; "),
		Fields:  fields,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewAlreadyMemberError() *AppError {
	return &AppError{
		Code:    CodeAlreadyMember,
		Message: "Already a member of this community",
	}
}

func NewNotMemberError() *AppError {
	return &AppError{
		Code:    CodeNotMember,
		Message: "You must be a member of this community",
	}
}

func NewNotEligibleError(message string) *AppError {
	return &AppError{
		Code:    CodeNotEligible,
		Message: message,
	}
}

func NewInvalidContentError(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidContent,
		Message: message,
	}
}

func NewChallengeClosedError() *AppError {
	return &AppError{
		Code:    CodeChallengeClosed,
		Message: "This challenge has ended",
	}
}

func NewAlreadyVotedError() *AppError {
	return &AppError{
		Code:    CodeAlreadyVoted,
		Message: "You have already voted for this submission",
	}
}

func NewNotVotedError() *AppError {
	return &AppError{
		Code:    CodeNotVoted,
		Message: "You have not voted for this submission",
	}
}

// NewStorageError wraps a persistence failure that maps to no known kind.
func NewStorageError(err error) *AppError {
	return &AppError{
		Code:    CodeStorage,
		Message: "Storage temporarily unavailable, please retry",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Internal server error",
		Err:     err,
	}
}
