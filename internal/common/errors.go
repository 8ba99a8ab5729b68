// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Input errors.
	ErrInputValidation = errors.New("input validation failed")

	// Classification errors.
	ErrClassificationParse = errors.New("unparseable classification response")

	// Retrieval errors.
	ErrRetrieval = errors.New("regulation retrieval failed")
	// ErrDimensionMismatch marks vectors whose size differs from the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// Letter errors.
	ErrTemplateNotFound  = errors.New("template not found")
	ErrGenerationService = errors.New("generation service failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// InputValidationError describes a malformed caller-supplied field.
type InputValidationError struct {
	Field  string
	Reason string
	Index  int // position within a batch, -1 when not batched
}

func (e *InputValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("item %d: invalid %s: %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is lets errors.Is match ErrInputValidation.
func (e *InputValidationError) Is(target error) bool {
	return target == ErrInputValidation
}

// NewInputValidationError creates a validation error for a single value.
func NewInputValidationError(field, reason string) *InputValidationError {
	return &InputValidationError{Field: field, Reason: reason, Index: -1}
}

// BatchIngestionError reports a batch that failed after all retries.
// Committed holds the IDs written by earlier batches, which stay in place.
type BatchIngestionError struct {
	Err       error
	Namespace string
	Committed []string
	Batch     int
}

func (e *BatchIngestionError) Error() string {
	return fmt.Sprintf("ingest %s: batch %d failed (%d vectors already committed): %v",
		e.Namespace, e.Batch, len(e.Committed), e.Err)
}

func (e *BatchIngestionError) Unwrap() error {
	return e.Err
}

// SynthesisError wraps a failure of the external generation service.
type SynthesisError struct {
	Err      error
	Category string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("letter synthesis for %s: %v", e.Category, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrGenerationService.
func (e *SynthesisError) Is(target error) bool {
	return target == ErrGenerationService
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
