package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrGenerationFailed covers every failure of the word-list request:
	// transport errors, unusable text and malformed JSON alike.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmptyResult is a successful generation call that produced no entries.
	ErrEmptyResult = fmt.Errorf("no words generated: %w", ErrGenerationFailed)
	// ErrPlaybackFailed covers the TTS request, PCM decoding and audio output.
	ErrPlaybackFailed = errors.New("playback failed")
)

// FieldError is one rejected input field. Field uses the wire name.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string { return f.Field + ": " + f.Message }

// ValidationError reports every rejected field of one request. It matches
// ErrValidation under errors.Is.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, f := range e.Errors {
		parts[i] = f.String()
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError rejects a single field.
func NewValidationError(field, message string) *ValidationError {
	return NewValidationErrors(FieldError{Field: field, Message: message})
}

// NewValidationErrors rejects several fields at once.
func NewValidationErrors(errs ...FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
