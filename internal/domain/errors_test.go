package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{"single field", NewValidationError("topic", "required"), "validation: topic: required"},
		{
			"several fields",
			NewValidationErrors(
				FieldError{Field: "word", Message: "required"},
				FieldError{Field: "choice", Message: "out of range"},
			),
			"validation: word: required; choice: out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, ErrValidation)
		})
	}
}

func TestValidationError_WrappedStillMatches(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("select topic: %w", NewValidationError("topic", "unknown topic"))

	var ve *ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "topic", ve.Errors[0].Field)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrEmptyResult_IsGenerationFailure(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrEmptyResult, ErrGenerationFailed)
	assert.NotErrorIs(t, ErrGenerationFailed, ErrEmptyResult)
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{ErrNotFound, ErrAlreadyExists, ErrValidation, ErrInvalidTransition, ErrGenerationFailed, ErrPlaybackFailed}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}
