package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNot []error
	}{
		{"no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), domain.ErrNotFound, nil},
		{"unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrAlreadyExists, nil},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, domain.ErrNotFound, nil},
		{"check violation", &pgconn.PgError{Code: "23514"}, domain.ErrValidation, nil},
		{"not null violation", &pgconn.PgError{Code: "23502"}, domain.ErrValidation, nil},
		{"canceled", context.Canceled, context.Canceled, []error{domain.ErrNotFound}},
		{"deadline", fmt.Errorf("exec: %w", context.DeadlineExceeded), context.DeadlineExceeded, []error{domain.ErrNotFound}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MapError(tt.err, "quiz_result", id)

			assert.ErrorIs(t, got, tt.wantIs)
			assert.Contains(t, got.Error(), "quiz_result "+id.String())
			for _, not := range tt.wantNot {
				assert.NotErrorIs(t, got, not)
			}
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, MapError(nil, "quiz_result", uuid.New()))
}

func TestMapError_UnknownPgErrorKept(t *testing.T) {
	t.Parallel()

	got := MapError(&pgconn.PgError{Severity: "ERROR", Code: "42P01", Message: "relation does not exist"}, "quiz_result", 7)

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(got, &pgErr))
	assert.Equal(t, "42P01", pgErr.Code)
	assert.NotErrorIs(t, got, domain.ErrNotFound)
	assert.NotErrorIs(t, got, domain.ErrValidation)
	assert.Equal(t, "quiz_result 7: ERROR: relation does not exist (SQLSTATE 42P01)", got.Error())
}
