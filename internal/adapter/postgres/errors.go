package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// SQLSTATE codes that have a domain meaning.
var constraintErrors = map[string]error{
	"23505": domain.ErrAlreadyExists, // unique_violation
	"23503": domain.ErrNotFound,      // foreign_key_violation
	"23514": domain.ErrValidation,    // check_violation
	"23502": domain.ErrValidation,    // not_null_violation
}

// MapError annotates err with the affected row and translates missing rows
// and constraint violations into domain errors. Context cancellation and
// unknown driver errors are wrapped as they are.
func MapError(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s %v: %w", entity, id, classify(err))
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if mapped, ok := constraintErrors[pgErr.Code]; ok {
			return mapped
		}
	}
	return err
}
