package history

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// ListInput selects the quizzes of one session.
type ListInput struct {
	SessionID uuid.UUID
	Limit     int
}

// Validate checks all fields and collects all errors.
func (i ListInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.Limit < 0 || i.Limit > MaxLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("must be between 0 and %d", MaxLimit)})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs...)
	}
	return nil
}
