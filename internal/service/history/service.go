// Package history serves the stored quiz results: per-session listings and
// per-topic aggregates.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

type resultRepo interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.QuizRecord, error)
	Summary(ctx context.Context) ([]domain.TopicSummary, error)
}

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Service provides read access to quiz history.
type Service struct {
	results resultRepo
	log     *slog.Logger
}

// NewService creates a new history service.
func NewService(log *slog.Logger, results resultRepo) *Service {
	return &Service{
		results: results,
		log:     log.With("service", "history"),
	}
}

// ListBySession returns a session's completed quizzes, newest first.
// A zero limit means DefaultLimit.
func (s *Service) ListBySession(ctx context.Context, in ListInput) ([]domain.QuizRecord, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	limit := in.Limit
	if limit == 0 {
		limit = DefaultLimit
	}

	records, err := s.results.ListBySession(ctx, in.SessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return records, nil
}

// Summary returns per-topic aggregates over every stored quiz.
func (s *Service) Summary(ctx context.Context) ([]domain.TopicSummary, error) {
	summaries, err := s.results.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize results: %w", err)
	}
	return summaries, nil
}
