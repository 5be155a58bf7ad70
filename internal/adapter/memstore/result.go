// Package memstore keeps quiz history in process memory. It is the history
// store when no database DSN is configured; records vanish on restart.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// DefaultMaxRecords bounds the in-memory history when no limit is given.
const DefaultMaxRecords = 10000

// ResultRepo mirrors the PostgreSQL result repository. It holds at most
// maxRecords quizzes; saving past the limit evicts the oldest saved ones.
type ResultRepo struct {
	mu         sync.RWMutex
	records    []domain.QuizRecord
	ids        map[uuid.UUID]struct{}
	maxRecords int
}

// NewResultRepo returns an empty store. maxRecords <= 0 selects
// DefaultMaxRecords.
func NewResultRepo(maxRecords int) *ResultRepo {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &ResultRepo{ids: make(map[uuid.UUID]struct{}), maxRecords: maxRecords}
}

// Save stores a deep copy of rec.
func (r *ResultRepo) Save(_ context.Context, rec domain.QuizRecord) error {
	if rec.ID == uuid.Nil {
		return domain.NewValidationError("id", "required")
	}
	if err := rec.Result.Validate(); err != nil {
		return err
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now()
	}
	rec.Result.History = slices.Clone(rec.Result.History)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ids[rec.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.ids[rec.ID] = struct{}{}
	r.records = append(r.records, rec)

	if over := len(r.records) - r.maxRecords; over > 0 {
		for _, old := range r.records[:over] {
			delete(r.ids, old.ID)
		}
		r.records = slices.Delete(r.records, 0, over)
	}
	return nil
}

// Len reports the number of stored quizzes.
func (r *ResultRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// ListBySession returns the session's quizzes, newest first. limit <= 0
// means no limit.
func (r *ResultRepo) ListBySession(_ context.Context, sessionID uuid.UUID, limit int) ([]domain.QuizRecord, error) {
	r.mu.RLock()
	out := []domain.QuizRecord{}
	for _, rec := range r.records {
		if rec.SessionID == sessionID {
			rec.Result.History = slices.Clone(rec.Result.History)
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b domain.QuizRecord) int {
		if c := b.CompletedAt.Compare(a.CompletedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Summary aggregates every stored quiz per topic, ordered by topic.
func (r *ResultRepo) Summary(_ context.Context) ([]domain.TopicSummary, error) {
	type acc struct {
		n    int
		sum  float64
		best int
	}

	r.mu.RLock()
	byTopic := make(map[domain.Topic]*acc)
	for _, rec := range r.records {
		a, ok := byTopic[rec.Topic]
		if !ok {
			a = &acc{}
			byTopic[rec.Topic] = a
		}
		a.n++
		if rec.Result.Total > 0 {
			a.sum += float64(rec.Result.Correct) * 100 / float64(rec.Result.Total)
		}
		a.best = max(a.best, rec.Result.Percent())
	}
	r.mu.RUnlock()

	out := make([]domain.TopicSummary, 0, len(byTopic))
	for topic, a := range byTopic {
		out = append(out, domain.TopicSummary{
			Topic:       topic,
			Attempts:    a.n,
			AvgPercent:  a.sum / float64(a.n),
			BestPercent: a.best,
		})
	}
	slices.SortFunc(out, func(a, b domain.TopicSummary) int {
		return strings.Compare(string(a.Topic), string(b.Topic))
	})
	return out, nil
}
