// Package worker pre-synthesizes pronunciation clips for freshly generated
// word lists so the first play of a word is served from the clip cache.
//
// Two dispatchers share one contract: Queue hands words to asynq workers
// over Redis, Pool runs them on a bounded set of goroutines in-process.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// TypePrewarm is the asynq task type for one pronunciation clip.
const TypePrewarm = "pronunciation:prewarm"

type warmer interface {
	Warm(ctx context.Context, word string) error
}

// PrewarmPayload is the task body.
type PrewarmPayload struct {
	Word string `json:"word"`
}

func newPrewarmTask(word string, opts ...asynq.Option) (*asynq.Task, error) {
	payload, err := json.Marshal(PrewarmPayload{Word: word})
	if err != nil {
		return nil, fmt.Errorf("marshal prewarm payload: %w", err)
	}
	return asynq.NewTask(TypePrewarm, payload, opts...), nil
}

// handlePrewarm builds the asynq handler. Payload and validation errors skip
// retries; provider failures are retried by asynq.
func handlePrewarm(w warmer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p PrewarmPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("unmarshal prewarm payload: %w: %w", err, asynq.SkipRetry)
		}
		if strings.TrimSpace(p.Word) == "" {
			return fmt.Errorf("prewarm: empty word: %w", asynq.SkipRetry)
		}

		if err := w.Warm(ctx, p.Word); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				return fmt.Errorf("prewarm %q: %w: %w", p.Word, err, asynq.SkipRetry)
			}
			return fmt.Errorf("prewarm %q: %w", p.Word, err)
		}
		return nil
	}
}

// uniqueWords returns the trimmed, non-empty words of entries in order,
// dropping case-insensitive duplicates.
func uniqueWords(entries []domain.WordEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		word := strings.TrimSpace(e.Word)
		if word == "" {
			continue
		}
		key := domain.NormalizeText(word)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, word)
	}
	return words
}
