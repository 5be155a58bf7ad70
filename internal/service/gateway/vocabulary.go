package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

// GenerateVocabulary asks the text model for a word list on topic.
//
// No text in the response yields an empty slice and a nil error; the caller
// decides what an empty list means. Transport and parse failures wrap
// domain.ErrGenerationFailed, as does any entry with a blank required field.
// Short lists are returned as-is.
func (s *Service) GenerateVocabulary(ctx context.Context, topic domain.Topic) ([]domain.WordEntry, error) {
	req := provider.TextRequest{
		Prompt: buildVocabularyPrompt(topic, s.vocab.WordCount),
		Schema: vocabularySchema(),
	}

	text, err := s.text.GenerateText(ctx, req)
	if err != nil {
		s.log.ErrorContext(ctx, "vocabulary generation failed",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	if strings.TrimSpace(text) == "" {
		s.log.WarnContext(ctx, "vocabulary response had no text", slog.String("topic", string(topic)))
		return []domain.WordEntry{}, nil
	}

	var entries []domain.WordEntry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		s.log.ErrorContext(ctx, "vocabulary response is not valid JSON",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: decode word list: %w", domain.ErrGenerationFailed, err)
	}
	if entries == nil {
		entries = []domain.WordEntry{}
	}
	for i, e := range entries {
		if missing := missingFields(e); len(missing) > 0 {
			s.log.ErrorContext(ctx, "vocabulary entry incomplete",
				slog.String("topic", string(topic)),
				slog.Int("index", i),
				slog.String("missing", strings.Join(missing, ",")),
			)
			return nil, fmt.Errorf("%w: entry %d missing %s", domain.ErrGenerationFailed, i, strings.Join(missing, ", "))
		}
	}

	s.log.InfoContext(ctx, "vocabulary generated",
		slog.String("topic", string(topic)),
		slog.Int("requested", s.vocab.WordCount),
		slog.Int("received", len(entries)),
	)

	return entries, nil
}

// missingFields lists the schema-required fields that are blank in e.
func missingFields(e domain.WordEntry) []string {
	values := map[string]string{
		"word":               e.Word,
		"pronunciation":      e.Pronunciation,
		"meaning":            e.Meaning,
		"exampleSentence":    e.ExampleSentence,
		"exampleTranslation": e.ExampleTranslation,
	}
	var missing []string
	for _, f := range wordEntryFields {
		if strings.TrimSpace(values[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
