package testhelper

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// NewQuizRecord builds a completed quiz for topic whose history has one
// answer per element of answers ("word-0", "word-1", ...).
func NewQuizRecord(sessionID uuid.UUID, topic domain.Topic, answers ...bool) domain.QuizRecord {
	history := make([]domain.AnswerRecord, len(answers))
	for i, ok := range answers {
		history[i] = domain.AnswerRecord{Word: fmt.Sprintf("word-%d", i), IsCorrect: ok}
	}
	return domain.QuizRecord{
		ID:          uuid.New(),
		SessionID:   sessionID,
		Topic:       topic,
		Result:      domain.NewQuizResult(history),
		CompletedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}
