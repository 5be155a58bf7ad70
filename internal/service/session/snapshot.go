package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/service/quiz"
)

// GenericErrorMessage is shown whenever a word list could not be produced.
const GenericErrorMessage = "Failed to generate words. Please check your API Key or try again."

// Snapshot is a consistent copy of a session's visible state.
type Snapshot struct {
	SessionID uuid.UUID          `json:"sessionId"`
	Mode      domain.AppMode     `json:"mode"`
	Topic     domain.Topic       `json:"topic"`
	Words     []domain.WordEntry `json:"words"`
	Loading   bool               `json:"loading"`
	Error     string             `json:"error,omitempty"`
	Quiz      *QuizState         `json:"quiz,omitempty"`
	Result    *ResultState       `json:"result,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// QuizState is the quiz part of a Snapshot.
type QuizState struct {
	Question   *quiz.Question `json:"question,omitempty"`
	Progress   quiz.Progress  `json:"progress"`
	LastAnswer *quiz.Feedback `json:"lastAnswer,omitempty"`
}

// ResultState is a finished quiz with its presentation fields.
type ResultState struct {
	domain.QuizResult
	Percent int          `json:"percent"`
	Grade   domain.Grade `json:"grade"`
}

func newResultState(r domain.QuizResult) *ResultState {
	return &ResultState{QuizResult: r, Percent: r.Percent(), Grade: r.Grade()}
}

// snapshotLocked must be called with c.mu held.
func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		SessionID: c.id,
		Mode:      c.view.Mode(),
		Topic:     c.topic,
		Words:     []domain.WordEntry{},
		Loading:   c.loading,
		Error:     c.errMsg,
		UpdatedAt: c.lastActive,
	}

	switch v := c.view.(type) {
	case domain.LearnView:
		s.Words = append(s.Words, v.Words...)
	case domain.QuizView:
		s.Words = append(s.Words, v.Words...)
		qs := &QuizState{Progress: c.quiz.Progress(), LastAnswer: c.lastAnswer}
		if q, ok := c.quiz.Current(); ok {
			qs.Question = &q
		}
		s.Quiz = qs
	case domain.StatsView:
		s.Result = newResultState(v.Result)
		if c.lastAnswer != nil {
			s.Quiz = &QuizState{Progress: c.quiz.Progress(), LastAnswer: c.lastAnswer}
		}
	}
	return s
}
