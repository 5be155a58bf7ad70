package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is one graded quiz answer.
type AnswerRecord struct {
	Word      string `json:"word"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuizResult is the outcome of one completed quiz pass.
// Invariant: Correct + Incorrect == Total == len(History).
type QuizResult struct {
	Total     int            `json:"total"`
	Correct   int            `json:"correct"`
	Incorrect int            `json:"incorrect"`
	History   []AnswerRecord `json:"history"`
}

// NewQuizResult tallies an answer history into a QuizResult.
func NewQuizResult(history []AnswerRecord) QuizResult {
	r := QuizResult{
		Total:   len(history),
		History: make([]AnswerRecord, len(history)),
	}
	copy(r.History, history)
	for _, h := range history {
		if h.IsCorrect {
			r.Correct++
		} else {
			r.Incorrect++
		}
	}
	return r
}

// Validate checks the tally invariant.
func (r QuizResult) Validate() error {
	if r.Total < 0 || r.Correct < 0 || r.Incorrect < 0 {
		return NewValidationError("result", "counts must be non-negative")
	}
	if r.Correct+r.Incorrect != r.Total {
		return NewValidationError("result", fmt.Sprintf("correct+incorrect = %d, total = %d", r.Correct+r.Incorrect, r.Total))
	}
	if len(r.History) != r.Total {
		return NewValidationError("result", fmt.Sprintf("history has %d items, total = %d", len(r.History), r.Total))
	}
	return nil
}

// Percent returns the rounded score percentage; 0 for an empty quiz.
func (r QuizResult) Percent() int {
	if r.Total <= 0 {
		return 0
	}
	return int(math.Round(float64(r.Correct) / float64(r.Total) * 100))
}

// Grade is the presentation variant of a score.
type Grade string

const (
	GradePerfect    Grade = "perfect"
	GradeExcellent  Grade = "excellent"
	GradePassed     Grade = "passed"
	GradeHalfway    Grade = "halfway"
	GradeKeepTrying Grade = "keep_trying"
)

func (g Grade) String() string { return string(g) }

// Grade maps the percentage onto a presentation variant.
func (r QuizResult) Grade() Grade {
	p := r.Percent()
	switch {
	case r.Total > 0 && p >= 100:
		return GradePerfect
	case p >= 90:
		return GradeExcellent
	case p >= 70:
		return GradePassed
	case p >= 50:
		return GradeHalfway
	default:
		return GradeKeepTrying
	}
}

// QuizRecord is a completed quiz kept in the history store.
type QuizRecord struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	Topic       Topic
	Result      QuizResult
	CompletedAt time.Time
}

// TopicSummary aggregates the stored quiz records of one topic.
type TopicSummary struct {
	Topic       Topic
	Attempts    int
	AvgPercent  float64
	BestPercent int
}
