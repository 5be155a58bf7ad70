// Package quiz runs a multiple-choice quiz over a word list: each question
// shows a word and asks for its meaning.
//
// A Quiz is not safe for concurrent use; the session controller owns it.
package quiz

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// MaxDistractors is the number of wrong options offered per question when
// the word list has enough distinct meanings.
const MaxDistractors = 3

// Question is the learner-facing view of one quiz step.
type Question struct {
	Index         int      `json:"index"`
	Word          string   `json:"word"`
	Pronunciation string   `json:"pronunciation"`
	Options       []string `json:"options"`
}

// Feedback is the outcome of one answer.
type Feedback struct {
	Word          string `json:"word"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Done          bool   `json:"done"`
}

// Progress reports how far the quiz has come.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Correct  int `json:"correct"`
}

type question struct {
	entry   domain.WordEntry
	options []string
	answer  int
}

// Quiz holds the questions and the answer history of one pass.
type Quiz struct {
	questions []question
	history   []domain.AnswerRecord
	correct   int
}

// New builds a quiz with one question per word, in list order. Options are
// shuffled with rng.
func New(words []domain.WordEntry, rng *rand.Rand) (*Quiz, error) {
	if len(words) == 0 {
		return nil, domain.NewValidationError("words", "at least one word is required")
	}
	if rng == nil {
		return nil, fmt.Errorf("quiz: rng is required")
	}

	q := &Quiz{
		questions: make([]question, len(words)),
		history:   make([]domain.AnswerRecord, 0, len(words)),
	}
	for i := range words {
		q.questions[i] = buildQuestion(words, i, rng)
	}
	return q, nil
}

func buildQuestion(words []domain.WordEntry, idx int, rng *rand.Rand) question {
	correct := words[idx].Meaning

	seen := map[string]bool{normalize(correct): true}
	var pool []string
	for i, w := range words {
		key := normalize(w.Meaning)
		if i == idx || key == "" || seen[key] {
			continue
		}
		seen[key] = true
		pool = append(pool, w.Meaning)
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > MaxDistractors {
		pool = pool[:MaxDistractors]
	}

	options := append([]string{correct}, pool...)
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	answer := 0
	for i, o := range options {
		if o == correct {
			answer = i
			break
		}
	}
	return question{entry: words[idx], options: options, answer: answer}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Len returns the number of questions.
func (q *Quiz) Len() int { return len(q.questions) }

// Done reports whether every question has been answered.
func (q *Quiz) Done() bool { return len(q.history) == len(q.questions) }

// Current returns the next unanswered question; ok is false once done.
func (q *Quiz) Current() (Question, bool) {
	if q.Done() {
		return Question{}, false
	}
	i := len(q.history)
	cur := q.questions[i]
	return Question{
		Index:         i,
		Word:          cur.entry.Word,
		Pronunciation: cur.entry.Pronunciation,
		Options:       append([]string(nil), cur.options...),
	}, true
}

// Answer grades choice (an index into the current options) and advances.
func (q *Quiz) Answer(choice int) (Feedback, error) {
	if q.Done() {
		return Feedback{}, fmt.Errorf("quiz already finished: %w", domain.ErrInvalidTransition)
	}
	cur := q.questions[len(q.history)]
	if choice < 0 || choice >= len(cur.options) {
		return Feedback{}, domain.NewValidationError("choice", fmt.Sprintf("must be in 0..%d", len(cur.options)-1))
	}

	ok := choice == cur.answer
	q.history = append(q.history, domain.AnswerRecord{Word: cur.entry.Word, IsCorrect: ok})
	if ok {
		q.correct++
	}

	return Feedback{
		Word:          cur.entry.Word,
		Correct:       ok,
		CorrectAnswer: cur.options[cur.answer],
		Done:          q.Done(),
	}, nil
}

// Progress returns the answered/total/correct counters.
func (q *Quiz) Progress() Progress {
	return Progress{Answered: len(q.history), Total: len(q.questions), Correct: q.correct}
}

// Result tallies the finished quiz. It fails until every question is answered.
func (q *Quiz) Result() (domain.QuizResult, error) {
	if !q.Done() {
		return domain.QuizResult{}, fmt.Errorf("quiz not finished (%d/%d): %w", len(q.history), len(q.questions), domain.ErrInvalidTransition)
	}
	return domain.NewQuizResult(q.history), nil
}
