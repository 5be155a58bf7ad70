package session

import (
	"context"
	"sync"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

var (
	_ vocabularyGenerator = &vocabularyGeneratorMock{}
	_ resultRepo          = &resultRepoMock{}
	_ prewarmer           = &prewarmerMock{}
)

type vocabularyGeneratorMock struct {
	GenerateVocabularyFunc func(ctx context.Context, topic domain.Topic) ([]domain.WordEntry, error)

	mu    sync.Mutex
	calls []domain.Topic
}

func (m *vocabularyGeneratorMock) GenerateVocabulary(ctx context.Context, topic domain.Topic) ([]domain.WordEntry, error) {
	m.mu.Lock()
	m.calls = append(m.calls, topic)
	m.mu.Unlock()
	if m.GenerateVocabularyFunc == nil {
		panic("vocabularyGeneratorMock.GenerateVocabularyFunc: method is nil but vocabularyGenerator.GenerateVocabulary was just called")
	}
	return m.GenerateVocabularyFunc(ctx, topic)
}

func (m *vocabularyGeneratorMock) GenerateVocabularyCalls() []domain.Topic {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Topic(nil), m.calls...)
}

type resultRepoMock struct {
	SaveFunc func(ctx context.Context, rec domain.QuizRecord) error

	mu    sync.Mutex
	calls []domain.QuizRecord
}

func (m *resultRepoMock) Save(ctx context.Context, rec domain.QuizRecord) error {
	m.mu.Lock()
	m.calls = append(m.calls, rec)
	m.mu.Unlock()
	if m.SaveFunc == nil {
		return nil
	}
	return m.SaveFunc(ctx, rec)
}

func (m *resultRepoMock) SaveCalls() []domain.QuizRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.QuizRecord(nil), m.calls...)
}

type prewarmerMock struct {
	mu    sync.Mutex
	calls [][]domain.WordEntry
}

func (m *prewarmerMock) Prewarm(_ context.Context, words []domain.WordEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, words)
}

func (m *prewarmerMock) PrewarmCalls() [][]domain.WordEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]domain.WordEntry(nil), m.calls...)
}
