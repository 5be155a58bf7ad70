package gateway

import (
	"context"
	"sync"

	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

var (
	_ textGenerator     = &textGeneratorMock{}
	_ speechSynthesizer = &speechSynthesizerMock{}
	_ clipCache         = &clipCacheMock{}
)

type textGeneratorMock struct {
	GenerateTextFunc func(ctx context.Context, req provider.TextRequest) (string, error)

	mu    sync.Mutex
	calls []provider.TextRequest
}

func (m *textGeneratorMock) GenerateText(ctx context.Context, req provider.TextRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.GenerateTextFunc == nil {
		panic("textGeneratorMock.GenerateTextFunc: method is nil but textGenerator.GenerateText was just called")
	}
	return m.GenerateTextFunc(ctx, req)
}

func (m *textGeneratorMock) GenerateTextCalls() []provider.TextRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.TextRequest(nil), m.calls...)
}

type speechSynthesizerMock struct {
	SynthesizeSpeechFunc func(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResult, error)

	mu    sync.Mutex
	calls []provider.SpeechRequest
}

func (m *speechSynthesizerMock) SynthesizeSpeech(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.SynthesizeSpeechFunc == nil {
		panic("speechSynthesizerMock.SynthesizeSpeechFunc: method is nil but speechSynthesizer.SynthesizeSpeech was just called")
	}
	return m.SynthesizeSpeechFunc(ctx, req)
}

func (m *speechSynthesizerMock) SynthesizeSpeechCalls() []provider.SpeechRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provider.SpeechRequest(nil), m.calls...)
}

// clipCacheMock is an in-memory cache; GetErr/SetErr force failures.
type clipCacheMock struct {
	GetErr error
	SetErr error

	mu   sync.Mutex
	data map[string][]byte
}

func (m *clipCacheMock) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *clipCacheMock) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.data[key] = data
	return nil
}

func (m *clipCacheMock) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
