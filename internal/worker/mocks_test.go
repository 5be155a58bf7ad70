package worker

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

var _ warmer = &warmerMock{}

type warmerMock struct {
	WarmFunc func(ctx context.Context, word string) error

	mu    sync.Mutex
	calls []string
}

func (m *warmerMock) Warm(ctx context.Context, word string) error {
	if m.WarmFunc == nil {
		panic("warmerMock.WarmFunc: method is nil but warmer.Warm was just called")
	}
	m.mu.Lock()
	m.calls = append(m.calls, word)
	m.mu.Unlock()
	return m.WarmFunc(ctx, word)
}

func (m *warmerMock) WarmCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
