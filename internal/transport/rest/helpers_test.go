package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/myvocab-backend/internal/adapter/memstore"
	"github.com/heartmarshall/myvocab-backend/internal/audio"
	"github.com/heartmarshall/myvocab-backend/internal/config"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/service/history"
	"github.com/heartmarshall/myvocab-backend/internal/service/session"
	"github.com/heartmarshall/myvocab-backend/internal/transport/middleware"
)

// ---------------------------------------------------------------------------
// Manual mocks (moq-style with func fields)
// ---------------------------------------------------------------------------

type generatorMock struct {
	GenerateVocabularyFunc func(ctx context.Context, topic domain.Topic) ([]domain.WordEntry, error)
}

func (m *generatorMock) GenerateVocabulary(ctx context.Context, topic domain.Topic) ([]domain.WordEntry, error) {
	if m.GenerateVocabularyFunc == nil {
		panic("generatorMock.GenerateVocabularyFunc is nil")
	}
	return m.GenerateVocabularyFunc(ctx, topic)
}

type speechMock struct {
	PronunciationWAVFunc func(ctx context.Context, word string) ([]byte, error)
	PlayFunc             func(ctx context.Context, word string)
}

var _ speechService = &speechMock{}

func (m *speechMock) PronunciationWAV(ctx context.Context, word string) ([]byte, error) {
	if m.PronunciationWAVFunc == nil {
		panic("speechMock.PronunciationWAVFunc is nil")
	}
	return m.PronunciationWAVFunc(ctx, word)
}

func (m *speechMock) Play(ctx context.Context, word string) {
	if m.PlayFunc == nil {
		panic("speechMock.PlayFunc is nil")
	}
	m.PlayFunc(ctx, word)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWords() []domain.WordEntry {
	return []domain.WordEntry{
		{Word: "apple", Pronunciation: "애플", Meaning: "사과", ExampleSentence: "I eat an apple.", ExampleTranslation: "나는 사과를 먹는다."},
		{Word: "book", Pronunciation: "북", Meaning: "책", ExampleSentence: "Read a book.", ExampleTranslation: "책을 읽어라."},
		{Word: "cat", Pronunciation: "캣", Meaning: "고양이", ExampleSentence: "The cat sleeps.", ExampleTranslation: "고양이가 잔다."},
	}
}

func staticGenerator(words []domain.WordEntry) *generatorMock {
	return &generatorMock{
		GenerateVocabularyFunc: func(context.Context, domain.Topic) ([]domain.WordEntry, error) {
			return words, nil
		},
	}
}

type testEnv struct {
	router  http.Handler
	results *memstore.ResultRepo
	output  *audio.Context
}

type envOption func(*envConfig)

type envConfig struct {
	gen     *generatorMock
	speech  *speechMock
	limiter bool
	cfg     config.Config
}

func withGenerator(g *generatorMock) envOption { return func(c *envConfig) { c.gen = g } }
func withSpeech(s *speechMock) envOption       { return func(c *envConfig) { c.speech = s } }
func withRateLimit(perMinute int) envOption {
	return func(c *envConfig) {
		c.limiter = true
		c.cfg.RateLimit.PerMinute = perMinute
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	ec := &envConfig{
		gen:    staticGenerator(testWords()),
		speech: &speechMock{},
		cfg: config.Config{
			CORS: config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST", AllowedHeaders: "Content-Type"},
			Session: config.SessionConfig{
				TTL:           time.Hour,
				SweepInterval: time.Hour,
				MaxSessions:   100,
				FetchTimeout:  5 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(ec)
	}

	log := testLogger()
	results := memstore.NewResultRepo(memstore.DefaultMaxRecords)
	manager := session.NewManager(log, ec.gen, results, nil, ec.cfg.Session)
	t.Cleanup(manager.Stop)

	output := audio.NewContext()
	t.Cleanup(output.Close)

	var limiter *middleware.RateLimiter
	if ec.limiter {
		limiter = middleware.NewRateLimiter(time.Minute)
		t.Cleanup(limiter.Stop)
	}

	h := Handlers{
		Health:        NewHealthHandler("test"),
		Sessions:      NewSessionHandler(manager, log),
		Results:       NewResultsHandler(history.NewService(log, results), log),
		Pronunciation: NewPronunciationHandler(ec.speech, output, 4, log),
	}
	return &testEnv{
		router:  NewRouter(h, ec.cfg, limiter, log),
		results: results,
		output:  output,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func httptestRecorder(h http.HandlerFunc, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(method, path, nil))
	return rec
}
