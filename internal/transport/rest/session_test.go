package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/service/session"
)

func createSession(t *testing.T, env *testEnv, body any) session.Snapshot {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/sessions?wait=true", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[session.Snapshot](t, rec)
}

func sessionPath(id uuid.UUID, suffix string) string {
	return "/api/sessions/" + id.String() + suffix
}

func TestSessionHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("default topic", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		snap := createSession(t, env, nil)

		assert.NotEqual(t, uuid.Nil, snap.SessionID)
		assert.Equal(t, domain.AppModeLearn, snap.Mode)
		assert.Equal(t, domain.DefaultTopic(), snap.Topic)
		assert.False(t, snap.Loading)
		assert.Empty(t, snap.Error)
		assert.Len(t, snap.Words, 3)
	})

	t.Run("english topic label", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		snap := createSession(t, env, map[string]string{"topic": "Animals"})

		assert.Equal(t, domain.Topic("Animals (동물)"), snap.Topic)
	})

	t.Run("without wait returns loading state", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		gen := &generatorMock{
			GenerateVocabularyFunc: func(ctx context.Context, _ domain.Topic) ([]domain.WordEntry, error) {
				select {
				case <-release:
					return testWords(), nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			},
		}
		env := newTestEnv(t, withGenerator(gen))
		defer close(release)

		rec := env.do(t, http.MethodPost, "/api/sessions", nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		snap := decode[session.Snapshot](t, rec)
		assert.True(t, snap.Loading)
		assert.Empty(t, snap.Words)
	})

	tests := []struct {
		name string
		body any
	}{
		{"unknown topic", map[string]string{"topic": "Quantum Physics"}},
		{"unknown field", map[string]string{"subject": "Animals"}},
		{"topic too long", map[string]string{"topic": strings.Repeat("a", 101)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)

			rec := env.do(t, http.MethodPost, "/api/sessions", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSessionHandler_Create_GenerationFailure(t *testing.T) {
	t.Parallel()

	gen := &generatorMock{
		GenerateVocabularyFunc: func(context.Context, domain.Topic) ([]domain.WordEntry, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	env := newTestEnv(t, withGenerator(gen))

	snap := createSession(t, env, nil)

	assert.False(t, snap.Loading)
	assert.Equal(t, session.GenericErrorMessage, snap.Error)
	assert.Empty(t, snap.Words)
}

func TestSessionHandler_Get(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	created := createSession(t, env, nil)

	t.Run("existing", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, sessionPath(created.SessionID, ""), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, created.SessionID, decode[session.Snapshot](t, rec).SessionID)
	})

	t.Run("unknown", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, sessionPath(uuid.New(), ""), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/sessions/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		body := decode[errorResponse](t, rec)
		require.Len(t, body.Fields, 1)
		assert.Equal(t, "session_id", body.Fields[0].Field)
	})
}

func TestSessionHandler_SelectTopic(t *testing.T) {
	t.Parallel()

	var topics []domain.Topic
	gen := &generatorMock{
		GenerateVocabularyFunc: func(_ context.Context, topic domain.Topic) ([]domain.WordEntry, error) {
			topics = append(topics, topic)
			return testWords(), nil
		},
	}
	env := newTestEnv(t, withGenerator(gen))
	created := createSession(t, env, nil)

	rec := env.do(t, http.MethodPost, sessionPath(created.SessionID, "/topic?wait=true"), map[string]string{"topic": "Weather"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	snap := decode[session.Snapshot](t, rec)
	assert.Equal(t, domain.Topic("Weather (날씨)"), snap.Topic)
	assert.False(t, snap.Loading)
	assert.Equal(t, []domain.Topic{domain.DefaultTopic(), "Weather (날씨)"}, topics)

	rec = env.do(t, http.MethodPost, sessionPath(created.SessionID, "/topic"), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHandler_QuizFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	created := createSession(t, env, nil)
	id := created.SessionID

	// Stats-only transitions are rejected from Learn.
	rec := env.do(t, http.MethodPost, sessionPath(id, "/home"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, sessionPath(id, "/quiz/start"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode[session.Snapshot](t, rec)
	assert.Equal(t, domain.AppModeQuiz, snap.Mode)
	require.NotNil(t, snap.Quiz)
	require.NotNil(t, snap.Quiz.Question)
	assert.Equal(t, 3, snap.Quiz.Progress.Total)

	rec = env.do(t, http.MethodPost, sessionPath(id, "/quiz/answer"), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing choice")

	rec = env.do(t, http.MethodPost, sessionPath(id, "/quiz/answer"), map[string]int{"choice": 99})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "choice out of range")

	for i := 0; i < 3; i++ {
		rec = env.do(t, http.MethodPost, sessionPath(id, "/quiz/answer"), map[string]int{"choice": 0})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	snap = decode[session.Snapshot](t, rec)
	assert.Equal(t, domain.AppModeStats, snap.Mode)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 3, snap.Result.Total)
	assert.Equal(t, snap.Result.Total, snap.Result.Correct+snap.Result.Incorrect)
	assert.Len(t, snap.Result.History, 3)

	rec = env.do(t, http.MethodGet, sessionPath(id, "/results"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[struct {
		Results []quizRecordResponse `json:"results"`
	}](t, rec)
	require.Len(t, stored.Results, 1)
	assert.Equal(t, snap.Result.Correct, stored.Results[0].Correct)

	rec = env.do(t, http.MethodPost, sessionPath(id, "/home"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[session.Snapshot](t, rec)
	assert.Equal(t, domain.AppModeLearn, snap.Mode)
	assert.Len(t, snap.Words, 3)
}

func TestSessionHandler_ExitAndRestart(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	id := createSession(t, env, nil).SessionID

	rec := env.do(t, http.MethodPost, sessionPath(id, "/quiz/exit"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, sessionPath(id, "/quiz/start"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, sessionPath(id, "/quiz/exit"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.AppModeLearn, decode[session.Snapshot](t, rec).Mode)

	rec = env.do(t, http.MethodGet, sessionPath(id, "/results"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())

	rec = env.do(t, http.MethodPost, sessionPath(id, "/restart"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSessionHandler_RateLimited(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, withRateLimit(1))

	first := env.do(t, http.MethodPost, "/api/sessions", nil)
	second := env.do(t, http.MethodPost, "/api/sessions", nil)

	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
