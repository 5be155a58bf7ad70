package session

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/service/quiz"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type vocabularyGenerator interface {
	GenerateVocabulary(ctx context.Context, topic domain.Topic) ([]domain.WordEntry, error)
}

type resultRepo interface {
	Save(ctx context.Context, rec domain.QuizRecord) error
}

type prewarmer interface {
	Prewarm(ctx context.Context, words []domain.WordEntry)
}

type deps struct {
	gen          vocabularyGenerator
	results      resultRepo
	prewarm      prewarmer
	log          *slog.Logger
	now          func() time.Time
	fetchTimeout time.Duration
}

// Controller is the state machine of one learner session:
//
//	Learn --StartQuiz--> Quiz --last Answer--> Stats
//	Quiz  --ExitQuiz---> Learn
//	Stats --Restart----> Learn (refetch) | Home --> Learn | SelectTopic --> Learn (fetch)
//	Learn --SelectTopic/Refresh--> Learn (fetch)
//
// Word-list fetches run in the background. Each fetch is numbered and only
// the latest one may update the session.
type Controller struct {
	id  uuid.UUID
	ctx context.Context
	deps
	rng *rand.Rand

	mu         sync.Mutex
	view       domain.View
	topic      domain.Topic
	words      []domain.WordEntry
	loading    bool
	errMsg     string
	seq        uint64
	idle       chan struct{}
	quiz       *quiz.Quiz
	lastAnswer *quiz.Feedback
	lastActive time.Time

	fetches sync.WaitGroup
}

func newController(ctx context.Context, id uuid.UUID, d deps, rng *rand.Rand, topic domain.Topic) *Controller {
	c := &Controller{
		id:    id,
		ctx:   ctx,
		deps:  d,
		rng:   rng,
		topic: topic,
		words: []domain.WordEntry{},
	}
	c.log = d.log.With("session_id", id.String())
	c.lastActive = c.now()
	c.enterLearnLocked()
	return c
}

// ID returns the session id.
func (c *Controller) ID() uuid.UUID { return c.id }

// Snapshot returns the current state. Reading counts as activity.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()
	return c.snapshotLocked()
}

// SelectTopic switches to topic and fetches its word list. Allowed from
// Learn and Stats.
func (c *Controller) SelectTopic(raw string) (Snapshot, error) {
	topic, err := domain.ParseTopic(raw)
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if _, ok := c.view.(domain.QuizView); ok {
		return Snapshot{}, c.invalid("select topic")
	}

	c.topic = topic
	c.enterLearnLocked()
	c.startFetchLocked()
	return c.snapshotLocked(), nil
}

// Refresh refetches the current topic. Learn only.
func (c *Controller) Refresh() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if _, ok := c.view.(domain.LearnView); !ok {
		return Snapshot{}, c.invalid("refresh")
	}
	c.startFetchLocked()
	return c.snapshotLocked(), nil
}

// StartQuiz enters the quiz over the loaded words.
func (c *Controller) StartQuiz() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if _, ok := c.view.(domain.LearnView); !ok {
		return Snapshot{}, c.invalid("start quiz")
	}
	if c.loading {
		return Snapshot{}, fmt.Errorf("start quiz while loading: %w", domain.ErrInvalidTransition)
	}
	if len(c.words) == 0 {
		return Snapshot{}, fmt.Errorf("start quiz without words: %w", domain.ErrInvalidTransition)
	}

	q, err := quiz.New(c.words, c.rng)
	if err != nil {
		return Snapshot{}, err
	}
	c.quiz = q
	c.lastAnswer = nil
	c.view = domain.QuizView{Words: c.words}

	c.log.Info("quiz started", slog.String("topic", string(c.topic)), slog.Int("questions", q.Len()))
	return c.snapshotLocked(), nil
}

// Answer grades choice for the current question. The last answer moves the
// session to Stats and stores the result; a storage failure is only logged.
func (c *Controller) Answer(ctx context.Context, choice int) (Snapshot, error) {
	c.mu.Lock()
	c.touchLocked()

	if _, ok := c.view.(domain.QuizView); !ok {
		c.mu.Unlock()
		return Snapshot{}, c.invalid("answer")
	}

	fb, err := c.quiz.Answer(choice)
	if err != nil {
		c.mu.Unlock()
		return Snapshot{}, err
	}
	c.lastAnswer = &fb

	var record *domain.QuizRecord
	if fb.Done {
		res, err := c.quiz.Result()
		if err != nil {
			c.mu.Unlock()
			return Snapshot{}, err
		}
		c.view = domain.StatsView{Result: res}
		record = &domain.QuizRecord{
			ID:          uuid.New(),
			SessionID:   c.id,
			Topic:       c.topic,
			Result:      res,
			CompletedAt: c.now(),
		}
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if record != nil {
		c.log.InfoContext(ctx, "quiz completed",
			slog.String("topic", string(record.Topic)),
			slog.Int("correct", record.Result.Correct),
			slog.Int("total", record.Result.Total),
		)
		c.saveResult(ctx, *record)
	}
	return snap, nil
}

func (c *Controller) saveResult(ctx context.Context, rec domain.QuizRecord) {
	if c.results == nil {
		return
	}
	if err := c.results.Save(context.WithoutCancel(ctx), rec); err != nil {
		c.log.ErrorContext(ctx, "save quiz result failed",
			slog.String("record_id", rec.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// ExitQuiz abandons the quiz and returns to Learn. No result is kept.
func (c *Controller) ExitQuiz() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if _, ok := c.view.(domain.QuizView); !ok {
		return Snapshot{}, c.invalid("exit quiz")
	}
	c.enterLearnLocked()
	return c.snapshotLocked(), nil
}

// Restart leaves Stats and fetches a fresh list for the same topic.
func (c *Controller) Restart() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if _, ok := c.view.(domain.StatsView); !ok {
		return Snapshot{}, c.invalid("restart")
	}
	c.enterLearnLocked()
	c.startFetchLocked()
	return c.snapshotLocked(), nil
}

// Home leaves Stats for Learn, keeping the current words.
func (c *Controller) Home() (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touchLocked()

	if _, ok := c.view.(domain.StatsView); !ok {
		return Snapshot{}, c.invalid("home")
	}
	c.enterLearnLocked()
	return c.snapshotLocked(), nil
}

// Await blocks until no fetch is in flight, then returns the state.
func (c *Controller) Await(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	c.touchLocked()
	if !c.loading {
		defer c.mu.Unlock()
		return c.snapshotLocked(), nil
	}
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return c.Snapshot(), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Wait blocks until every fetch goroutine, stale ones included, has returned.
func (c *Controller) Wait() {
	c.fetches.Wait()
}

func (c *Controller) lastActiveAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

func (c *Controller) touchLocked() {
	c.lastActive = c.now()
}

func (c *Controller) enterLearnLocked() {
	c.quiz = nil
	c.lastAnswer = nil
	c.view = domain.LearnView{Topic: c.topic, Words: c.words}
}

func (c *Controller) invalid(op string) error {
	return fmt.Errorf("%s in %s mode: %w", op, c.view.Mode(), domain.ErrInvalidTransition)
}
