package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/heartmarshall/myvocab-backend/internal/config"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// uniqueTTL keeps a word from being enqueued twice while its task is pending.
const uniqueTTL = 10 * time.Minute

// Queue dispatches pre-warm tasks through asynq and runs the worker server
// that consumes them.
type Queue struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	cfg    config.WorkerConfig
	log    *slog.Logger
}

// NewQueue creates the asynq client, server and mux. Call Start to begin
// consuming tasks.
func NewQueue(log *slog.Logger, redisCfg config.RedisConfig, cfg config.WorkerConfig, w warmer) *Queue {
	log = log.With("adapter", "asynq")
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Warn("prewarm task failed",
				slog.String("type", task.Type()),
				slog.String("error", err.Error()),
			)
		}),
		Logger:   &slogAdapter{log: log},
		LogLevel: asynq.WarnLevel,
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypePrewarm, handlePrewarm(w))

	return &Queue{
		client: asynq.NewClient(redisOpt),
		server: server,
		mux:    mux,
		cfg:    cfg,
		log:    log,
	}
}

// Start runs the worker server in the background.
func (q *Queue) Start() error {
	if err := q.server.Start(q.mux); err != nil {
		return fmt.Errorf("start asynq server: %w", err)
	}
	q.log.Info("prewarm worker started",
		slog.String("queue", q.cfg.Queue),
		slog.Int("concurrency", q.cfg.Concurrency),
	)
	return nil
}

// Prewarm enqueues one task per distinct word. A nil Queue is a no-op.
func (q *Queue) Prewarm(ctx context.Context, entries []domain.WordEntry) {
	if q == nil {
		return
	}
	for _, word := range uniqueWords(entries) {
		if err := q.enqueue(ctx, word); err != nil {
			q.log.Warn("prewarm enqueue failed",
				slog.String("word", word),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (q *Queue) enqueue(ctx context.Context, word string) error {
	task, err := newPrewarmTask(word,
		asynq.Queue(q.cfg.Queue),
		asynq.MaxRetry(q.cfg.MaxRetry),
		asynq.Timeout(q.cfg.TaskTimeout),
		asynq.Unique(uniqueTTL),
	)
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue prewarm task: %w", err)
	}
	q.log.Debug("prewarm queued", slog.String("id", info.ID), slog.String("word", word))
	return nil
}

// Stop drains the worker server and closes the client.
func (q *Queue) Stop() {
	q.server.Shutdown()
	if err := q.client.Close(); err != nil {
		q.log.Warn("close asynq client", slog.String("error", err.Error()))
	}
}

// slogAdapter satisfies asynq.Logger.
type slogAdapter struct {
	log *slog.Logger
}

func (l *slogAdapter) Debug(args ...any) { l.log.Debug(fmt.Sprint(args...)) }
func (l *slogAdapter) Info(args ...any)  { l.log.Info(fmt.Sprint(args...)) }
func (l *slogAdapter) Warn(args ...any)  { l.log.Warn(fmt.Sprint(args...)) }
func (l *slogAdapter) Error(args ...any) { l.log.Error(fmt.Sprint(args...)) }
func (l *slogAdapter) Fatal(args ...any) { l.log.Error(fmt.Sprint(args...)) }
