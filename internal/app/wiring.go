package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/heartmarshall/myvocab-backend/internal/adapter/clipcache"
	"github.com/heartmarshall/myvocab-backend/internal/adapter/memstore"
	"github.com/heartmarshall/myvocab-backend/internal/adapter/postgres"
	"github.com/heartmarshall/myvocab-backend/internal/adapter/postgres/result"
	"github.com/heartmarshall/myvocab-backend/internal/adapter/provider/anthropic"
	"github.com/heartmarshall/myvocab-backend/internal/adapter/provider/gemini"
	"github.com/heartmarshall/myvocab-backend/internal/config"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
	"github.com/heartmarshall/myvocab-backend/internal/provider"
	"github.com/heartmarshall/myvocab-backend/internal/service/gateway"
	"github.com/heartmarshall/myvocab-backend/internal/transport/rest"
	"github.com/heartmarshall/myvocab-backend/internal/worker"
)

type resultStore interface {
	Save(ctx context.Context, rec domain.QuizRecord) error
	ListBySession(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.QuizRecord, error)
	Summary(ctx context.Context) ([]domain.TopicSummary, error)
}

type textGenerator interface {
	GenerateText(ctx context.Context, req provider.TextRequest) (string, error)
}

type clipCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

type prewarmer interface {
	Prewarm(ctx context.Context, words []domain.WordEntry)
}

type warmer interface {
	Warm(ctx context.Context, word string) error
}

type resultBackend struct {
	repo resultStore
	// ping is nil for the in-memory store.
	ping rest.PingFunc
}

// openResultStore connects to PostgreSQL when a DSN is configured and
// applies pending migrations; otherwise quiz history lives in memory.
func openResultStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (resultBackend, func(), error) {
	if !cfg.Database.Enabled() {
		logger.Info("quiz history kept in memory")
		return resultBackend{repo: memstore.NewResultRepo(memstore.DefaultMaxRecords)}, func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return resultBackend{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return resultBackend{}, nil, fmt.Errorf("migrate: %w", err)
		}
	}

	logger.Info("quiz history stored in postgres")
	return resultBackend{repo: result.New(pool), ping: pool.Ping}, pool.Close, nil
}

func openRedis(cfg config.RedisConfig) *redis.Client {
	if !cfg.Enabled() {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewGateway builds the AI gateway from configuration. rdb may be nil, in
// which case clips are cached on disk when a cache directory is set.
func NewGateway(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) (*gateway.Service, error) {
	text, speech := newProviders(cfg.AI, logger)
	cache, err := newClipCache(cfg.Audio, rdb, logger)
	if err != nil {
		return nil, err
	}
	return gateway.NewService(logger, text, speech, cache, cfg.Vocabulary, cfg.Audio), nil
}

// newProviders returns the text generator selected by cfg.Provider and the
// Gemini speech synthesizer, which is always used for audio.
func newProviders(cfg config.AIConfig, logger *slog.Logger) (textGenerator, *gemini.Provider) {
	gm := gemini.NewProviderWithURL(cfg.GeminiBaseURL, gemini.Options{
		APIKey:      cfg.APIKey,
		TextModel:   cfg.TextModel,
		SpeechModel: cfg.SpeechModel,
		Timeout:     cfg.Timeout,
	}, logger)

	if cfg.Provider == config.ProviderAnthropic {
		return anthropic.NewProvider(anthropic.Options{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AnthropicModel,
		}, logger), gm
	}
	return gm, gm
}

// newClipCache prefers Redis when available, then the disk cache. It returns
// nil when neither is configured.
func newClipCache(cfg config.AudioConfig, rdb *redis.Client, logger *slog.Logger) (clipCache, error) {
	switch {
	case rdb != nil:
		logger.Info("clip cache: redis", slog.Duration("ttl", cfg.CacheTTL))
		return clipcache.NewRedis(rdb, cfg.CacheTTL), nil
	case cfg.CacheDir != "":
		disk, err := clipcache.NewDisk(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		logger.Info("clip cache: disk", slog.String("dir", cfg.CacheDir))
		return disk, nil
	default:
		return nil, nil
	}
}

// newPrewarmer returns the asynq queue when Redis is configured, the
// in-process pool otherwise, or nil when pre-warming is disabled.
func newPrewarmer(cfg *config.Config, w warmer, logger *slog.Logger) (prewarmer, func(), error) {
	if !cfg.Worker.PrewarmEnabled {
		return nil, func() {}, nil
	}

	if cfg.Redis.Enabled() {
		q := worker.NewQueue(logger, cfg.Redis, cfg.Worker, w)
		if err := q.Start(); err != nil {
			return nil, nil, fmt.Errorf("start prewarm queue: %w", err)
		}
		logger.Info("pronunciation prewarm: asynq", slog.String("queue", cfg.Worker.Queue))
		return q, q.Stop, nil
	}

	p := worker.NewPool(logger, w, cfg.Worker.Concurrency, cfg.Worker.TaskTimeout)
	logger.Info("pronunciation prewarm: in-process", slog.Int("concurrency", cfg.Worker.Concurrency))
	return p, p.Stop, nil
}
