// Package gateway turns the external generative-AI service into vocabulary
// lists and playable pronunciations.
package gateway

import (
	"context"
	"log/slog"
	"sync"

	"github.com/heartmarshall/myvocab-backend/internal/audio"
	"github.com/heartmarshall/myvocab-backend/internal/config"
	"github.com/heartmarshall/myvocab-backend/internal/provider"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type textGenerator interface {
	GenerateText(ctx context.Context, req provider.TextRequest) (string, error)
}

type speechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, req provider.SpeechRequest) (provider.SpeechResult, error)
}

type clipCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Service is the AI gateway.
type Service struct {
	text   textGenerator
	speech speechSynthesizer
	cache  clipCache
	output func() *audio.Context

	vocab config.VocabularyConfig
	audio config.AudioConfig

	plays sync.WaitGroup
	log   *slog.Logger
}

// NewService creates the gateway. cache may be nil.
func NewService(
	log *slog.Logger,
	text textGenerator,
	speech speechSynthesizer,
	cache clipCache,
	vocab config.VocabularyConfig,
	audioCfg config.AudioConfig,
) *Service {
	return &Service{
		text:   text,
		speech: speech,
		cache:  cache,
		output: audio.Shared,
		vocab:  vocab,
		audio:  audioCfg,
		log:    log.With("service", "gateway"),
	}
}

// Wait blocks until every in-flight Play has finished.
func (s *Service) Wait() {
	s.plays.Wait()
}
