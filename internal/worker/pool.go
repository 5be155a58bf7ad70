package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// Pool pre-warms clips on at most `concurrency` goroutines. Words already in
// flight are not dispatched again.
type Pool struct {
	warmer  warmer
	sem     chan struct{}
	timeout time.Duration
	log     *slog.Logger

	wg sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
	stopped  bool
}

// NewPool creates an in-process dispatcher.
func NewPool(log *slog.Logger, w warmer, concurrency int, timeout time.Duration) *Pool {
	return &Pool{
		warmer:   w,
		sem:      make(chan struct{}, max(concurrency, 1)),
		timeout:  timeout,
		log:      log.With("service", "prewarm"),
		inflight: make(map[string]struct{}),
	}
}

// Prewarm schedules every distinct word and returns immediately. The work
// outlives ctx and is bounded by the pool timeout.
// A nil Pool is a no-op.
func (p *Pool) Prewarm(_ context.Context, entries []domain.WordEntry) {
	if p == nil {
		return
	}
	for _, word := range uniqueWords(entries) {
		if !p.claim(word) {
			continue
		}
		go p.run(word)
	}
}

func (p *Pool) claim(word string) bool {
	key := domain.NormalizeText(word)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return false
	}
	if _, busy := p.inflight[key]; busy {
		return false
	}
	p.inflight[key] = struct{}{}
	p.wg.Add(1)
	return true
}

func (p *Pool) release(word string) {
	p.mu.Lock()
	delete(p.inflight, domain.NormalizeText(word))
	p.mu.Unlock()
	p.wg.Done()
}

func (p *Pool) run(word string) {
	defer p.release(word)

	p.sem <- struct{}{}
	defer func() { <-p.sem }()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.warmer.Warm(ctx, word); err != nil {
		p.log.Warn("prewarm failed",
			slog.String("word", word),
			slog.String("error", err.Error()),
		)
	}
}

// Stop rejects new words and drains the scheduled ones. Each word is
// bounded by the pool timeout.
func (p *Pool) Stop() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.wg.Wait()
}
