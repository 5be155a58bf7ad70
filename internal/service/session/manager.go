package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/myvocab-backend/internal/config"
	"github.com/heartmarshall/myvocab-backend/internal/domain"
)

// ErrSessionLimit is returned by Create when MaxSessions live sessions exist.
var ErrSessionLimit = errors.New("session limit reached")

// Manager owns the live sessions and expires idle ones.
type Manager struct {
	deps
	cfg config.SessionConfig

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Controller

	sweeping bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewManager creates a Manager and starts its sweeper. prewarm may be nil.
// Call Stop on shutdown.
func NewManager(
	log *slog.Logger,
	gen vocabularyGenerator,
	results resultRepo,
	prewarm prewarmer,
	cfg config.SessionConfig,
) *Manager {
	m := newManager(deps{
		gen:          gen,
		results:      results,
		prewarm:      prewarm,
		log:          log.With("service", "session"),
		now:          time.Now,
		fetchTimeout: cfg.FetchTimeout,
	}, cfg)
	m.sweeping = true
	go m.sweepLoop()
	return m
}

func newManager(d deps, cfg config.SessionConfig) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		deps:     d,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[uuid.UUID]*Controller),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Create starts a session on topic (the default topic when empty) and
// kicks off its first fetch.
func (m *Manager) Create(topic string) (*Controller, error) {
	t := domain.DefaultTopic()
	if strings.TrimSpace(topic) != "" {
		parsed, err := domain.ParseTopic(topic)
		if err != nil {
			return nil, err
		}
		t = parsed
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.cfg.MaxSessions {
		m.sweepLocked(m.now())
		if len(m.sessions) >= m.cfg.MaxSessions {
			return nil, ErrSessionLimit
		}
	}

	c := newController(m.ctx, uuid.New(), m.deps, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), t)
	c.mu.Lock()
	c.startFetchLocked()
	c.mu.Unlock()

	m.sessions[c.id] = c
	m.log.Info("session created", slog.String("session_id", c.id.String()), slog.String("topic", string(t)))
	return c, nil
}

// Get returns a live session.
func (m *Manager) Get(id uuid.UUID) (*Controller, error) {
	m.mu.RLock()
	c, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.now())
}

func (m *Manager) sweepLocked(now time.Time) int {
	removed := 0
	for id, c := range m.sessions {
		if now.Sub(c.lastActiveAt()) > m.cfg.TTL {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.log.Info("expired sessions removed", slog.Int("count", removed), slog.Int("remaining", len(m.sessions)))
	}
	return removed
}

func (m *Manager) sweepLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-m.stop:
			return
		}
	}
}

// Stop halts the sweeper, cancels in-flight fetches and waits for them.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.cancel()
	})
	if m.sweeping {
		<-m.done
	}

	m.mu.RLock()
	live := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		live = append(live, c)
	}
	m.mu.RUnlock()

	for _, c := range live {
		c.Wait()
	}
}
