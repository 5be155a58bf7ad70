package audio

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of an output Context.
type State string

const (
	StateSuspended State = "suspended"
	StateRunning   State = "running"
	StateClosed    State = "closed"
)

func (s State) String() string { return string(s) }

var (
	ErrContextSuspended = errors.New("audio: context suspended")
	ErrContextClosed    = errors.New("audio: context closed")
)

// Clip is one started playback source as seen by listeners.
type Clip struct {
	ID        uuid.UUID
	Label     string
	Buffer    *Buffer
	StartedAt time.Time
}

// Context is the audio output: every started source is fanned out to the
// currently subscribed listeners, which do the actual playback. Sources are
// independent; starting one never stops another.
//
// A new Context is suspended. It runs after Resume and falls back to
// suspended when its last listener unsubscribes.
type Context struct {
	mu        sync.Mutex
	state     State
	listeners map[uint64]chan Clip
	nextID    uint64

	started atomic.Int64
	dropped atomic.Int64
}

// NewContext creates a suspended Context.
func NewContext() *Context {
	return &Context{
		state:     StateSuspended,
		listeners: make(map[uint64]chan Clip),
	}
}

var (
	sharedOnce sync.Once
	shared     *Context
)

// Shared returns the process-wide output context, creating it on first use.
// It is never torn down.
func Shared() *Context {
	sharedOnce.Do(func() {
		shared = NewContext()
	})
	return shared
}

// State reports the current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resume moves a suspended context to running. Resuming a running context is a no-op.
func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrContextClosed
	}
	c.state = StateRunning
	return nil
}

// Suspend pauses output. Sources started while suspended are rejected.
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return ErrContextClosed
	}
	c.state = StateSuspended
	return nil
}

// Close detaches every listener and rejects further use.
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = StateClosed
	for id, ch := range c.listeners {
		close(ch)
		delete(c.listeners, id)
	}
}

// Start plays buf immediately on every listener. Listeners whose queue is
// full miss the clip.
func (c *Context) Start(buf *Buffer, label string) (Clip, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return Clip{}, ErrContextClosed
	case StateSuspended:
		return Clip{}, ErrContextSuspended
	}

	clip := Clip{
		ID:        uuid.New(),
		Label:     label,
		Buffer:    buf,
		StartedAt: time.Now(),
	}
	c.started.Add(1)

	for _, ch := range c.listeners {
		select {
		case ch <- clip:
		default:
			c.dropped.Add(1)
		}
	}
	return clip, nil
}

// Subscribe registers a listener with a queue of the given size. The
// returned func unsubscribes; the channel is closed afterwards.
func (c *Context) Subscribe(queue int) (<-chan Clip, func()) {
	if queue < 1 {
		queue = 1
	}
	ch := make(chan Clip, queue)

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := c.nextID
	c.nextID++
	c.listeners[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Context) unsubscribe(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.listeners[id]
	if !ok {
		return
	}
	delete(c.listeners, id)
	close(ch)

	if len(c.listeners) == 0 && c.state == StateRunning {
		c.state = StateSuspended
	}
}

// Listeners returns the number of subscribed listeners.
func (c *Context) Listeners() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

// Stats returns the number of started sources and of clips dropped by slow listeners.
func (c *Context) Stats() (started, dropped int64) {
	return c.started.Load(), c.dropped.Load()
}
