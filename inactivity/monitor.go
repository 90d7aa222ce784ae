// Package inactivity logs the user out after a period without interaction, or as soon
// as the gateway reports that the session can no longer be used.
package inactivity

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultTimeout is the idle period after which an armed monitor logs out.
const DefaultTimeout = 15 * time.Minute

// Event is a user interaction that counts as activity.
type Event int

const (
	EventPointerDown Event = iota + 1
	EventKeyPress
	EventScroll
	EventTouchStart
)

func (e Event) String() string {
	switch e {
	case EventPointerDown:
		return "pointer-down"
	case EventKeyPress:
		return "key-press"
	case EventScroll:
		return "scroll"
	case EventTouchStart:
		return "touch-start"
	default:
		return "unknown"
	}
}

// Reason says what triggered a logout.
type Reason int

const (
	ReasonIdle Reason = iota + 1
	ReasonSessionExpired
	ReasonLogout
)

func (r Reason) String() string {
	switch r {
	case ReasonIdle:
		return "idle"
	case ReasonSessionExpired:
		return "session-expired"
	case ReasonLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// Logouter ends the local session. It must be safe to call more than once.
type Logouter interface {
	Logout(ctx context.Context)
}

type Option func(*Monitor)

// WithClock replaces time.Now, for tests that inspect Remaining.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// Monitor is either armed (a deadline is pending) or disarmed.
type Monitor struct {
	logouter Logouter
	timeout  time.Duration
	now      func() time.Time

	mu         sync.Mutex
	armed      bool
	generation uint64
	timer      *time.Timer
	deadline   time.Time
	nextID     int
	listeners  map[int]func(Reason)
}

func New(logouter Logouter, timeout time.Duration, opts ...Option) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m := &Monitor{
		logouter:  logouter,
		timeout:   timeout,
		now:       time.Now,
		listeners: make(map[int]func(Reason)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Monitor) Timeout() time.Duration {
	return m.timeout
}

// OnLogout registers fn to run after every logout the monitor performs.
func (m *Monitor) OnLogout(fn func(Reason)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Arm starts the idle deadline. Arming an armed monitor restarts it.
func (m *Monitor) Arm() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.armed = true
	m.resetLocked()
	log.Debug().Dur("timeout", m.timeout).Msg("Inactivity monitor armed")
}

func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

// Remaining is the time left before an idle logout, or zero when disarmed.
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.armed {
		return 0
	}
	if left := m.deadline.Sub(m.now()); left > 0 {
		return left
	}
	return 0
}

// Observe pushes the deadline forward. Events are ignored while disarmed.
func (m *Monitor) Observe(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.armed {
		return
	}
	log.Trace().Stringer("event", event).Msg("Activity")
	m.resetLocked()
}

// SessionExpired logs out if armed. Subscribe it to the gateway's session-expired signal.
func (m *Monitor) SessionExpired() {
	m.mu.Lock()
	if !m.armed {
		m.mu.Unlock()
		return
	}
	listeners := m.disarmLocked()
	m.mu.Unlock()

	m.finish(context.Background(), ReasonSessionExpired, listeners)
}

// Logout always clears the session, armed or not.
func (m *Monitor) Logout(ctx context.Context) {
	m.mu.Lock()
	listeners := m.disarmLocked()
	m.mu.Unlock()

	m.finish(ctx, ReasonLogout, listeners)
}

// Stop disarms without logging out. The session stays in the store for the next run.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disarmLocked()
}

// resetLocked replaces the pending deadline. A timer from an earlier generation that
// fires anyway is ignored.
func (m *Monitor) resetLocked() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.generation++
	gen := m.generation
	m.deadline = m.now().Add(m.timeout)
	m.timer = time.AfterFunc(m.timeout, func() {
		m.expire(gen)
	})
}

func (m *Monitor) expire(gen uint64) {
	m.mu.Lock()
	if !m.armed || gen != m.generation {
		m.mu.Unlock()
		return
	}
	listeners := m.disarmLocked()
	m.mu.Unlock()

	m.finish(context.Background(), ReasonIdle, listeners)
}

func (m *Monitor) disarmLocked() []func(Reason) {
	m.armed = false
	m.generation++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.deadline = time.Time{}

	listeners := make([]func(Reason), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}

func (m *Monitor) finish(ctx context.Context, reason Reason, listeners []func(Reason)) {
	log.Info().Str("reason", reason.String()).Msg("Logging out")
	m.logouter.Logout(ctx)
	for _, fn := range listeners {
		fn(reason)
	}
}
