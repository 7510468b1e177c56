// Package flow implements the multi-step dialog state machine.
//
// A flow is started by a trigger command (e.g. "4" for a reminder), then
// consumes subsequent messages from the same user step by step until it
// completes with a finished intent, is cancelled, errors, or expires. At most
// one flow is active per user, and a flow older than the timeout is treated
// as absent and deleted lazily on read.
package flow

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ohadbarr1/dobby/internal/i18n"
)

// Type identifies a multi-step flow.
type Type string

// Supported flow types.
const (
	TypeAddReminder Type = "ADD_REMINDER"
	TypeAddEvent    Type = "ADD_EVENT"
)

// DefaultTimeout is how long a flow stays active without completing.
const DefaultTimeout = 5 * time.Minute

// ActiveFlow is the state of one in-progress dialog.
type ActiveFlow struct {
	Type      Type
	Step      int
	Collected map[string]string
	StartedAt time.Time
}

// Opts holds configuration options for the flow store.
type Opts struct {
	Timeout time.Duration
	Clock   func() time.Time
}

// Option defines a configuration option for the flow store.
type Option func(*Opts)

// WithTimeout overrides the flow expiry timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Opts) {
		o.Timeout = d
	}
}

// WithClock injects a time source, used by tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		o.Clock = now
	}
}

// Store holds the active flow per user, with timeout-based expiry.
// It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	flows   map[string]*ActiveFlow
	timeout time.Duration
	now     func() time.Time
}

// NewStore creates a flow store, applying any provided options.
func NewStore(opts ...Option) *Store {
	cfg := Opts{Timeout: DefaultTimeout, Clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store{
		flows:   make(map[string]*ActiveFlow),
		timeout: cfg.Timeout,
		now:     cfg.Clock,
	}
}

// Get returns the user's active flow, or nil if none exists. An expired flow
// is deleted and reported as absent; the expiry check and the delete happen
// under a single lock acquisition so the state is never freed twice.
func (s *Store) Get(user string) *ActiveFlow {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flows[user]
	if !ok {
		return nil
	}
	if s.now().Sub(f.StartedAt) > s.timeout {
		delete(s.flows, user)
		slog.Debug("flow expired", "user", user, "type", f.Type, "step", f.Step)
		return nil
	}
	return f
}

// Start creates a new flow for the user at step 0, unconditionally replacing
// any prior flow, and returns the first prompt for the flow type.
func (s *Store) Start(user string, t Type) string {
	s.mu.Lock()
	s.flows[user] = &ActiveFlow{
		Type:      t,
		Step:      0,
		Collected: make(map[string]string),
		StartedAt: s.now(),
	}
	s.mu.Unlock()

	slog.Debug("flow started", "user", user, "type", t)
	if t == TypeAddReminder {
		return i18n.T("flowReminderWhat")
	}
	return i18n.T("flowEventTitle")
}

// Cancel deletes the user's active flow, if any. Idempotent.
func (s *Store) Cancel(user string) {
	s.mu.Lock()
	delete(s.flows, user)
	s.mu.Unlock()
}
