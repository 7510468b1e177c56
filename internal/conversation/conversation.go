// Package conversation provides the per-user short-lived conversation store.
//
// The store keeps the last few turns exchanged with each user so the
// classifier can resolve follow-up messages in context. Entries live only in
// memory for the lifetime of the process; the per-user history is capped and
// trimmed oldest-first.
package conversation

import (
	"log/slog"
	"sync"

	"github.com/ohadbarr1/dobby/internal/models"
)

// DefaultMaxTurns is the per-user history cap.
const DefaultMaxTurns = 3

// Opts holds configuration options for the conversation store.
type Opts struct {
	MaxTurns int
}

// Option defines a configuration option for the conversation store.
type Option func(*Opts)

// WithMaxTurns overrides the per-user history cap.
func WithMaxTurns(n int) Option {
	return func(o *Opts) {
		o.MaxTurns = n
	}
}

// Store is an in-memory, per-user conversation history with a fixed cap.
// It is safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	turns    map[string][]models.ConversationTurn
	maxTurns int
}

// NewStore creates a conversation store, applying any provided options.
func NewStore(opts ...Option) *Store {
	cfg := Opts{MaxTurns: DefaultMaxTurns}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	return &Store{
		turns:    make(map[string][]models.ConversationTurn),
		maxTurns: cfg.MaxTurns,
	}
}

// Record appends a turn to the user's history, dropping the oldest entries
// when the cap is exceeded.
func (s *Store) Record(user, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.turns[user], models.ConversationTurn{Role: role, Content: content})
	if len(entries) > s.maxTurns {
		entries = entries[len(entries)-s.maxTurns:]
	}
	s.turns[user] = entries
	slog.Debug("conversation turn recorded", "user", user, "role", role, "history_len", len(entries))
}

// History returns a copy of the user's current history, oldest first.
// Returns an empty slice when the user has no recorded turns.
func (s *Store) History(user string) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.turns[user]
	out := make([]models.ConversationTurn, len(entries))
	copy(out, entries)
	return out
}
