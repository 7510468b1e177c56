// Package guard protects the message loop against transport feedback.
//
// The chat transport echoes the bot's own outgoing messages back as new
// inbound events. LoopGuard tracks recently sent message identifiers within
// an expiry window so echoes are dropped before processing. ChatLock holds a
// per-chat busy marker so overlapping events for the same chat are never
// handled concurrently.
package guard

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultWindow is how long an outgoing message ID is remembered.
const DefaultWindow = 30 * time.Second

// Opts holds configuration options for the loop guard.
type Opts struct {
	Window time.Duration
	Clock  func() time.Time
}

// Option defines a configuration option for the loop guard.
type Option func(*Opts)

// WithWindow overrides the dedup window.
func WithWindow(d time.Duration) Option {
	return func(o *Opts) {
		o.Window = d
	}
}

// WithClock injects a time source, used by tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		o.Clock = now
	}
}

// LoopGuard remembers the bot's own outgoing message identifiers for a fixed
// window. It is safe for concurrent use.
type LoopGuard struct {
	mu     sync.Mutex
	sent   map[string]time.Time
	window time.Duration
	now    func() time.Time
}

// NewLoopGuard creates a loop guard, applying any provided options.
func NewLoopGuard(opts ...Option) *LoopGuard {
	cfg := Opts{Window: DefaultWindow, Clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &LoopGuard{
		sent:   make(map[string]time.Time),
		window: cfg.Window,
		now:    cfg.Clock,
	}
}

// RecordOutgoing registers a just-sent message identifier. Empty IDs are
// ignored.
func (g *LoopGuard) RecordOutgoing(messageID string) {
	if messageID == "" {
		return
	}
	g.mu.Lock()
	g.sent[messageID] = g.now().Add(g.window)
	g.mu.Unlock()
	slog.Debug("loop guard recorded outgoing message", "message_id", messageID)
}

// IsOwnMessage reports whether the identifier belongs to a message the bot
// sent within the window. Expired entries are evicted lazily; expiry check
// and delete happen under one lock acquisition.
func (g *LoopGuard) IsOwnMessage(messageID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for id, deadline := range g.sent {
		if now.After(deadline) {
			delete(g.sent, id)
		}
	}
	_, ok := g.sent[messageID]
	return ok
}

// Size returns the number of live entries, after evicting expired ones.
func (g *LoopGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for id, deadline := range g.sent {
		if now.After(deadline) {
			delete(g.sent, id)
		}
	}
	return len(g.sent)
}

// ChatLock is a per-chat busy marker. While a chat is held, further events
// for the same chat are dropped rather than queued; events for other chats
// are unaffected.
type ChatLock struct {
	mu   sync.Mutex
	busy map[string]bool
}

// NewChatLock creates an empty chat lock.
func NewChatLock() *ChatLock {
	return &ChatLock{busy: make(map[string]bool)}
}

// TryAcquire marks the chat as busy. Returns false if it already is.
func (l *ChatLock) TryAcquire(chatID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy[chatID] {
		return false
	}
	l.busy[chatID] = true
	return true
}

// Release clears the chat's busy marker. Must be called on every exit path
// of handling. Idempotent.
func (l *ChatLock) Release(chatID string) {
	l.mu.Lock()
	delete(l.busy, chatID)
	l.mu.Unlock()
}
