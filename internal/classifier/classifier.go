// Package classifier implements the natural-language intent classifier
// adapter.
//
// It is the external boundary to the LLM backend: given the raw message
// text, the sender, the family roster and the recent conversation history,
// it resolves exactly one intent. Every failure path — backend unreachable,
// malformed output, unknown intent variant — resolves to a canned CHITCHAT
// fallback, never an error to the caller.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"

	"github.com/ohadbarr1/dobby/internal/conversation"
	"github.com/ohadbarr1/dobby/internal/i18n"
	"github.com/ohadbarr1/dobby/internal/models"
)

// Generator produces a completion from a message sequence.
type Generator interface {
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

// Request carries everything the classifier needs about one message.
type Request struct {
	Text        string
	Sender      string // canonical phone, keys the conversation history
	SenderName  string
	MemberNames []string
	Timezone    string
}

// Opts holds configuration options for the adapter.
type Opts struct {
	Clock func() time.Time
}

// Option defines a configuration option for the adapter.
type Option func(*Opts)

// WithClock injects a time source for the system prompt's reference time.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		o.Clock = now
	}
}

// Adapter resolves free-form messages into intents via the GenAI backend.
type Adapter struct {
	gen  Generator
	conv *conversation.Store
	now  func() time.Time
}

// New creates a classifier adapter. Successful round-trips are recorded in
// the conversation store to give later calls continuity.
func New(gen Generator, conv *conversation.Store, opts ...Option) *Adapter {
	cfg := Opts{Clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Adapter{gen: gen, conv: conv, now: cfg.Clock}
}

// Classify resolves the message into exactly one intent. Never returns an
// error; all failures resolve to the fallback CHITCHAT intent.
func (a *Adapter) Classify(ctx context.Context, req Request) models.Intent {
	slog.Debug("classifying message", "sender", req.Sender, "text_length", len(req.Text))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(a.systemPrompt(req)),
	}
	for _, turn := range a.conv.History(req.Sender) {
		if turn.Role == models.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(turn.Content))
		} else {
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(req.Text))

	raw, err := a.gen.GenerateWithMessages(ctx, messages)
	if err != nil {
		slog.Error("classifier backend failed", "error", err, "sender", req.Sender)
		return a.fallback()
	}

	intent, ok := parseIntentJSON(raw)
	if !ok {
		slog.Error("classifier output did not parse", "sender", req.Sender, "raw", raw)
		return a.fallback()
	}

	a.conv.Record(req.Sender, models.RoleUser, req.Text)
	a.conv.Record(req.Sender, models.RoleAssistant, raw)
	slog.Info("message classified", "sender", req.Sender, "intent", intent.Type)
	return intent
}

func (a *Adapter) fallback() models.Intent {
	return models.Intent{Type: models.IntentChitchat, Reply: i18n.T("chitchatFallback")}
}

// parseIntentJSON strips formatting noise from the model output and parses
// it as one of the closed intent variants.
func parseIntentJSON(raw string) (models.Intent, bool) {
	cleaned := stripFormatting(raw)
	if cleaned == "" {
		return models.Intent{}, false
	}
	var intent models.Intent
	if err := json.Unmarshal([]byte(cleaned), &intent); err != nil {
		return models.Intent{}, false
	}
	if err := intent.Validate(); err != nil {
		return models.Intent{}, false
	}
	return intent, true
}

// stripFormatting removes markdown code fences and surrounding prose,
// keeping the outermost JSON object.
func stripFormatting(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func (a *Adapter) systemPrompt(req Request) string {
	return fmt.Sprintf(`You are Dobby, a friendly family assistant in a group chat.
The current user is %s. The family members are: %s.
Current datetime (ISO): %s. Timezone: %s.
Parse the user message into exactly one of the defined intents and return valid JSON only — no markdown, no explanation.
For datetimes, always output full ISO 8601 strings.
For ADD_REMINDER forWhom: use "all" if the user says us/we/everyone, a member's name if one is named, else "self".
For CHITCHAT, set reply to a short friendly response as Dobby in the user's language (max 2 sentences, 1 emoji).

Intents and their JSON shapes:

ADD_REMINDER – user wants to be reminded of something
{ "intent": "ADD_REMINDER", "message": "<what>", "datetime": "<ISO8601>", "forWhom": "self" | "all" | "<member name>" }

ADD_EVENT – user wants to add a calendar event
{ "intent": "ADD_EVENT", "title": "<title>", "start": "<ISO8601>", "end": "<ISO8601>", "attendees": ["<name>"] }

ADD_SHOPPING – user wants to add items to the shopping list
{ "intent": "ADD_SHOPPING", "items": ["<item>", ...] }

COMPLETE_SHOPPING – user bought / completed shopping items
{ "intent": "COMPLETE_SHOPPING", "items": ["<item>", ...] }

QUERY_CALENDAR – user wants to see upcoming calendar events
{ "intent": "QUERY_CALENDAR", "daysAhead": <number, default 1> }

QUERY_SHOPPING – user wants to see the current shopping list
{ "intent": "QUERY_SHOPPING" }

QUERY_TASKS – user wants to see tasks or todos
{ "intent": "QUERY_TASKS" }

HELP – user asks what Dobby can do
{ "intent": "HELP" }

CHITCHAT – anything else; reply conversationally
{ "intent": "CHITCHAT", "reply": "<short friendly response>" }

Return only valid JSON. No other text.`,
		req.SenderName,
		strings.Join(req.MemberNames, ", "),
		a.now().UTC().Format(time.RFC3339),
		req.Timezone)
}
