// Package timeparse converts natural-language Hebrew time expressions into
// ISO 8601 datetime strings using the GenAI backend.
package timeparse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// invalidMarker is what the model is instructed to return for expressions it
// cannot interpret.
const invalidMarker = "INVALID"

// Accepted output layouts. The model is asked for full ISO 8601 but is not
// always precise about seconds or offsets.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Generator produces a completion from a system prompt and a user prompt.
type Generator interface {
	GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Opts holds configuration options for the parser.
type Opts struct {
	Clock func() time.Time
}

// Option defines a configuration option for the parser.
type Option func(*Opts)

// WithClock injects a time source, used by tests to pin the reference time.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) {
		o.Clock = now
	}
}

// Parser resolves natural-language time expressions via the GenAI backend.
type Parser struct {
	gen Generator
	now func() time.Time
}

// NewParser creates a parser over the given generator.
func NewParser(gen Generator, opts ...Option) *Parser {
	cfg := Opts{Clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Parser{gen: gen, now: cfg.Clock}
}

// Parse resolves text into an ISO 8601 datetime string in the given
// timezone. Returns an empty string with nil error when the expression could
// not be understood; errors are reserved for backend failures.
func (p *Parser) Parse(ctx context.Context, text, timezone string) (string, error) {
	system := p.systemPrompt(timezone)
	raw, err := p.gen.GeneratePrompt(ctx, system, text)
	if err != nil {
		return "", fmt.Errorf("time parse completion: %w", err)
	}

	raw = strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
	if raw == "" || raw == invalidMarker {
		slog.Debug("time expression not understood", "text", text)
		return "", nil
	}

	for _, layout := range layouts {
		if _, err := time.Parse(layout, raw); err == nil {
			return raw, nil
		}
	}
	slog.Debug("time parser returned unparseable output", "raw", raw)
	return "", nil
}

func (p *Parser) systemPrompt(timezone string) string {
	return fmt.Sprintf(`You convert Hebrew time descriptions to ISO 8601 datetime strings.
Current datetime: %s
Timezone: %s
Return ONLY the ISO 8601 string, nothing else. No quotes, no explanation.
If you cannot parse the input, return exactly: %s`,
		p.now().UTC().Format(time.RFC3339), timezone, invalidMarker)
}
