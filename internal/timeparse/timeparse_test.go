package timeparse

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubGenerator struct {
	out        string
	err        error
	lastSystem string
	lastUser   string
}

func (g *stubGenerator) GeneratePrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	g.lastSystem = systemPrompt
	g.lastUser = userPrompt
	return g.out, g.err
}

func TestParseValidISO(t *testing.T) {
	g := &stubGenerator{out: "2026-09-01T15:00:00+03:00"}
	p := NewParser(g)
	got, err := p.Parse(context.Background(), "מחר ב-15:00", "Asia/Jerusalem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2026-09-01T15:00:00+03:00" {
		t.Errorf("unexpected result: %q", got)
	}
	if g.lastUser != "מחר ב-15:00" {
		t.Errorf("raw expression should be passed through, got %q", g.lastUser)
	}
}

func TestParseStripsQuotesAndWhitespace(t *testing.T) {
	g := &stubGenerator{out: "  \"2026-09-01T15:00:00Z\"\n"}
	p := NewParser(g)
	got, err := p.Parse(context.Background(), "מחר", "Asia/Jerusalem")
	if err != nil || got != "2026-09-01T15:00:00Z" {
		t.Errorf("got (%q, %v)", got, err)
	}
}

func TestParseWithoutSeconds(t *testing.T) {
	g := &stubGenerator{out: "2026-09-01T15:04"}
	p := NewParser(g)
	got, err := p.Parse(context.Background(), "בשלוש", "Asia/Jerusalem")
	if err != nil || got == "" {
		t.Errorf("minute-precision output should be accepted, got (%q, %v)", got, err)
	}
}

func TestParseInvalidMarker(t *testing.T) {
	g := &stubGenerator{out: "INVALID"}
	p := NewParser(g)
	got, err := p.Parse(context.Background(), "בלה בלה", "Asia/Jerusalem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("INVALID should yield empty, got %q", got)
	}
}

func TestParseGarbageOutput(t *testing.T) {
	g := &stubGenerator{out: "sure! the date is tomorrow"}
	p := NewParser(g)
	got, err := p.Parse(context.Background(), "מחר", "Asia/Jerusalem")
	if err != nil || got != "" {
		t.Errorf("unparseable model output should yield empty, got (%q, %v)", got, err)
	}
}

func TestParseBackendError(t *testing.T) {
	g := &stubGenerator{err: errors.New("connection refused")}
	p := NewParser(g)
	_, err := p.Parse(context.Background(), "מחר", "Asia/Jerusalem")
	if err == nil {
		t.Fatal("backend failure should surface as an error")
	}
}

func TestSystemPromptCarriesTimezoneAndNow(t *testing.T) {
	fixed := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	g := &stubGenerator{out: "INVALID"}
	p := NewParser(g, WithClock(func() time.Time { return fixed }))
	p.Parse(context.Background(), "מחר", "Asia/Jerusalem")
	if !strings.Contains(g.lastSystem, "Asia/Jerusalem") {
		t.Error("system prompt missing timezone")
	}
	if !strings.Contains(g.lastSystem, "2026-08-31T12:00:00Z") {
		t.Errorf("system prompt missing reference time: %q", g.lastSystem)
	}
}
