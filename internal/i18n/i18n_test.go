package i18n

import (
	"strings"
	"testing"
)

func TestTSubstitutesParams(t *testing.T) {
	got := T("addReminder", P("message", "להתקשר לאמא"), P("datetime", "מחר 15:00"))
	if !strings.Contains(got, "להתקשר לאמא") || !strings.Contains(got, "מחר 15:00") {
		t.Errorf("params not substituted: %q", got)
	}
	if strings.Contains(got, "{{") {
		t.Errorf("placeholder left in output: %q", got)
	}
}

func TestTUnknownKeyReturnsKey(t *testing.T) {
	if got := T("noSuchKey"); got != "noSuchKey" {
		t.Errorf("expected key echoed back, got %q", got)
	}
}

func TestTNoParams(t *testing.T) {
	if got := T("helpText"); got == "" || got == "helpText" {
		t.Errorf("expected help text, got %q", got)
	}
}
