package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{" true ", false, true},
		{"maybe", true, true},
		{"maybe", false, false},
	}

	for _, c := range cases {
		t.Setenv("DOBBY_TEST_BOOL", c.value)
		if got := ParseBoolEnv("DOBBY_TEST_BOOL", c.def); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}

func TestParseBoolEnvUnset(t *testing.T) {
	if got := ParseBoolEnv("DOBBY_TEST_BOOL_UNSET", true); !got {
		t.Error("expected default true for unset variable")
	}
	if got := ParseBoolEnv("DOBBY_TEST_BOOL_UNSET", false); got {
		t.Error("expected default false for unset variable")
	}
}

func TestParseStringEnv(t *testing.T) {
	t.Setenv("DOBBY_TEST_STRING", "value")
	if got := ParseStringEnv("DOBBY_TEST_STRING", "fallback"); got != "value" {
		t.Errorf("expected set value, got %q", got)
	}
	if got := ParseStringEnv("DOBBY_TEST_STRING_UNSET", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}
