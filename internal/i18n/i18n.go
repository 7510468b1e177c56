// Package i18n provides the localized user-facing strings for Dobby.
//
// All group-visible text is Hebrew. Strings are looked up by key and support
// {{name}} parameter substitution.
package i18n

import "strings"

// Param is a single substitution parameter for a localized string.
type Param struct {
	Key   string
	Value string
}

// P builds a Param. Shorthand for call sites.
func P(key, value string) Param {
	return Param{Key: key, Value: value}
}

// T returns the localized string for key with all {{param}} placeholders
// substituted. An unknown key is returned as-is so missing translations are
// visible rather than silent.
func T(key string, params ...Param) string {
	text, ok := he[key]
	if !ok {
		return key
	}
	for _, p := range params {
		text = strings.ReplaceAll(text, "{{"+p.Key+"}}", p.Value)
	}
	return text
}
