// Package command implements the deterministic command matcher.
//
// It maps the group's fixed Hebrew keywords and numeric menu shortcuts to
// intents without involving the classifier. Matching is pure and total: the
// same text always produces the same result, and a nil result tells the
// caller to escalate to the next cascade stage.
package command

import (
	"regexp"
	"strings"

	"github.com/ohadbarr1/dobby/internal/flow"
	"github.com/ohadbarr1/dobby/internal/models"
)

// QueryCalendarDays is the horizon used by the calendar menu shortcut.
const QueryCalendarDays = 7

var (
	// Item lists are split on commas (Latin and Arabic), the vav
	// conjunction, and whitespace.
	itemDelimiters = regexp.MustCompile(`[,،ו\s]+`)

	addShoppingNumeric = regexp.MustCompile(`^6\s+(.+)$`)
	addShoppingKeyword = regexp.MustCompile(`^הוסף לקניות\s+(.+)$`)
	completeShopping   = regexp.MustCompile(`^קניתי\s+(.+)$`)
)

// Match maps fixed keywords and numeric shortcuts to intents. Returns nil
// when nothing matches, including for the flow-trigger shortcuts, which are
// recognized separately by FlowTrigger so the caller can start a dialog
// instead of dispatching an intent.
func Match(text string) *models.Intent {
	trimmed := strings.TrimSpace(text)

	switch trimmed {
	case "7", "עזרה", "תפריט":
		return &models.Intent{Type: models.IntentHelp}
	case "1", "קניות", "רשימת קניות":
		return &models.Intent{Type: models.IntentQueryShopping}
	case "2", "משימות":
		return &models.Intent{Type: models.IntentQueryTasks}
	case "3", "יומן", "לוח שנה":
		return &models.Intent{Type: models.IntentQueryCalendar, DaysAhead: QueryCalendarDays}
	case "מצב חכם":
		return &models.Intent{Type: models.IntentChitchat, Reply: models.ToggleAIOnSentinel}
	case "מצב רגיל":
		return &models.Intent{Type: models.IntentChitchat, Reply: models.ToggleAIOffSentinel}
	}

	if m := firstMatch(trimmed, addShoppingNumeric, addShoppingKeyword); m != "" {
		if items := SplitItems(m); len(items) > 0 {
			return &models.Intent{Type: models.IntentAddShopping, Items: items}
		}
	}

	if m := completeShopping.FindStringSubmatch(trimmed); m != nil {
		if items := SplitItems(m[1]); len(items) > 0 {
			return &models.Intent{Type: models.IntentCompleteShopping, Items: items}
		}
	}

	return nil
}

// FlowTrigger recognizes the flow-start shortcuts. Returns the flow type and
// true on a match.
func FlowTrigger(text string) (flow.Type, bool) {
	switch strings.TrimSpace(text) {
	case "4", "תזכורת":
		return flow.TypeAddReminder, true
	case "5", "אירוע", "הוסף אירוע":
		return flow.TypeAddEvent, true
	}
	return "", false
}

// IsToggleSentinel reports whether the intent is one of the AI-mode toggle
// commands, and if so whether it enables AI mode.
func IsToggleSentinel(intent *models.Intent) (enable bool, ok bool) {
	if intent == nil || intent.Type != models.IntentChitchat {
		return false, false
	}
	switch intent.Reply {
	case models.ToggleAIOnSentinel:
		return true, true
	case models.ToggleAIOffSentinel:
		return false, true
	}
	return false, false
}

// SplitItems splits a shopping-item remainder into trimmed, non-blank item
// strings. Idempotent on whitespace.
func SplitItems(s string) []string {
	parts := itemDelimiters.Split(s, -1)
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}

func firstMatch(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}
