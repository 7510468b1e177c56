package command

import (
	"reflect"
	"testing"

	"github.com/ohadbarr1/dobby/internal/flow"
	"github.com/ohadbarr1/dobby/internal/models"
)

func TestMatchShortcutsAndSynonyms(t *testing.T) {
	cases := []struct {
		text string
		want models.IntentType
	}{
		{"1", models.IntentQueryShopping},
		{"קניות", models.IntentQueryShopping},
		{"רשימת קניות", models.IntentQueryShopping},
		{"2", models.IntentQueryTasks},
		{"משימות", models.IntentQueryTasks},
		{"3", models.IntentQueryCalendar},
		{"יומן", models.IntentQueryCalendar},
		{"לוח שנה", models.IntentQueryCalendar},
		{"7", models.IntentHelp},
		{"עזרה", models.IntentHelp},
		{"תפריט", models.IntentHelp},
	}
	for _, tc := range cases {
		got := Match(tc.text)
		if got == nil || got.Type != tc.want {
			t.Errorf("Match(%q) = %+v, want type %s", tc.text, got, tc.want)
		}
	}
}

func TestMatchSynonymsStructurallyEqual(t *testing.T) {
	pairs := [][2]string{
		{"1", "קניות"},
		{"2", "משימות"},
		{"3", "יומן"},
		{"7", "עזרה"},
	}
	for _, p := range pairs {
		a, b := Match(p[0]), Match(p[1])
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Match(%q)=%+v and Match(%q)=%+v should be structurally equal", p[0], a, p[1], b)
		}
	}
}

func TestMatchDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		a := Match("6 חלב, ביצים")
		b := Match("6 חלב, ביצים")
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("Match is not deterministic: %+v vs %+v", a, b)
		}
	}
}

func TestMatchCalendarDaysAhead(t *testing.T) {
	got := Match("3")
	if got.DaysAhead != QueryCalendarDays {
		t.Errorf("calendar shortcut should carry daysAhead=%d, got %d", QueryCalendarDays, got.DaysAhead)
	}
}

func TestMatchAddShopping(t *testing.T) {
	got := Match("6 milk, eggs  bread")
	if got == nil || got.Type != models.IntentAddShopping {
		t.Fatalf("expected ADD_SHOPPING, got %+v", got)
	}
	want := []string{"milk", "eggs", "bread"}
	if !reflect.DeepEqual(got.Items, want) {
		t.Errorf("items = %v, want %v", got.Items, want)
	}

	kw := Match("הוסף לקניות milk, eggs")
	if kw == nil || kw.Type != models.IntentAddShopping || len(kw.Items) != 2 {
		t.Errorf("keyword form should match too, got %+v", kw)
	}
}

func TestMatchAddShoppingEmptyRemainder(t *testing.T) {
	if got := Match("6   "); got != nil {
		t.Errorf("shortcut with blank remainder should not match, got %+v", got)
	}
	if got := Match("6"); got != nil {
		t.Errorf("bare '6' should not match, got %+v", got)
	}
}

func TestMatchCompleteShopping(t *testing.T) {
	got := Match("קניתי חלב")
	if got == nil || got.Type != models.IntentCompleteShopping {
		t.Fatalf("expected COMPLETE_SHOPPING, got %+v", got)
	}
	if len(got.Items) != 1 || got.Items[0] != "חלב" {
		t.Errorf("unexpected items: %v", got.Items)
	}
}

func TestMatchModeToggles(t *testing.T) {
	on := Match("מצב חכם")
	if on == nil || on.Type != models.IntentChitchat || on.Reply != models.ToggleAIOnSentinel {
		t.Fatalf("expected AI-on sentinel, got %+v", on)
	}
	off := Match("מצב רגיל")
	if off == nil || off.Reply != models.ToggleAIOffSentinel {
		t.Fatalf("expected AI-off sentinel, got %+v", off)
	}

	if enable, ok := IsToggleSentinel(on); !ok || !enable {
		t.Error("AI-on sentinel not recognized")
	}
	if enable, ok := IsToggleSentinel(off); !ok || enable {
		t.Error("AI-off sentinel not recognized")
	}
	if _, ok := IsToggleSentinel(&models.Intent{Type: models.IntentChitchat, Reply: "hi"}); ok {
		t.Error("ordinary chitchat must not be treated as a toggle")
	}
}

func TestMatchNoMatchReturnsNil(t *testing.T) {
	for _, text := range []string{"", "hello there", "תזכיר לי משהו מחר", "8"} {
		if got := Match(text); got != nil {
			t.Errorf("Match(%q) = %+v, want nil", text, got)
		}
	}
}

func TestFlowTriggersNotMatchedDirectly(t *testing.T) {
	// Flow triggers bypass direct intent production.
	for _, text := range []string{"4", "תזכורת", "5", "אירוע", "הוסף אירוע"} {
		if got := Match(text); got != nil {
			t.Errorf("Match(%q) = %+v, flow triggers must return nil", text, got)
		}
	}
}

func TestFlowTrigger(t *testing.T) {
	cases := []struct {
		text string
		want flow.Type
	}{
		{"4", flow.TypeAddReminder},
		{"תזכורת", flow.TypeAddReminder},
		{"5", flow.TypeAddEvent},
		{"אירוע", flow.TypeAddEvent},
		{"הוסף אירוע", flow.TypeAddEvent},
		{" 4 ", flow.TypeAddReminder},
	}
	for _, tc := range cases {
		got, ok := FlowTrigger(tc.text)
		if !ok || got != tc.want {
			t.Errorf("FlowTrigger(%q) = (%v, %v), want %s", tc.text, got, ok, tc.want)
		}
	}
	if _, ok := FlowTrigger("hello"); ok {
		t.Error("FlowTrigger should not match arbitrary text")
	}
}

func TestSplitItemsIdempotentOnWhitespace(t *testing.T) {
	got := SplitItems("milk, eggs  bread")
	want := []string{"milk", "eggs", "bread"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitItems = %v, want %v", got, want)
	}
	// Splitting the joined result again yields the same items.
	again := SplitItems("milk eggs bread")
	if !reflect.DeepEqual(again, want) {
		t.Errorf("SplitItems not idempotent: %v", again)
	}
}

func TestSplitItemsBlankOnly(t *testing.T) {
	if got := SplitItems("  ,  , "); len(got) != 0 {
		t.Errorf("expected no items, got %v", got)
	}
}
