package models

import "testing"

func TestIsValidIntentType(t *testing.T) {
	valid := []IntentType{
		IntentAddReminder, IntentAddEvent, IntentAddShopping, IntentCompleteShopping,
		IntentQueryCalendar, IntentQueryShopping, IntentQueryTasks, IntentHelp, IntentChitchat,
	}
	for _, it := range valid {
		if !IsValidIntentType(it) {
			t.Errorf("expected %s to be valid", it)
		}
	}
	if IsValidIntentType("MAKE_COFFEE") {
		t.Error("expected unknown intent type to be invalid")
	}
	if IsValidIntentType("") {
		t.Error("expected empty intent type to be invalid")
	}
}

func TestIntentValidate(t *testing.T) {
	cases := []struct {
		name    string
		intent  Intent
		wantErr bool
	}{
		{"valid reminder", Intent{Type: IntentAddReminder, Message: "call mom", Datetime: "2026-09-01T15:00:00Z", ForWhom: ForWhomAll}, false},
		{"reminder missing datetime", Intent{Type: IntentAddReminder, Message: "call mom"}, true},
		{"valid event", Intent{Type: IntentAddEvent, Title: "dentist", Start: "2026-09-01T10:00:00Z", End: "2026-09-01T11:00:00Z"}, false},
		{"event missing end", Intent{Type: IntentAddEvent, Title: "dentist", Start: "2026-09-01T10:00:00Z"}, true},
		{"valid shopping", Intent{Type: IntentAddShopping, Items: []string{"milk"}}, false},
		{"shopping no items", Intent{Type: IntentAddShopping}, true},
		{"complete no items", Intent{Type: IntentCompleteShopping}, true},
		{"valid query", Intent{Type: IntentQueryShopping}, false},
		{"valid help", Intent{Type: IntentHelp}, false},
		{"valid chitchat", Intent{Type: IntentChitchat, Reply: "hi"}, false},
		{"chitchat no reply", Intent{Type: IntentChitchat}, true},
		{"unknown type", Intent{Type: "DANCE"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.intent.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestFamilyContextMemberNames(t *testing.T) {
	ctx := &FamilyContext{
		AllMembers: []FamilyMember{{Name: "Ohad"}, {Name: "Noa"}},
	}
	names := ctx.MemberNames()
	if len(names) != 2 || names[0] != "Ohad" || names[1] != "Noa" {
		t.Errorf("unexpected member names: %v", names)
	}
}
