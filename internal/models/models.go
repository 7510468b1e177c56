// Package models defines the core data structures shared across Dobby modules.
//
// It contains the intent union produced by the resolution cascade, the
// family/member records backing multi-family routing, and the transport-level
// message types exchanged with messaging services.
package models

import (
	"fmt"
	"time"
)

// IntentType identifies one variant of the closed intent union.
type IntentType string

// Supported intent types. Exactly one is produced per inbound message.
const (
	IntentAddReminder      IntentType = "ADD_REMINDER"
	IntentAddEvent         IntentType = "ADD_EVENT"
	IntentAddShopping      IntentType = "ADD_SHOPPING"
	IntentCompleteShopping IntentType = "COMPLETE_SHOPPING"
	IntentQueryCalendar    IntentType = "QUERY_CALENDAR"
	IntentQueryShopping    IntentType = "QUERY_SHOPPING"
	IntentQueryTasks       IntentType = "QUERY_TASKS"
	IntentHelp             IntentType = "HELP"
	IntentChitchat         IntentType = "CHITCHAT"
)

// Sentinel CHITCHAT reply payloads used by the command matcher to signal the
// AI-mode toggle side effect. They are recognized only by the resolver and
// never reach the dispatcher or the user.
const (
	ToggleAIOnSentinel  = "__TOGGLE_AI_ON__"
	ToggleAIOffSentinel = "__TOGGLE_AI_OFF__"
)

// Recipient selectors for ADD_REMINDER.
const (
	ForWhomSelf = "self"
	ForWhomAll  = "all"
)

// IsValidIntentType checks if the given intent type is one of the closed set.
func IsValidIntentType(t IntentType) bool {
	switch t {
	case IntentAddReminder, IntentAddEvent, IntentAddShopping, IntentCompleteShopping,
		IntentQueryCalendar, IntentQueryShopping, IntentQueryTasks, IntentHelp, IntentChitchat:
		return true
	}
	return false
}

// Intent is the tagged union over the closed intent set. Type selects the
// variant; only the fields belonging to that variant are populated. The JSON
// shape matches the classifier contract, so classifier output unmarshals
// directly into it.
type Intent struct {
	Type      IntentType `json:"intent"`
	Message   string     `json:"message,omitempty"`
	Datetime  string     `json:"datetime,omitempty"`
	ForWhom   string     `json:"forWhom,omitempty"`
	Title     string     `json:"title,omitempty"`
	Start     string     `json:"start,omitempty"`
	End       string     `json:"end,omitempty"`
	Attendees []string   `json:"attendees,omitempty"`
	Items     []string   `json:"items,omitempty"`
	DaysAhead int        `json:"daysAhead,omitempty"`
	Reply     string     `json:"reply,omitempty"`
}

// Validate checks that the intent carries the fields its variant requires.
func (i *Intent) Validate() error {
	if !IsValidIntentType(i.Type) {
		return fmt.Errorf("unknown intent type '%s'", i.Type)
	}
	switch i.Type {
	case IntentAddReminder:
		if i.Message == "" || i.Datetime == "" {
			return fmt.Errorf("ADD_REMINDER requires message and datetime")
		}
	case IntentAddEvent:
		if i.Title == "" || i.Start == "" || i.End == "" {
			return fmt.Errorf("ADD_EVENT requires title, start and end")
		}
	case IntentAddShopping, IntentCompleteShopping:
		if len(i.Items) == 0 {
			return fmt.Errorf("%s requires at least one item", i.Type)
		}
	case IntentChitchat:
		if i.Reply == "" {
			return fmt.Errorf("CHITCHAT requires a reply")
		}
	}
	return nil
}

// ActionResult is the uniform result returned by the dispatcher for every
// executed intent.
type ActionResult struct {
	Success  bool   `json:"success"`
	Data     any    `json:"data,omitempty"`
	ErrorMsg string `json:"errorMsg,omitempty"`
}

// Conversation turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is a single entry of a user's short-lived conversation
// history, used to give the classifier continuity across messages.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Family represents a registered family group chat.
type Family struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	ChatID         string    `json:"chat_id"`
	Timezone       string    `json:"timezone"`
	BriefingHour   int       `json:"briefing_hour"`
	BriefingMinute int       `json:"briefing_minute"`
	AIMode         bool      `json:"ai_mode"`
	CreatedAt      time.Time `json:"created_at"`
}

// Member roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// FamilyMember represents one person in a family group.
type FamilyMember struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// FamilyContext bundles everything the cascade needs to know about the sender
// of an inbound message: the family, the sending member, and all members.
type FamilyContext struct {
	Family     *Family
	Member     *FamilyMember
	AllMembers []FamilyMember
}

// MemberNames returns the display names of all members, in stored order.
func (c *FamilyContext) MemberNames() []string {
	names := make([]string, 0, len(c.AllMembers))
	for _, m := range c.AllMembers {
		names = append(names, m.Name)
	}
	return names
}

// Reminder is a scheduled one-shot reminder for a family.
type Reminder struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	ForWhom   string    `json:"for_whom"`
	Datetime  time.Time `json:"datetime"`
	Message   string    `json:"message"`
	Sent      bool      `json:"sent"`
	CreatedAt time.Time `json:"created_at"`
	// ChatID is populated by due-reminder queries so the delivery job knows
	// where to send without a second lookup.
	ChatID string `json:"chat_id,omitempty"`
}

// ShoppingItem is one entry of a family's shopping list.
type ShoppingItem struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is an open to-do item for a family.
type Task struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Content   string    `json:"content"`
	Due       string    `json:"due,omitempty"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// CalendarEvent is a stored calendar entry for a family.
type CalendarEvent struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	AllDay    bool      `json:"all_day"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
