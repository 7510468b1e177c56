package bot

import (
	"log/slog"
	"strings"

	"github.com/ohadbarr1/dobby/internal/i18n"
	"github.com/ohadbarr1/dobby/internal/models"
)

// Registration and join phrases recognized in unregistered contexts.
var (
	registerPhrases = []string{"הוסף את דובי", "הוסיפו את דובי", "דובי"}
	joinPhrases     = []string{"אני פה", "אני כאן"}
)

// onboardingStore is the store surface onboarding needs.
type onboardingStore interface {
	FamilyByChatID(chatID string) (*models.Family, error)
	CreateFamily(f *models.Family) error
	CreateMember(m *models.FamilyMember) error
	MemberByPhone(familyID int64, phone string) (*models.FamilyMember, error)
}

// handleOnboarding processes messages from unregistered groups or
// unregistered senders. It returns the reply text, or "" to silently ignore
// the message. An unregistered group registers on a registration phrase; a
// registered group adds the sender on a join phrase.
func handleOnboarding(store onboardingStore, chatID, phone, text, groupName string) string {
	trimmed := strings.TrimSpace(text)

	family, err := store.FamilyByChatID(chatID)
	if err != nil {
		slog.Error("onboarding: family lookup failed", "chat", chatID, "error", err)
		return ""
	}

	if family != nil {
		if !matchesAny(trimmed, joinPhrases) {
			return ""
		}
		existing, err := store.MemberByPhone(family.ID, phone)
		if err != nil {
			slog.Error("onboarding: member lookup failed", "family", family.ID, "error", err)
			return ""
		}
		if existing != nil {
			return i18n.T("onboardAlreadyMember", i18n.P("name", existing.Name))
		}

		member := &models.FamilyMember{
			FamilyID: family.ID,
			Name:     contactName(phone),
			Phone:    phone,
		}
		if err := store.CreateMember(member); err != nil {
			slog.Error("onboarding: create member failed", "family", family.ID, "error", err)
			return ""
		}
		slog.Info("new member joined family", "member", member.Name, "family", family.ID)
		return i18n.T("onboardJoined", i18n.P("name", member.Name))
	}

	if !matchesAny(trimmed, registerPhrases) {
		return ""
	}

	name := groupName
	if name == "" {
		name = "משפחה " + phone
	}
	newFamily := &models.Family{Name: name, ChatID: chatID}
	if err := store.CreateFamily(newFamily); err != nil {
		slog.Error("onboarding: create family failed", "chat", chatID, "error", err)
		return ""
	}

	admin := &models.FamilyMember{
		FamilyID: newFamily.ID,
		Name:     contactName(phone),
		Phone:    phone,
		Role:     models.RoleAdmin,
	}
	if err := store.CreateMember(admin); err != nil {
		slog.Error("onboarding: create admin failed", "family", newFamily.ID, "error", err)
		return ""
	}

	slog.Info("new family registered", "family", newFamily.Name, "by", phone)
	return i18n.T("onboardRegistered")
}

func matchesAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if text == p {
			return true
		}
	}
	return false
}

// contactName derives a display name for a new member. WhatsApp contact
// names are not reliably available here, so the phone number stands in;
// admins can rename members through the API.
func contactName(phone string) string {
	return phone
}
