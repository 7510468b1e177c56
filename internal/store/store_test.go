package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ohadbarr1/dobby/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "dobby-test.db")
	s, err := NewSQLiteStore(WithSQLiteDSN(dsn))
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedFamily(t *testing.T, s Store) *models.Family {
	t.Helper()
	f := &models.Family{Name: "כהן", ChatID: "12345@g.us"}
	if err := s.CreateFamily(f); err != nil {
		t.Fatalf("failed to create family: %v", err)
	}
	return f
}

func TestNewSQLiteStoreRequiresDSN(t *testing.T) {
	if _, err := NewSQLiteStore(); err == nil {
		t.Fatal("expected error without DSN")
	}
}

func TestFamilyRoundTrip(t *testing.T) {
	s := newTestStore(t)
	f := seedFamily(t, s)

	if f.ID == 0 {
		t.Error("create should fill the family ID")
	}
	if f.Timezone != DefaultTimezone {
		t.Errorf("default timezone not applied: %q", f.Timezone)
	}

	got, err := s.FamilyByChatID("12345@g.us")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got == nil || got.ID != f.ID || got.Name != "כהן" {
		t.Errorf("unexpected family: %+v", got)
	}

	missing, err := s.FamilyByChatID("nope@g.us")
	if err != nil || missing != nil {
		t.Errorf("absent family should be (nil, nil), got (%+v, %v)", missing, err)
	}
}

func TestUpdateFamilyAIMode(t *testing.T) {
	s := newTestStore(t)
	f := seedFamily(t, s)

	if err := s.UpdateFamilyAIMode(f.ID, true); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, _ := s.FamilyByID(f.ID)
	if !got.AIMode {
		t.Error("ai_mode should be enabled")
	}
}

func TestUpdateFamilySettings(t *testing.T) {
	s := newTestStore(t)
	f := seedFamily(t, s)

	f.BriefingHour = 7
	f.BriefingMinute = 30
	f.Timezone = "Europe/London"
	if err := s.UpdateFamily(f); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, _ := s.FamilyByID(f.ID)
	if got.BriefingHour != 7 || got.BriefingMinute != 30 || got.Timezone != "Europe/London" {
		t.Errorf("settings not persisted: %+v", got)
	}
}

func TestMembers(t *testing.T) {
	s := newTestStore(t)
	f := seedFamily(t, s)

	m := &models.FamilyMember{FamilyID: f.ID, Name: "Ohad", Phone: "972501111111", Role: models.RoleAdmin}
	if err := s.CreateMember(m); err != nil {
		t.Fatalf("create member: %v", err)
	}
	if err := s.CreateMember(&models.FamilyMember{FamilyID: f.ID, Name: "Noa", Phone: "972502222222"}); err != nil {
		t.Fatalf("create member: %v", err)
	}

	members, err := s.MembersByFamily(f.ID)
	if err != nil || len(members) != 2 {
		t.Fatalf("expected 2 members, got %d (%v)", len(members), err)
	}
	// Default role applied.
	if members[1].Role != models.RoleMember {
		t.Errorf("default role not applied: %+v", members[1])
	}

	got, err := s.MemberByPhone(f.ID, "972501111111")
	if err != nil || got == nil || got.Name != "Ohad" {
		t.Errorf("member lookup failed: %+v %v", got, err)
	}
	missing, err := s.MemberByPhone(f.ID, "15550000000")
	if err != nil || missing != nil {
		t.Errorf("absent member should be (nil, nil), got (%+v, %v)", missing, err)
	}

	if err := s.DeleteMember(m.ID); err != nil {
		t.Fatalf("delete member: %v", err)
	}
	members, _ = s.MembersByFamily(f.ID)
	if len(members) != 1 {
		t.Errorf("expected 1 member after delete, got %d", len(members))
	}
}

func TestReminderLifecycle(t *testing.T) {
	s := newTestStore(t)
	f := seedFamily(t, s)

	past := time.Now().Add(-time.Minute).UTC()
	future := time.Now().Add(time.Hour).UTC()
	due := &models.Reminder{FamilyID: f.ID, ForWhom: "Ohad", Datetime: past, Message: "call mom"}
	if err := s.AddReminder(due); err != nil {
		t.Fatalf("add reminder: %v", err)
	}
	if err := s.AddReminder(&models.Reminder{FamilyID: f.ID, ForWhom: "Noa", Datetime: future, Message: "later"}); err != nil {
		t.Fatalf("add reminder: %v", err)
	}

	pending, err := s.DueReminders(time.Now().UTC())
	if err != nil {
		t.Fatalf("due reminders: %v", err)
	}
	if len(pending) != 1 || pending[0].Message != "call mom" {
		t.Fatalf("expected only the past reminder, got %+v", pending)
	}
	if pending[0].ChatID != f.ChatID {
		t.Errorf("due reminder should carry the family chat id, got %q", pending[0].ChatID)
	}

	if err := s.MarkReminderSent(pending[0].ID); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	pending, _ = s.DueReminders(time.Now().UTC())
	if len(pending) != 0 {
		t.Errorf("sent reminders must not come back, got %+v", pending)
	}
}

func TestShoppingLifecycle(t *testing.T) {
	s := newTestStore(t)
	f := seedFamily(t, s)

	if err := s.AddShoppingItems(f.ID, []string{"חלב", "ביצים", "לחם"}); err != nil {
		t.Fatalf("add items: %v", err)
	}
	active, err := s.ActiveShoppingItems(f.ID)
	if err != nil || len(active) != 3 {
		t.Fatalf("expected 3 active items, got %d (%v)", len(active), err)
	}

	n, err := s.CompleteShoppingItems(f.ID, []string{"חלב", "לחם", "שוקולד"})
	if err != nil {
		t.Fatalf("complete items: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 completions, got %d", n)
	}
	active, _ = s.ActiveShoppingItems(f.ID)
	if len(active) != 1 || active[0].Name != "ביצים" {
		t.Errorf("unexpected remaining items: %+v", active)
	}

	n, err = s.CompleteShoppingItems(f.ID, nil)
	if err != nil || n != 0 {
		t.Errorf("empty completion should be a no-op, got (%d, %v)", n, err)
	}
}

func TestTasks(t *testing.T) {
	s := newTestStore(t)
	f := seedFamily(t, s)

	if err := s.AddTask(&models.Task{FamilyID: f.ID, Content: "לקבוע רופא שיניים", Due: "יום חמישי"}); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if err := s.AddTask(&models.Task{FamilyID: f.ID, Content: "בלי תאריך"}); err != nil {
		t.Fatalf("add task: %v", err)
	}

	tasks, err := s.OpenTasks(f.ID)
	if err != nil || len(tasks) != 2 {
		t.Fatalf("expected 2 open tasks, got %d (%v)", len(tasks), err)
	}
	if tasks[0].Due != "יום חמישי" || tasks[1].Due != "" {
		t.Errorf("due handling wrong: %+v", tasks)
	}
}

func TestEventsInRange(t *testing.T) {
	s := newTestStore(t)
	f := seedFamily(t, s)

	today := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	nextWeek := today.AddDate(0, 0, 10)
	if err := s.AddEvent(&models.CalendarEvent{FamilyID: f.ID, Title: "dentist", Start: today, End: today.Add(time.Hour), CreatedBy: "Ohad"}); err != nil {
		t.Fatalf("add event: %v", err)
	}
	if err := s.AddEvent(&models.CalendarEvent{FamilyID: f.ID, Title: "trip", Start: nextWeek, End: nextWeek.Add(time.Hour)}); err != nil {
		t.Fatalf("add event: %v", err)
	}

	events, err := s.EventsInRange(f.ID, today.Add(-time.Hour), today.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("events in range: %v", err)
	}
	if len(events) != 1 || events[0].Title != "dentist" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestPostgresStoreSkipsWithoutDSN(t *testing.T) {
	// Requires a running PostgreSQL instance; set DATABASE_URL to enable.
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	pg, err := NewPostgresStore(WithPostgresDSN(dsn))
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer pg.Close()

	f := &models.Family{Name: "pg-family", ChatID: "pg-test@g.us"}
	if err := pg.CreateFamily(f); err != nil {
		t.Fatalf("create family: %v", err)
	}
	defer pg.db.Exec("DELETE FROM families WHERE id = $1", f.ID)

	got, err := pg.FamilyByChatID("pg-test@g.us")
	if err != nil || got == nil || got.ID != f.ID {
		t.Errorf("family round trip failed: %+v %v", got, err)
	}
}
