// Package store provides storage backends for Dobby.
//
// Families, members, reminders, shopping items, tasks and calendar events
// are persisted in either SQLite (single-host deployments) or PostgreSQL.
// Both backends share the same schema shape and satisfy the Store interface.
package store

import (
	"time"

	"github.com/ohadbarr1/dobby/internal/models"
)

// Store is the persistence interface consumed by the bot, dispatcher and
// admin API. Lookup methods return (nil, nil) when the record is absent.
type Store interface {
	CreateFamily(f *models.Family) error
	FamilyByChatID(chatID string) (*models.Family, error)
	FamilyByID(id int64) (*models.Family, error)
	AllFamilies() ([]models.Family, error)
	UpdateFamily(f *models.Family) error
	UpdateFamilyAIMode(id int64, aiMode bool) error

	CreateMember(m *models.FamilyMember) error
	MembersByFamily(familyID int64) ([]models.FamilyMember, error)
	MemberByPhone(familyID int64, phone string) (*models.FamilyMember, error)
	DeleteMember(id int64) error

	AddReminder(r *models.Reminder) error
	DueReminders(now time.Time) ([]models.Reminder, error)
	MarkReminderSent(id int64) error

	AddShoppingItems(familyID int64, items []string) error
	CompleteShoppingItems(familyID int64, items []string) (int, error)
	ActiveShoppingItems(familyID int64) ([]models.ShoppingItem, error)

	AddTask(t *models.Task) error
	OpenTasks(familyID int64) ([]models.Task, error)

	AddEvent(e *models.CalendarEvent) error
	EventsInRange(familyID int64, from, to time.Time) ([]models.CalendarEvent, error)

	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) {
		o.DSN = dsn
	}
}
