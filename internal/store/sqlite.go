package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ohadbarr1/dobby/internal/models"
)

// DefaultDirPermissions defines the default permissions for database
// directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// Compile-time check that SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is the SQLite-backed store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN (a file path).
// The containing directory is created if missing and the schema is applied.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		return nil, fmt.Errorf("apply sqlite migrations: %w", err)
	}

	slog.Debug("SQLite store initialized", "path", cfg.DSN)
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateFamily(f *models.Family) error {
	if f.Timezone == "" {
		f.Timezone = DefaultTimezone
	}
	res, err := s.db.Exec(
		`INSERT INTO families (name, chat_id, timezone) VALUES (?, ?, ?)`,
		f.Name, f.ChatID, f.Timezone,
	)
	if err != nil {
		return fmt.Errorf("create family: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create family id: %w", err)
	}
	created, err := s.FamilyByID(id)
	if err != nil {
		return err
	}
	*f = *created
	return nil
}

func (s *SQLiteStore) FamilyByChatID(chatID string) (*models.Family, error) {
	return s.scanFamily(s.db.QueryRow(
		`SELECT id, name, chat_id, timezone, briefing_hour, briefing_minute, ai_mode, created_at
		 FROM families WHERE chat_id = ?`, chatID))
}

func (s *SQLiteStore) FamilyByID(id int64) (*models.Family, error) {
	return s.scanFamily(s.db.QueryRow(
		`SELECT id, name, chat_id, timezone, briefing_hour, briefing_minute, ai_mode, created_at
		 FROM families WHERE id = ?`, id))
}

func (s *SQLiteStore) scanFamily(row *sql.Row) (*models.Family, error) {
	var f models.Family
	err := row.Scan(&f.ID, &f.Name, &f.ChatID, &f.Timezone, &f.BriefingHour, &f.BriefingMinute, &f.AIMode, &f.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan family: %w", err)
	}
	return &f, nil
}

func (s *SQLiteStore) AllFamilies() ([]models.Family, error) {
	rows, err := s.db.Query(
		`SELECT id, name, chat_id, timezone, briefing_hour, briefing_minute, ai_mode, created_at
		 FROM families ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list families: %w", err)
	}
	defer rows.Close()

	var out []models.Family
	for rows.Next() {
		var f models.Family
		if err := rows.Scan(&f.ID, &f.Name, &f.ChatID, &f.Timezone, &f.BriefingHour, &f.BriefingMinute, &f.AIMode, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan family: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateFamily(f *models.Family) error {
	_, err := s.db.Exec(
		`UPDATE families SET name = ?, timezone = ?, briefing_hour = ?, briefing_minute = ?, ai_mode = ? WHERE id = ?`,
		f.Name, f.Timezone, f.BriefingHour, f.BriefingMinute, f.AIMode, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update family: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateFamilyAIMode(id int64, aiMode bool) error {
	_, err := s.db.Exec(`UPDATE families SET ai_mode = ? WHERE id = ?`, aiMode, id)
	if err != nil {
		return fmt.Errorf("update family ai_mode: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateMember(m *models.FamilyMember) error {
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	res, err := s.db.Exec(
		`INSERT INTO members (family_id, name, phone, role) VALUES (?, ?, ?, ?)`,
		m.FamilyID, m.Name, m.Phone, m.Role,
	)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create member id: %w", err)
	}
	m.ID = id
	return nil
}

func (s *SQLiteStore) MembersByFamily(familyID int64) ([]models.FamilyMember, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, name, phone, role, created_at FROM members WHERE family_id = ? ORDER BY id`,
		familyID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []models.FamilyMember
	for rows.Next() {
		var m models.FamilyMember
		if err := rows.Scan(&m.ID, &m.FamilyID, &m.Name, &m.Phone, &m.Role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MemberByPhone(familyID int64, phone string) (*models.FamilyMember, error) {
	var m models.FamilyMember
	err := s.db.QueryRow(
		`SELECT id, family_id, name, phone, role, created_at FROM members WHERE family_id = ? AND phone = ?`,
		familyID, phone,
	).Scan(&m.ID, &m.FamilyID, &m.Name, &m.Phone, &m.Role, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("member by phone: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) DeleteMember(id int64) error {
	_, err := s.db.Exec(`DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddReminder(r *models.Reminder) error {
	res, err := s.db.Exec(
		`INSERT INTO reminders (family_id, for_whom, datetime, message) VALUES (?, ?, ?, ?)`,
		r.FamilyID, r.ForWhom, r.Datetime, r.Message,
	)
	if err != nil {
		return fmt.Errorf("add reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add reminder id: %w", err)
	}
	r.ID = id
	return nil
}

func (s *SQLiteStore) DueReminders(now time.Time) ([]models.Reminder, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.family_id, r.for_whom, r.datetime, r.message, r.sent, r.created_at, f.chat_id
		 FROM reminders r JOIN families f ON f.id = r.family_id
		 WHERE r.sent = 0 AND r.datetime <= ? ORDER BY r.datetime`, now)
	if err != nil {
		return nil, fmt.Errorf("due reminders: %w", err)
	}
	defer rows.Close()

	var out []models.Reminder
	for rows.Next() {
		var r models.Reminder
		if err := rows.Scan(&r.ID, &r.FamilyID, &r.ForWhom, &r.Datetime, &r.Message, &r.Sent, &r.CreatedAt, &r.ChatID); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) MarkReminderSent(id int64) error {
	_, err := s.db.Exec(`UPDATE reminders SET sent = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddShoppingItems(familyID int64, items []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("add shopping items: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.Exec(`INSERT INTO shopping_items (family_id, name) VALUES (?, ?)`, familyID, item); err != nil {
			return fmt.Errorf("add shopping item %q: %w", item, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CompleteShoppingItems(familyID int64, items []string) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(items))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(items)+1)
	args = append(args, familyID)
	for _, item := range items {
		args = append(args, item)
	}
	res, err := s.db.Exec(
		`UPDATE shopping_items SET done = 1 WHERE family_id = ? AND done = 0 AND name IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("complete shopping items: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete shopping items count: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) ActiveShoppingItems(familyID int64) ([]models.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, name, done, created_at FROM shopping_items WHERE family_id = ? AND done = 0 ORDER BY id`,
		familyID)
	if err != nil {
		return nil, fmt.Errorf("active shopping items: %w", err)
	}
	defer rows.Close()

	var out []models.ShoppingItem
	for rows.Next() {
		var it models.ShoppingItem
		if err := rows.Scan(&it.ID, &it.FamilyID, &it.Name, &it.Done, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddTask(t *models.Task) error {
	res, err := s.db.Exec(
		`INSERT INTO tasks (family_id, content, due) VALUES (?, ?, ?)`,
		t.FamilyID, t.Content, nullString(t.Due),
	)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add task id: %w", err)
	}
	t.ID = id
	return nil
}

func (s *SQLiteStore) OpenTasks(familyID int64) ([]models.Task, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, content, due, done, created_at FROM tasks WHERE family_id = ? AND done = 0 ORDER BY id`,
		familyID)
	if err != nil {
		return nil, fmt.Errorf("open tasks: %w", err)
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		var t models.Task
		var due sql.NullString
		if err := rows.Scan(&t.ID, &t.FamilyID, &t.Content, &due, &t.Done, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Due = due.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddEvent(e *models.CalendarEvent) error {
	res, err := s.db.Exec(
		`INSERT INTO events (family_id, title, start_at, end_at, all_day, created_by) VALUES (?, ?, ?, ?, ?, ?)`,
		e.FamilyID, e.Title, e.Start, e.End, e.AllDay, nullString(e.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("add event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add event id: %w", err)
	}
	e.ID = id
	return nil
}

func (s *SQLiteStore) EventsInRange(familyID int64, from, to time.Time) ([]models.CalendarEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, title, start_at, end_at, all_day, created_by, created_at
		 FROM events WHERE family_id = ? AND start_at >= ? AND start_at < ? ORDER BY start_at`,
		familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("events in range: %w", err)
	}
	defer rows.Close()

	var out []models.CalendarEvent
	for rows.Next() {
		var e models.CalendarEvent
		var createdBy sql.NullString
		if err := rows.Scan(&e.ID, &e.FamilyID, &e.Title, &e.Start, &e.End, &e.AllDay, &createdBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.CreatedBy = createdBy.String
		out = append(out, e)
	}
	return out, rows.Err()
}
