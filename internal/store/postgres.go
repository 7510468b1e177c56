package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/ohadbarr1/dobby/internal/models"
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)

// PostgresStore is the PostgreSQL-backed store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL store with the given DSN and
// applies the schema.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres database: %w", err)
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		return nil, fmt.Errorf("apply postgres migrations: %w", err)
	}

	slog.Debug("Postgres store initialized")
	return &PostgresStore{db: db}, nil
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateFamily(f *models.Family) error {
	if f.Timezone == "" {
		f.Timezone = DefaultTimezone
	}
	err := s.db.QueryRow(
		`INSERT INTO families (name, chat_id, timezone) VALUES ($1, $2, $3)
		 RETURNING id, name, chat_id, timezone, briefing_hour, briefing_minute, ai_mode, created_at`,
		f.Name, f.ChatID, f.Timezone,
	).Scan(&f.ID, &f.Name, &f.ChatID, &f.Timezone, &f.BriefingHour, &f.BriefingMinute, &f.AIMode, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("create family: %w", err)
	}
	return nil
}

func (s *PostgresStore) FamilyByChatID(chatID string) (*models.Family, error) {
	return s.scanFamily(s.db.QueryRow(
		`SELECT id, name, chat_id, timezone, briefing_hour, briefing_minute, ai_mode, created_at
		 FROM families WHERE chat_id = $1`, chatID))
}

func (s *PostgresStore) FamilyByID(id int64) (*models.Family, error) {
	return s.scanFamily(s.db.QueryRow(
		`SELECT id, name, chat_id, timezone, briefing_hour, briefing_minute, ai_mode, created_at
		 FROM families WHERE id = $1`, id))
}

func (s *PostgresStore) scanFamily(row *sql.Row) (*models.Family, error) {
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

func (s *PostgresStore) AllFamilies() ([]models.Family, error) {
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

func (s *PostgresStore) UpdateFamily(f *models.Family) error {
	_, err := s.db.Exec(
		`UPDATE families SET name = $1, timezone = $2, briefing_hour = $3, briefing_minute = $4, ai_mode = $5 WHERE id = $6`,
		f.Name, f.Timezone, f.BriefingHour, f.BriefingMinute, f.AIMode, f.ID,
	)
	if err != nil {
		return fmt.Errorf("update family: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateFamilyAIMode(id int64, aiMode bool) error {
	_, err := s.db.Exec(`UPDATE families SET ai_mode = $1 WHERE id = $2`, aiMode, id)
	if err != nil {
		return fmt.Errorf("update family ai_mode: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateMember(m *models.FamilyMember) error {
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	err := s.db.QueryRow(
		`INSERT INTO members (family_id, name, phone, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		m.FamilyID, m.Name, m.Phone, m.Role,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (s *PostgresStore) MembersByFamily(familyID int64) ([]models.FamilyMember, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, name, phone, role, created_at FROM members WHERE family_id = $1 ORDER BY id`,
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

func (s *PostgresStore) MemberByPhone(familyID int64, phone string) (*models.FamilyMember, error) {
	var m models.FamilyMember
	err := s.db.QueryRow(
		`SELECT id, family_id, name, phone, role, created_at FROM members WHERE family_id = $1 AND phone = $2`,
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

func (s *PostgresStore) DeleteMember(id int64) error {
	_, err := s.db.Exec(`DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddReminder(r *models.Reminder) error {
	err := s.db.QueryRow(
		`INSERT INTO reminders (family_id, for_whom, datetime, message) VALUES ($1, $2, $3, $4) RETURNING id`,
		r.FamilyID, r.ForWhom, r.Datetime, r.Message,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("add reminder: %w", err)
	}
	return nil
}

func (s *PostgresStore) DueReminders(now time.Time) ([]models.Reminder, error) {
	rows, err := s.db.Query(
		`SELECT r.id, r.family_id, r.for_whom, r.datetime, r.message, r.sent, r.created_at, f.chat_id
		 FROM reminders r JOIN families f ON f.id = r.family_id
		 WHERE r.sent = FALSE AND r.datetime <= $1 ORDER BY r.datetime`, now)
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

func (s *PostgresStore) MarkReminderSent(id int64) error {
	_, err := s.db.Exec(`UPDATE reminders SET sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark reminder sent: %w", err)
	}
	return nil
}

func (s *PostgresStore) AddShoppingItems(familyID int64, items []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("add shopping items: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.Exec(`INSERT INTO shopping_items (family_id, name) VALUES ($1, $2)`, familyID, item); err != nil {
			return fmt.Errorf("add shopping item %q: %w", item, err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) CompleteShoppingItems(familyID int64, items []string) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(items))
	args := make([]any, 0, len(items)+1)
	args = append(args, familyID)
	for i, item := range items {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, item)
	}
	res, err := s.db.Exec(
		`UPDATE shopping_items SET done = TRUE WHERE family_id = $1 AND done = FALSE AND name IN (`+strings.Join(placeholders, ",")+`)`,
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

func (s *PostgresStore) ActiveShoppingItems(familyID int64) ([]models.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, name, done, created_at FROM shopping_items WHERE family_id = $1 AND done = FALSE ORDER BY id`,
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

func (s *PostgresStore) AddTask(t *models.Task) error {
	err := s.db.QueryRow(
		`INSERT INTO tasks (family_id, content, due) VALUES ($1, $2, $3) RETURNING id`,
		t.FamilyID, t.Content, nullString(t.Due),
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	return nil
}

func (s *PostgresStore) OpenTasks(familyID int64) ([]models.Task, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, content, due, done, created_at FROM tasks WHERE family_id = $1 AND done = FALSE ORDER BY id`,
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

func (s *PostgresStore) AddEvent(e *models.CalendarEvent) error {
	err := s.db.QueryRow(
		`INSERT INTO events (family_id, title, start_at, end_at, all_day, created_by) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		e.FamilyID, e.Title, e.Start, e.End, e.AllDay, nullString(e.CreatedBy),
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("add event: %w", err)
	}
	return nil
}

func (s *PostgresStore) EventsInRange(familyID int64, from, to time.Time) ([]models.CalendarEvent, error) {
	rows, err := s.db.Query(
		`SELECT id, family_id, title, start_at, end_at, all_day, created_by, created_at
		 FROM events WHERE family_id = $1 AND start_at >= $2 AND start_at < $3 ORDER BY start_at`,
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
