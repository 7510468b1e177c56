// Package briefing builds the daily morning summary for a family: today's
// calendar events plus its open tasks.
package briefing

import (
	"fmt"
	"strings"
	"time"

	"github.com/ohadbarr1/dobby/internal/i18n"
	"github.com/ohadbarr1/dobby/internal/models"
)

// briefingStore is the slice of the store the builder reads from.
type briefingStore interface {
	EventsInRange(familyID int64, from, to time.Time) ([]models.CalendarEvent, error)
	OpenTasks(familyID int64) ([]models.Task, error)
}

// Builder assembles briefing texts.
type Builder struct {
	store briefingStore
}

// NewBuilder creates a briefing Builder on top of the given store.
func NewBuilder(store briefingStore) *Builder {
	return &Builder{store: store}
}

// Build renders the briefing for a family at the given moment. "Today" runs
// from local midnight to local midnight in the family's timezone. A section
// whose fetch fails is rendered as empty rather than failing the whole brief.
func (b *Builder) Build(family *models.Family, now time.Time) string {
	loc, err := time.LoadLocation(family.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var lines []string
	lines = append(lines, i18n.T("briefingGreeting"))

	events, err := b.store.EventsInRange(family.ID, dayStart, dayEnd)
	if err != nil {
		events = nil
	}
	if len(events) > 0 {
		lines = append(lines, i18n.T("briefingEventsHeader"))
		for _, e := range events {
			lines = append(lines, formatBriefingEvent(e, loc))
		}
	} else {
		lines = append(lines, i18n.T("briefingNoEvents"))
	}

	lines = append(lines, "")

	tasks, err := b.store.OpenTasks(family.ID)
	if err != nil {
		tasks = nil
	}
	if len(tasks) > 0 {
		lines = append(lines, i18n.T("briefingTasksHeader"))
		for _, task := range tasks {
			line := "  • " + task.Content
			if task.Due != "" {
				line += " (" + task.Due + ")"
			}
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, i18n.T("briefingNoTasks"))
	}

	return strings.Join(lines, "\n")
}

// DueNow reports whether a family's briefing time matches the current
// local wall clock, minute resolution.
func DueNow(family *models.Family, now time.Time) bool {
	loc, err := time.LoadLocation(family.Timezone)
	if err != nil {
		return false
	}
	local := now.In(loc)
	return local.Hour() == family.BriefingHour && local.Minute() == family.BriefingMinute
}

func formatBriefingEvent(e models.CalendarEvent, loc *time.Location) string {
	if e.AllDay {
		return fmt.Sprintf("  • %s (%s)", e.Title, i18n.T("briefingAllDay"))
	}
	line := fmt.Sprintf("  • %s", e.Title)
	if e.CreatedBy != "" {
		line += " (" + e.CreatedBy + ")"
	}
	return line + " " + e.Start.In(loc).Format("15:04")
}
