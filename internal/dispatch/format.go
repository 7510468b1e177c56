package dispatch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ohadbarr1/dobby/internal/i18n"
	"github.com/ohadbarr1/dobby/internal/models"
)

const datetimeLayout = "Mon 02/01 15:04"

// FormatResponse renders the Hebrew reply for an executed intent.
func FormatResponse(intent *models.Intent, result models.ActionResult, famCtx *models.FamilyContext) string {
	if !result.Success {
		if result.ErrorMsg != "" {
			return i18n.T("error", i18n.P("msg", result.ErrorMsg))
		}
		return i18n.T("errorDefault")
	}

	tz := famCtx.Family.Timezone
	switch intent.Type {
	case models.IntentAddReminder:
		return i18n.T("addReminder",
			i18n.P("message", intent.Message),
			i18n.P("datetime", formatDatetime(intent.Datetime, tz)))

	case models.IntentAddEvent:
		return i18n.T("addEvent",
			i18n.P("title", intent.Title),
			i18n.P("datetime", formatDatetime(intent.Start, tz)))

	case models.IntentAddShopping:
		return i18n.T("addShopping", i18n.P("items", bulletList(intent.Items)))

	case models.IntentCompleteShopping:
		count, _ := result.Data.(int)
		return i18n.T("completeShopping", i18n.P("count", strconv.Itoa(count)))

	case models.IntentQueryShopping:
		items, _ := result.Data.([]models.ShoppingItem)
		if len(items) == 0 {
			return i18n.T("queryShoppingEmpty")
		}
		names := make([]string, 0, len(items))
		for _, it := range items {
			names = append(names, it.Name)
		}
		return i18n.T("queryShoppingHeader") + "\n" + bulletList(names)

	case models.IntentQueryTasks:
		tasks, _ := result.Data.([]models.Task)
		if len(tasks) == 0 {
			return i18n.T("queryTasksEmpty")
		}
		lines := make([]string, 0, len(tasks))
		for _, task := range tasks {
			line := "• " + task.Content
			if task.Due != "" {
				line += " (" + task.Due + ")"
			}
			lines = append(lines, line)
		}
		return i18n.T("queryTasksHeader") + "\n" + strings.Join(lines, "\n")

	case models.IntentQueryCalendar:
		events, _ := result.Data.([]models.CalendarEvent)
		if len(events) == 0 {
			return i18n.T("queryCalendarEmpty")
		}
		lines := make([]string, 0, len(events))
		for _, e := range events {
			lines = append(lines, formatEvent(e, tz))
		}
		return i18n.T("queryCalendarHeader") + "\n" + strings.Join(lines, "\n")

	case models.IntentHelp:
		return i18n.T("helpText")

	case models.IntentChitchat:
		return intent.Reply

	default:
		return i18n.T("errorDefault")
	}
}

func formatEvent(e models.CalendarEvent, tz string) string {
	if e.AllDay {
		day := inZone(e.Start, tz).Format("Mon 02/01")
		return fmt.Sprintf("📅 %s — %s (%s)", day, e.Title, i18n.T("briefingAllDay"))
	}
	line := fmt.Sprintf("📅 %s — %s", inZone(e.Start, tz).Format(datetimeLayout), e.Title)
	if e.CreatedBy != "" {
		line += " (" + e.CreatedBy + ")"
	}
	return line
}

// formatDatetime renders an RFC3339 timestamp in the family's timezone. A
// string that does not parse is shown as-is rather than dropped.
func formatDatetime(iso, tz string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return inZone(t, tz).Format(datetimeLayout)
}

func inZone(t time.Time, tz string) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return t
	}
	return t.In(loc)
}

func bulletList(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, "• "+item)
	}
	return strings.Join(lines, "\n")
}
