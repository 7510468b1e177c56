// Package dispatch executes resolved intents against the store and renders
// the Hebrew responses sent back to the family chat.
package dispatch

import (
	"log/slog"
	"strings"
	"time"

	"github.com/ohadbarr1/dobby/internal/models"
)

// actionStore is the slice of the store the dispatcher needs.
type actionStore interface {
	AddReminder(r *models.Reminder) error
	AddEvent(e *models.CalendarEvent) error
	EventsInRange(familyID int64, from, to time.Time) ([]models.CalendarEvent, error)
	AddShoppingItems(familyID int64, items []string) error
	CompleteShoppingItems(familyID int64, items []string) (int, error)
	ActiveShoppingItems(familyID int64) ([]models.ShoppingItem, error)
	OpenTasks(familyID int64) ([]models.Task, error)
}

// Dispatcher executes intents. It never returns an error to the caller; a
// failed action surfaces as ActionResult{Success: false} so the formatter can
// render a localized apology instead of crashing the message loop.
type Dispatcher struct {
	store actionStore
}

// NewDispatcher creates a new Dispatcher on top of the given store.
func NewDispatcher(store actionStore) *Dispatcher {
	return &Dispatcher{store: store}
}

// Execute runs the action an intent describes. HELP and CHITCHAT have no
// side effects; they succeed trivially and the formatter does the work.
func (d *Dispatcher) Execute(intent *models.Intent, famCtx *models.FamilyContext) models.ActionResult {
	switch intent.Type {
	case models.IntentAddReminder:
		return d.addReminder(intent, famCtx)
	case models.IntentAddEvent:
		return d.addEvent(intent, famCtx)
	case models.IntentAddShopping:
		return d.addShopping(intent, famCtx)
	case models.IntentCompleteShopping:
		return d.completeShopping(intent, famCtx)
	case models.IntentQueryShopping:
		return d.queryShopping(famCtx)
	case models.IntentQueryTasks:
		return d.queryTasks(famCtx)
	case models.IntentQueryCalendar:
		return d.queryCalendar(intent, famCtx)
	case models.IntentHelp, models.IntentChitchat:
		return models.ActionResult{Success: true}
	default:
		slog.Warn("dispatch: unhandled intent type", "type", intent.Type)
		return failure()
	}
}

// addReminder resolves the recipient selector to display names before
// persisting: "self" becomes the sender, "all" every member of the family.
// Anything else passes through so the classifier can name a member directly.
func (d *Dispatcher) addReminder(intent *models.Intent, famCtx *models.FamilyContext) models.ActionResult {
	forWhom := intent.ForWhom
	switch forWhom {
	case models.ForWhomSelf, "":
		forWhom = famCtx.Member.Name
	case models.ForWhomAll:
		forWhom = strings.Join(famCtx.MemberNames(), " & ")
	}

	when, err := time.Parse(time.RFC3339, intent.Datetime)
	if err != nil {
		slog.Error("dispatch: bad reminder datetime", "datetime", intent.Datetime, "error", err)
		return failure()
	}

	r := &models.Reminder{
		FamilyID: famCtx.Family.ID,
		ForWhom:  forWhom,
		Datetime: when,
		Message:  intent.Message,
	}
	if err := d.store.AddReminder(r); err != nil {
		slog.Error("dispatch: add reminder failed", "family", famCtx.Family.ID, "error", err)
		return failure()
	}
	return models.ActionResult{Success: true, Data: forWhom}
}

func (d *Dispatcher) addEvent(intent *models.Intent, famCtx *models.FamilyContext) models.ActionResult {
	start, err := time.Parse(time.RFC3339, intent.Start)
	if err != nil {
		slog.Error("dispatch: bad event start", "start", intent.Start, "error", err)
		return failure()
	}
	end, err := time.Parse(time.RFC3339, intent.End)
	if err != nil {
		slog.Error("dispatch: bad event end", "end", intent.End, "error", err)
		return failure()
	}

	e := &models.CalendarEvent{
		FamilyID:  famCtx.Family.ID,
		Title:     intent.Title,
		Start:     start,
		End:       end,
		CreatedBy: famCtx.Member.Name,
	}
	if err := d.store.AddEvent(e); err != nil {
		slog.Error("dispatch: add event failed", "family", famCtx.Family.ID, "error", err)
		return failure()
	}
	return models.ActionResult{Success: true}
}

func (d *Dispatcher) addShopping(intent *models.Intent, famCtx *models.FamilyContext) models.ActionResult {
	if err := d.store.AddShoppingItems(famCtx.Family.ID, intent.Items); err != nil {
		slog.Error("dispatch: add shopping failed", "family", famCtx.Family.ID, "error", err)
		return failure()
	}
	return models.ActionResult{Success: true, Data: intent.Items}
}

func (d *Dispatcher) completeShopping(intent *models.Intent, famCtx *models.FamilyContext) models.ActionResult {
	count, err := d.store.CompleteShoppingItems(famCtx.Family.ID, intent.Items)
	if err != nil {
		slog.Error("dispatch: complete shopping failed", "family", famCtx.Family.ID, "error", err)
		return failure()
	}
	return models.ActionResult{Success: true, Data: count}
}

func (d *Dispatcher) queryShopping(famCtx *models.FamilyContext) models.ActionResult {
	items, err := d.store.ActiveShoppingItems(famCtx.Family.ID)
	if err != nil {
		slog.Error("dispatch: query shopping failed", "family", famCtx.Family.ID, "error", err)
		return failure()
	}
	return models.ActionResult{Success: true, Data: items}
}

func (d *Dispatcher) queryTasks(famCtx *models.FamilyContext) models.ActionResult {
	tasks, err := d.store.OpenTasks(famCtx.Family.ID)
	if err != nil {
		slog.Error("dispatch: query tasks failed", "family", famCtx.Family.ID, "error", err)
		return failure()
	}
	return models.ActionResult{Success: true, Data: tasks}
}

func (d *Dispatcher) queryCalendar(intent *models.Intent, famCtx *models.FamilyContext) models.ActionResult {
	days := intent.DaysAhead
	if days <= 0 {
		days = 7
	}
	now := time.Now().UTC()
	events, err := d.store.EventsInRange(famCtx.Family.ID, now, now.AddDate(0, 0, days))
	if err != nil {
		slog.Error("dispatch: query calendar failed", "family", famCtx.Family.ID, "error", err)
		return failure()
	}
	return models.ActionResult{Success: true, Data: events}
}

func failure() models.ActionResult {
	return models.ActionResult{Success: false}
}
