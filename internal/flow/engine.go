package flow

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ohadbarr1/dobby/internal/i18n"
	"github.com/ohadbarr1/dobby/internal/models"
)

// TimeParser converts a natural-language time expression into an ISO 8601
// datetime string in the given timezone. An empty string (with nil error)
// means the expression could not be understood.
type TimeParser interface {
	Parse(ctx context.Context, text, timezone string) (string, error)
}

// Result is what advancing a flow by one turn produced: either a follow-up
// prompt (Done=false), a finished intent (Done=true, Intent set), or a
// terminal message (Done=true, Response set).
type Result struct {
	Done     bool
	Response string
	Intent   *models.Intent
}

// Engine advances active flows turn by turn.
type Engine struct {
	store      *Store
	timeParser TimeParser
}

// NewEngine creates a flow engine over the given store and time parser.
func NewEngine(store *Store, tp TimeParser) *Engine {
	return &Engine{store: store, timeParser: tp}
}

// Store exposes the underlying flow store.
func (e *Engine) Store() *Store {
	return e.store
}

// Advance feeds one user message into the user's active flow. A missing or
// expired flow yields a terminal "no active flow" response. A step value
// outside the defined range is flow corruption: the flow is discarded and a
// generic failure prompt returned.
func (e *Engine) Advance(ctx context.Context, user, input string, famCtx *models.FamilyContext) Result {
	f := e.store.Get(user)
	if f == nil {
		return Result{Done: true, Response: i18n.T("flowNoActive")}
	}

	slog.Debug("flow advance", "user", user, "type", f.Type, "step", f.Step)
	if f.Type == TypeAddReminder {
		return e.advanceReminder(ctx, user, f, input, famCtx)
	}
	return e.advanceEvent(ctx, user, f, input, famCtx)
}

func (e *Engine) advanceReminder(ctx context.Context, user string, f *ActiveFlow, input string, famCtx *models.FamilyContext) Result {
	switch f.Step {
	case 0:
		// What to remind about.
		f.Collected["message"] = strings.TrimSpace(input)
		f.Step = 1
		return Result{Response: i18n.T("flowReminderWhen")}

	case 1:
		// When. A bad expression re-prompts the same step without advancing.
		datetime := e.parseTime(ctx, user, input, famCtx)
		if datetime == "" {
			return Result{Response: i18n.T("flowBadTime")}
		}
		f.Collected["datetime"] = datetime
		f.Step = 2
		return Result{Response: i18n.T("flowReminderWhom")}

	case 2:
		// For whom: "2" means everyone, anything else means the sender.
		forWhom := models.ForWhomSelf
		if strings.TrimSpace(input) == "2" {
			forWhom = models.ForWhomAll
		}
		e.store.Cancel(user)

		intent := &models.Intent{
			Type:     models.IntentAddReminder,
			Message:  f.Collected["message"],
			Datetime: f.Collected["datetime"],
			ForWhom:  forWhom,
		}
		slog.Info("reminder flow completed", "user", user, "for_whom", forWhom)
		return Result{Done: true, Intent: intent}

	default:
		slog.Error("reminder flow corrupted", "user", user, "step", f.Step)
		e.store.Cancel(user)
		return Result{Done: true, Response: i18n.T("flowError")}
	}
}

func (e *Engine) advanceEvent(ctx context.Context, user string, f *ActiveFlow, input string, famCtx *models.FamilyContext) Result {
	switch f.Step {
	case 0:
		f.Collected["title"] = strings.TrimSpace(input)
		f.Step = 1
		return Result{Response: i18n.T("flowEventStart")}

	case 1:
		start := e.parseTime(ctx, user, input, famCtx)
		if start == "" {
			return Result{Response: i18n.T("flowBadTimeEvent")}
		}
		f.Collected["start"] = start
		f.Step = 2
		return Result{Response: i18n.T("flowEventEnd")}

	case 2:
		end := e.parseTime(ctx, user, input, famCtx)
		if end == "" {
			return Result{Response: i18n.T("flowBadTimeEvent")}
		}
		e.store.Cancel(user)

		intent := &models.Intent{
			Type:      models.IntentAddEvent,
			Title:     f.Collected["title"],
			Start:     f.Collected["start"],
			End:       end,
			Attendees: []string{},
		}
		slog.Info("event flow completed", "user", user, "title", intent.Title)
		return Result{Done: true, Intent: intent}

	default:
		slog.Error("event flow corrupted", "user", user, "step", f.Step)
		e.store.Cancel(user)
		return Result{Done: true, Response: i18n.T("flowError")}
	}
}

// parseTime runs the external time parser. Parser failures are treated the
// same as an unparseable expression so the user can simply retry the step.
func (e *Engine) parseTime(ctx context.Context, user, input string, famCtx *models.FamilyContext) string {
	tz := ""
	if famCtx != nil && famCtx.Family != nil {
		tz = famCtx.Family.Timezone
	}
	datetime, err := e.timeParser.Parse(ctx, input, tz)
	if err != nil {
		slog.Error("time parser failed", "user", user, "error", err)
		return ""
	}
	return datetime
}
