// Package bot wires the message-resolution cascade to the chat transport:
// inbound events pass the loop guard, get a family context, and run through
// flow engine, command matcher and classifier in that order.
package bot

import (
	"context"
	"log/slog"

	"github.com/ohadbarr1/dobby/internal/classifier"
	"github.com/ohadbarr1/dobby/internal/command"
	"github.com/ohadbarr1/dobby/internal/dispatch"
	"github.com/ohadbarr1/dobby/internal/flow"
	"github.com/ohadbarr1/dobby/internal/i18n"
	"github.com/ohadbarr1/dobby/internal/models"
)

// intentClassifier is the classifier surface the resolver consumes.
type intentClassifier interface {
	Classify(ctx context.Context, req classifier.Request) models.Intent
}

// intentDispatcher executes a resolved intent.
type intentDispatcher interface {
	Execute(intent *models.Intent, famCtx *models.FamilyContext) models.ActionResult
}

// aiModeStore applies the AI-mode toggle side effect.
type aiModeStore interface {
	UpdateFamilyAIMode(id int64, aiMode bool) error
}

// Resolver runs the resolution cascade for one inbound message.
type Resolver struct {
	flows      *flow.Engine
	classifier intentClassifier
	dispatcher intentDispatcher
	store      aiModeStore
}

// NewResolver creates a Resolver over the given collaborators.
func NewResolver(flows *flow.Engine, cls intentClassifier, disp intentDispatcher, store aiModeStore) *Resolver {
	return &Resolver{flows: flows, classifier: cls, dispatcher: disp, store: store}
}

// Resolve turns one inbound message into the reply text. The cascade order
// is fixed: active flow, flow trigger, deterministic command, classifier
// (only when the family has AI mode on), static fallback. An empty return
// means no reply should be sent.
func (r *Resolver) Resolve(ctx context.Context, famCtx *models.FamilyContext, text string) string {
	user := famCtx.Member.Phone

	// An in-progress flow consumes the message before anything else.
	if r.flows.Store().Get(user) != nil {
		res := r.flows.Advance(ctx, user, text, famCtx)
		if res.Intent != nil {
			return r.execute(res.Intent, famCtx)
		}
		return res.Response
	}

	if flowType, ok := command.FlowTrigger(text); ok {
		return r.flows.Store().Start(user, flowType)
	}

	if intent := command.Match(text); intent != nil {
		if enable, ok := command.IsToggleSentinel(intent); ok {
			return r.toggleAIMode(famCtx, enable)
		}
		if intent.Type == models.IntentChitchat {
			return intent.Reply
		}
		return r.execute(intent, famCtx)
	}

	if famCtx.Family.AIMode {
		intent := r.classifier.Classify(ctx, classifier.Request{
			Text:        text,
			Sender:      user,
			SenderName:  famCtx.Member.Name,
			MemberNames: famCtx.MemberNames(),
			Timezone:    famCtx.Family.Timezone,
		})
		if intent.Type == models.IntentChitchat {
			return intent.Reply
		}
		return r.execute(&intent, famCtx)
	}

	return i18n.T("noMatchHint")
}

func (r *Resolver) execute(intent *models.Intent, famCtx *models.FamilyContext) string {
	result := r.dispatcher.Execute(intent, famCtx)
	return dispatch.FormatResponse(intent, result, famCtx)
}

// toggleAIMode is the single place where the command matcher's output causes
// a write. The in-memory family record is updated too so the change applies
// within the current message's lifetime.
func (r *Resolver) toggleAIMode(famCtx *models.FamilyContext, enable bool) string {
	if err := r.store.UpdateFamilyAIMode(famCtx.Family.ID, enable); err != nil {
		slog.Error("failed to toggle AI mode", "family", famCtx.Family.ID, "enable", enable, "error", err)
		return i18n.T("errorDefault")
	}
	famCtx.Family.AIMode = enable
	if enable {
		return i18n.T("aiModeOn")
	}
	return i18n.T("aiModeOff")
}
