package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/ohadbarr1/dobby/internal/briefing"
	"github.com/ohadbarr1/dobby/internal/guard"
	"github.com/ohadbarr1/dobby/internal/i18n"
	"github.com/ohadbarr1/dobby/internal/messaging"
	"github.com/ohadbarr1/dobby/internal/models"
	"github.com/ohadbarr1/dobby/internal/scheduler"
)

// botStore is the store surface the event loop and background jobs use.
type botStore interface {
	onboardingStore
	MembersByFamily(familyID int64) ([]models.FamilyMember, error)
	AllFamilies() ([]models.Family, error)
	DueReminders(now time.Time) ([]models.Reminder, error)
	MarkReminderSent(id int64) error
}

// Service is the bot's event loop: it consumes inbound transport events,
// applies the loop guard, resolves the family context and hands the message
// to the resolver. It also owns the cron jobs for reminder delivery and the
// daily briefing.
type Service struct {
	msg       messaging.Service
	store     botStore
	resolver  *Resolver
	briefing  *briefing.Builder
	scheduler *scheduler.Scheduler
	loopGuard *guard.LoopGuard
	chatLock  *guard.ChatLock
}

// NewService assembles the bot event loop.
func NewService(msg messaging.Service, store botStore, resolver *Resolver, brief *briefing.Builder, sched *scheduler.Scheduler, lg *guard.LoopGuard) *Service {
	return &Service{
		msg:       msg,
		store:     store,
		resolver:  resolver,
		briefing:  brief,
		scheduler: sched,
		loopGuard: lg,
		chatLock:  guard.NewChatLock(),
	}
}

// Start begins consuming transport events and registers the background
// jobs. It returns after spawning the consumer goroutine.
func (s *Service) Start(ctx context.Context) error {
	if err := s.msg.Start(ctx); err != nil {
		return err
	}

	if s.scheduler != nil {
		if err := s.scheduler.EveryMinute(func() { s.deliverDueReminders(ctx) }); err != nil {
			return err
		}
		if err := s.scheduler.EveryMinute(func() { s.sendDueBriefings(ctx) }); err != nil {
			return err
		}
	}

	go s.consume(ctx)
	slog.Info("bot service started")
	return nil
}

// Stop shuts down the scheduler and the transport.
func (s *Service) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if err := s.msg.Stop(); err != nil {
		slog.Error("failed to stop messaging service", "error", err)
	}
}

func (s *Service) consume(ctx context.Context) {
	responses := s.msg.Responses()
	receipts := s.msg.Receipts()
	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-responses:
			if !ok {
				return
			}
			s.HandleResponse(ctx, resp)
		case receipt, ok := <-receipts:
			if !ok {
				receipts = nil
				continue
			}
			slog.Debug("message receipt", "to", receipt.To, "status", receipt.Status)
		}
	}
}

// HandleResponse processes one inbound chat event end to end. Echoes of the
// bot's own messages are dropped, as is any event for a chat that is already
// being handled.
func (s *Service) HandleResponse(ctx context.Context, resp models.Response) {
	if resp.FromMe || s.loopGuard.IsOwnMessage(resp.MessageID) {
		slog.Debug("dropping own message echo", "chat", resp.ChatID, "message_id", resp.MessageID)
		return
	}

	if !s.chatLock.TryAcquire(resp.ChatID) {
		slog.Debug("dropping event for busy chat", "chat", resp.ChatID)
		return
	}
	defer s.chatLock.Release(resp.ChatID)

	// Flow and conversation state are keyed by phone, so the same sender
	// active in two chats must not be handled concurrently either.
	senderKey := "sender:" + resp.Sender
	if !s.chatLock.TryAcquire(senderKey) {
		slog.Debug("dropping event for busy sender", "chat", resp.ChatID, "sender", resp.Sender)
		return
	}
	defer s.chatLock.Release(senderKey)

	famCtx, err := s.familyContext(resp)
	if err != nil {
		slog.Error("family context resolution failed", "chat", resp.ChatID, "error", err)
		return
	}
	if famCtx == nil {
		// Unknown group or unknown sender: onboarding only. The transport
		// does not expose a reliable group subject here, so the family name
		// defaults from the registering phone.
		if reply := handleOnboarding(s.store, resp.ChatID, resp.Sender, resp.Body, ""); reply != "" {
			s.send(ctx, resp.ChatID, reply)
		}
		return
	}

	reply := s.resolver.Resolve(ctx, famCtx, resp.Body)
	if reply != "" {
		s.send(ctx, resp.ChatID, reply)
	}
}

// familyContext loads the family and sending member for an event. A nil
// context (with nil error) means the sender is not registered.
func (s *Service) familyContext(resp models.Response) (*models.FamilyContext, error) {
	family, err := s.store.FamilyByChatID(resp.ChatID)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, nil
	}

	member, err := s.store.MemberByPhone(family.ID, resp.Sender)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, nil
	}

	all, err := s.store.MembersByFamily(family.ID)
	if err != nil {
		return nil, err
	}

	return &models.FamilyContext{Family: family, Member: member, AllMembers: all}, nil
}

// send delivers a reply and records its transport ID so the echo is dropped.
func (s *Service) send(ctx context.Context, chatID, body string) {
	id, err := s.msg.SendMessage(ctx, chatID, body)
	if err != nil {
		slog.Error("failed to send message", "chat", chatID, "error", err)
		return
	}
	s.loopGuard.RecordOutgoing(id)
}

// deliverDueReminders sends every due unsent reminder to its family chat
// and marks it sent. Runs once a minute.
func (s *Service) deliverDueReminders(ctx context.Context) {
	due, err := s.store.DueReminders(time.Now().UTC())
	if err != nil {
		slog.Error("due reminder fetch failed", "error", err)
		return
	}

	for _, r := range due {
		body := i18n.T("reminderNotification", i18n.P("forWhom", r.ForWhom), i18n.P("message", r.Message))
		id, err := s.msg.SendMessage(ctx, r.ChatID, body)
		if err != nil {
			slog.Error("failed to send reminder", "reminder", r.ID, "chat", r.ChatID, "error", err)
			continue
		}
		s.loopGuard.RecordOutgoing(id)
		if err := s.store.MarkReminderSent(r.ID); err != nil {
			slog.Error("failed to mark reminder sent", "reminder", r.ID, "error", err)
		}
	}
}

// sendDueBriefings sends the daily briefing to every family whose local
// wall clock matches its configured briefing time. Runs once a minute.
func (s *Service) sendDueBriefings(ctx context.Context) {
	families, err := s.store.AllFamilies()
	if err != nil {
		slog.Error("family list fetch failed", "error", err)
		return
	}

	now := time.Now()
	for i := range families {
		fam := &families[i]
		if !briefing.DueNow(fam, now) {
			continue
		}
		s.send(ctx, fam.ChatID, s.briefing.Build(fam, now))
		slog.Info("daily briefing sent", "family", fam.ID)
	}
}
