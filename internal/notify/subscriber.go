package notify

import (
	"context"

	"examdesk_backend/internal/events"
	"examdesk_backend/platform/config"
	"examdesk_backend/platform/logger"
)

// Subscriber listens for escalation events and mails the support team.
type Subscriber struct {
	sender     *SMTPSender
	recipients []string
	log        *logger.Logger
}

// NewSubscriber creates the escalation subscriber. A nil sender makes it a
// no-op, so wiring stays unconditional in the composition root.
func NewSubscriber(sender *SMTPSender, cfg config.EmailConfig, log *logger.Logger) *Subscriber {
	return &Subscriber{
		sender:     sender,
		recipients: cfg.GetEscalationRecipients(),
		log:        log,
	}
}

// Register subscribes the notifier on the event bus.
func (s *Subscriber) Register(bus events.Bus) {
	bus.Subscribe(events.EscalationRaised{}.EventName(), events.HandlerFunc(s.onEscalation))
}

func (s *Subscriber) onEscalation(ctx context.Context, e events.Event) error {
	raised, ok := e.(events.EscalationRaised)
	if !ok {
		return nil
	}
	if s.sender == nil || len(s.recipients) == 0 {
		return nil
	}

	err := s.sender.SendEscalationAlert(ctx, s.recipients, EscalationAlert{
		TicketID: raised.TicketID,
		DealID:   raised.DealID,
		StateID:  raised.StateID,
		Reason:   raised.Reason,
		Alerts:   raised.Alerts,
	})
	if err != nil {
		s.log.Error("escalation email failed", "ticket", raised.TicketID, "error", err)
		return err
	}
	s.log.Info("escalation email sent", "ticket", raised.TicketID, "recipients", len(s.recipients))
	return nil
}
