package webhook

import (
	"context"
	"fmt"

	"examdesk_backend/internal/events"
	"examdesk_backend/platform/logger"
)

// TicketEnqueuer queues a ticket for asynchronous evaluation.
type TicketEnqueuer interface {
	EnqueueTicketProcess(ctx context.Context, ticketID string) error
}

// TicketNotification is the payload the helpdesk posts when a ticket is
// created or receives a new candidate reply.
type TicketNotification struct {
	TicketID string `json:"ticketId" validate:"required,max=64"`
	DealID   string `json:"dealId" validate:"max=64"`
	Event    string `json:"event" validate:"omitempty,oneof=ticket.created ticket.updated thread.added"`
}

// Service accepts helpdesk notifications and hands tickets to the queue.
type Service struct {
	enqueuer TicketEnqueuer
	bus      events.Bus
	log      *logger.Logger
}

// NewService creates the webhook service.
func NewService(enqueuer TicketEnqueuer, bus events.Bus, log *logger.Logger) *Service {
	return &Service{enqueuer: enqueuer, bus: bus, log: log}
}

// NotifyTicket queues the ticket for evaluation and publishes the received
// event. The helpdesk retries on failure, so enqueueing errors propagate.
func (s *Service) NotifyTicket(ctx context.Context, n TicketNotification) error {
	if s.enqueuer == nil {
		return fmt.Errorf("ticket queue not configured")
	}
	if err := s.enqueuer.EnqueueTicketProcess(ctx, n.TicketID); err != nil {
		return fmt.Errorf("enqueue ticket %s: %w", n.TicketID, err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.TicketReceived{
			BaseEvent: events.NewBaseEvent(),
			TicketID:  n.TicketID,
			DealID:    n.DealID,
		})
	}

	s.log.Info("ticket queued for evaluation", "ticket", n.TicketID, "event", n.Event)
	return nil
}
