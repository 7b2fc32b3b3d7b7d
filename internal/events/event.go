package events

import (
	"github.com/google/uuid"

	"examdesk_backend/internal/stateengine/domain"
)

// =============================================================================
// Ticket Processing Events
// =============================================================================

// TicketReceived is published when a webhook delivers a new candidate
// message for processing.
type TicketReceived struct {
	BaseEvent
	TicketID string `json:"ticketId"`
	DealID   string `json:"dealId"`
}

// EventName returns the event identifier.
func (TicketReceived) EventName() string { return "ticket.received" }

// EvaluationCompleted is published after the state engine has evaluated a
// ticket, whatever the outcome.
type EvaluationCompleted struct {
	BaseEvent
	EvaluationID uuid.UUID       `json:"evaluationId"`
	TicketID     string          `json:"ticketId"`
	DealID       string          `json:"dealId"`
	StateID      string          `json:"stateId"`
	Severity     domain.Severity `json:"severity"`
	AlertCount   int             `json:"alertCount"`
}

// EventName returns the event identifier.
func (EvaluationCompleted) EventName() string { return "ticket.evaluation.completed" }

// EscalationRaised is published when a blocking state halts the automated
// workflow and a human must take over the ticket.
type EscalationRaised struct {
	BaseEvent
	EvaluationID uuid.UUID `json:"evaluationId"`
	TicketID     string    `json:"ticketId"`
	DealID       string    `json:"dealId"`
	StateID      string    `json:"stateId"`
	Reason       string    `json:"reason"`
	Alerts       []string  `json:"alerts"`
}

// EventName returns the event identifier.
func (EscalationRaised) EventName() string { return "ticket.escalation.raised" }

// ReplyDrafted is published once a draft reply has been rendered and
// validated for a ticket.
type ReplyDrafted struct {
	BaseEvent
	EvaluationID uuid.UUID `json:"evaluationId"`
	TicketID     string    `json:"ticketId"`
	Template     string    `json:"template"`
	Valid        bool      `json:"valid"`
	ErrorCount   int       `json:"errorCount"`
	WarningCount int       `json:"warningCount"`
}

// EventName returns the event identifier.
func (ReplyDrafted) EventName() string { return "ticket.reply.drafted" }

// CRMUpdatesResolved is published with the fate of every CRM field mutation
// derived from the candidate's message.
type CRMUpdatesResolved struct {
	BaseEvent
	EvaluationID uuid.UUID         `json:"evaluationId"`
	TicketID     string            `json:"ticketId"`
	DealID       string            `json:"dealId"`
	Applied      map[string]string `json:"applied"`
	Blocked      map[string]string `json:"blocked"`
	Skipped      map[string]string `json:"skipped"`
}

// EventName returns the event identifier.
func (CRMUpdatesResolved) EventName() string { return "ticket.crm.resolved" }
