// Package ports defines the interfaces the ticket-processing domain requires
// from external systems. These interfaces form the Anti-Corruption Layer:
// the domain only knows about the data it needs, shaped the way it wants.
package ports

import (
	"context"

	"examdesk_backend/internal/stateengine/domain"
)

// Ticket is the helpdesk view of one candidate message.
type Ticket struct {
	ID             string
	Subject        string
	Message        string
	DealID         string
	CandidateName  string
	CandidateEmail string
	CandidatePhone string
}

// DeskClient reads tickets from the helpdesk and writes drafts and internal
// notes back.
type DeskClient interface {
	GetTicket(ctx context.Context, ticketID string) (*Ticket, error)
	GetThread(ctx context.Context, ticketID string) ([]domain.ThreadMessage, error)
	// CreateDraft attaches a draft reply to the ticket without sending it.
	CreateDraft(ctx context.Context, ticketID, body string) error
	// AddInternalNote attaches an agent-only note explaining an escalation
	// or a blocked update.
	AddInternalNote(ctx context.Context, ticketID, note string) error
}

// CRMClient reads the candidate's deal and writes approved field updates.
type CRMClient interface {
	GetDeal(ctx context.Context, dealID string) (*domain.DealRecord, error)
	GetProposedSessions(ctx context.Context, dealID string) ([]domain.ProposedSession, error)
	GetProposedDates(ctx context.Context, dealID string) ([]domain.ProposedDate, error)
	UpdateDeal(ctx context.Context, dealID string, fields map[string]string) error
}

// PortalReader fetches the exam-platform record linked to a deal.
type PortalReader interface {
	GetPortalRecord(ctx context.Context, dealID string) (*domain.PortalRecord, error)
}

// Triager classifies the candidate's message into intents.
type Triager interface {
	Triage(ctx context.Context, ticket *Ticket, thread []domain.ThreadMessage) (domain.TriageResult, error)
}

// Linker resolves which deal a ticket belongs to when the helpdesk record
// carries no deal reference.
type Linker interface {
	Link(ctx context.Context, ticket *Ticket) (domain.LinkingResult, error)
}

// RenderRequest carries everything the drafting agent needs to turn a
// template into a personalised reply.
type RenderRequest struct {
	TemplateName  string
	TemplateBody  string
	CandidateName string
	Message       string
	ProposedDates []domain.ProposedDate
	Alerts        []domain.Alert
	Login         string
	Password      string
	ExamDate      string
	SessionType   string
}

// Renderer produces the draft reply text from a render request.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
}
