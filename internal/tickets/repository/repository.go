// Package repository persists evaluation audit records. Every processed
// ticket leaves one row describing what was detected, what was drafted and
// what happened to the CRM fields, so a support agent can reconstruct any
// automated decision.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk_backend/internal/stateengine/domain"
)

// ErrEvaluationNotFound is returned when no evaluation exists for a ticket.
var ErrEvaluationNotFound = errors.New("evaluation not found")

// Evaluation is one audit record of a processed ticket.
type Evaluation struct {
	ID             uuid.UUID                `json:"id"`
	TicketID       string                   `json:"ticketId"`
	DealID         string                   `json:"dealId"`
	StateID        string                   `json:"stateId"`
	Severity       domain.Severity          `json:"severity"`
	WorkflowAction string                   `json:"workflowAction"`
	UberCase       string                   `json:"uberCase"`
	ExamCase       int                      `json:"examCase"`
	Alerts         []domain.Alert           `json:"alerts"`
	CRMResult      *domain.CRMUpdateResult  `json:"crmResult,omitempty"`
	Validation     *domain.ValidationResult `json:"validation,omitempty"`
	TemplateUsed   string                   `json:"templateUsed"`
	DraftBody      string                   `json:"draftBody,omitempty"`
	Escalated      bool                     `json:"escalated"`
	CreatedAt      time.Time                `json:"createdAt"`
}

// Repository provides data access for evaluation records.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates an evaluations repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save inserts one evaluation record and fills in its timestamp. The ID is
// assigned by the caller before processing so the events published during
// the pipeline carry it.
func (r *Repository) Save(ctx context.Context, e *Evaluation) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	alerts, err := json.Marshal(e.Alerts)
	if err != nil {
		return err
	}
	crmResult, err := json.Marshal(e.CRMResult)
	if err != nil {
		return err
	}
	validation, err := json.Marshal(e.Validation)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx, `
		INSERT INTO evaluations (
			id, ticket_id, deal_id, state_id, severity, workflow_action,
			uber_case, exam_case, alerts, crm_result, validation,
			template_used, draft_body, escalated
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`,
		e.ID, e.TicketID, e.DealID, e.StateID, string(e.Severity), e.WorkflowAction,
		e.UberCase, e.ExamCase, alerts, crmResult, validation,
		e.TemplateUsed, e.DraftBody, e.Escalated,
	).Scan(&e.CreatedAt)
}

// GetLatestByTicket returns the most recent evaluation for a ticket.
func (r *Repository) GetLatestByTicket(ctx context.Context, ticketID string) (*Evaluation, error) {
	row := r.pool.QueryRow(ctx, selectColumns+`
		FROM evaluations
		WHERE ticket_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, ticketID)

	e, err := scanEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEvaluationNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByTicket returns every evaluation for a ticket, newest first.
func (r *Repository) ListByTicket(ctx context.Context, ticketID string) ([]*Evaluation, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`
		FROM evaluations
		WHERE ticket_id = $1
		ORDER BY created_at DESC
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListEscalated returns recent escalated evaluations for the review queue.
func (r *Repository) ListEscalated(ctx context.Context, limit int) ([]*Evaluation, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, selectColumns+`
		FROM evaluations
		WHERE escalated = true
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const selectColumns = `
	SELECT id, ticket_id, deal_id, state_id, severity, workflow_action,
	       uber_case, exam_case, alerts, crm_result, validation,
	       template_used, draft_body, escalated, created_at
`

func scanEvaluation(row pgx.Row) (*Evaluation, error) {
	var (
		e          Evaluation
		severity   string
		alerts     []byte
		crmResult  []byte
		validation []byte
	)
	if err := row.Scan(
		&e.ID, &e.TicketID, &e.DealID, &e.StateID, &severity, &e.WorkflowAction,
		&e.UberCase, &e.ExamCase, &alerts, &crmResult, &validation,
		&e.TemplateUsed, &e.DraftBody, &e.Escalated, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Severity = domain.Severity(severity)
	if len(alerts) > 0 {
		if err := json.Unmarshal(alerts, &e.Alerts); err != nil {
			return nil, err
		}
	}
	if len(crmResult) > 0 && string(crmResult) != "null" {
		if err := json.Unmarshal(crmResult, &e.CRMResult); err != nil {
			return nil, err
		}
	}
	if len(validation) > 0 && string(validation) != "null" {
		if err := json.Unmarshal(validation, &e.Validation); err != nil {
			return nil, err
		}
	}
	return &e, nil
}
