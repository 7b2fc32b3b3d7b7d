// Package crm is the CRM API adapter: deal reads, proposed-choice lookups,
// approved field writes and email-based deal linking.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"examdesk_backend/internal/stateengine/domain"
	"examdesk_backend/internal/tickets/ports"
	"examdesk_backend/platform/config"
	"examdesk_backend/platform/logger"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logger.Logger
}

// NewClient builds the CRM adapter, or nil when the CRM is not configured.
func NewClient(cfg config.CRMConfig, log *logger.Logger) *Client {
	if !cfg.IsCRMEnabled() {
		return nil
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.GetCRMBaseURL(), "/"),
		token:   cfg.GetCRMAPIToken(),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

var (
	_ ports.CRMClient = (*Client)(nil)
	_ ports.Linker    = (*Client)(nil)
)

// dealPayload mirrors the CRM deal resource. The field names match the CRM
// schema, hence the snake-cased keys.
type dealPayload struct {
	ID                     string  `json:"id"`
	CandidateName          string  `json:"Deal_Name"`
	Email                  string  `json:"Email"`
	Phone                  string  `json:"Phone"`
	Evalbox                string  `json:"Evalbox"`
	Stage                  string  `json:"Stage"`
	Amount                 float64 `json:"Amount"`
	UberOffer              bool    `json:"Offre_Uber"`
	UberEligible           bool    `json:"Eligible_Uber"`
	AccountVerified        bool    `json:"Compte_Verifie"`
	PersonalAccountPayment bool    `json:"Paiement_Compte_Perso"`
	DocumentsComplete      bool    `json:"Documents_Complets"`
	DocumentsValidated     bool    `json:"Documents_Valides"`
	DossierReceivedAt      string  `json:"Dossier_Recu_Le"`
	DatesProposed          bool    `json:"Dates_Proposees"`
	PortalLogin            string  `json:"Login_Plateforme"`
	PortalPassword         string  `json:"MDP_Plateforme"`
	ExamDate               struct {
		Date        string `json:"date"`
		ClotureDate string `json:"cloture"`
		SessionID   string `json:"sessionId"`
	} `json:"Date_Examen"`
}

func (p dealPayload) toDomain() *domain.DealRecord {
	return &domain.DealRecord{
		ID:                     p.ID,
		CandidateName:          p.CandidateName,
		Email:                  p.Email,
		Phone:                  p.Phone,
		Evalbox:                p.Evalbox,
		Stage:                  p.Stage,
		Amount:                 p.Amount,
		ExamDate:               domain.DateLookup{Date: p.ExamDate.Date, ClotureDate: p.ExamDate.ClotureDate, SessionID: p.ExamDate.SessionID},
		UberOffer:              p.UberOffer,
		UberEligible:           p.UberEligible,
		AccountVerified:        p.AccountVerified,
		PersonalAccountPayment: p.PersonalAccountPayment,
		DocumentsComplete:      p.DocumentsComplete,
		DocumentsValidated:     p.DocumentsValidated,
		DossierReceivedAt:      p.DossierReceivedAt,
		DatesProposed:          p.DatesProposed,
		PortalLogin:            p.PortalLogin,
		PortalPassword:         p.PortalPassword,
	}
}

func (c *Client) GetDeal(ctx context.Context, dealID string) (*domain.DealRecord, error) {
	var payload dealPayload
	if err := c.do(ctx, http.MethodGet, "/deals/"+dealID, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain(), nil
}

func (c *Client) GetProposedSessions(ctx context.Context, dealID string) ([]domain.ProposedSession, error) {
	var payload struct {
		Sessions []domain.ProposedSession `json:"sessions"`
	}
	if err := c.do(ctx, http.MethodGet, "/deals/"+dealID+"/proposed-sessions", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Sessions, nil
}

func (c *Client) GetProposedDates(ctx context.Context, dealID string) ([]domain.ProposedDate, error) {
	var payload struct {
		Dates []domain.ProposedDate `json:"dates"`
	}
	if err := c.do(ctx, http.MethodGet, "/deals/"+dealID+"/proposed-dates", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Dates, nil
}

// UpdateDeal patches approved field values onto the deal.
func (c *Client) UpdateDeal(ctx context.Context, dealID string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := c.do(ctx, http.MethodPatch, "/deals/"+dealID, fields, nil); err != nil {
		return err
	}
	c.log.Info("deal updated", "deal", dealID, "fields", len(fields))
	return nil
}

// Link resolves the deal a ticket belongs to by searching the CRM on the
// candidate's email. Zero matches or several matches both mean the ticket
// needs a human decision; two matches additionally flag the duplicate-offer
// case that must never be auto-merged.
func (c *Client) Link(ctx context.Context, ticket *ports.Ticket) (domain.LinkingResult, error) {
	if ticket.CandidateEmail == "" {
		return domain.LinkingResult{NeedsClarification: true}, nil
	}

	var payload struct {
		Deals []dealPayload `json:"deals"`
	}
	path := "/deals/search?email=" + url.QueryEscape(ticket.CandidateEmail)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return domain.LinkingResult{}, err
	}

	switch len(payload.Deals) {
	case 0:
		return domain.LinkingResult{NeedsClarification: true}, nil
	case 1:
		return domain.LinkingResult{DealID: payload.Deals[0].ID}, nil
	default:
		result := domain.LinkingResult{NeedsClarification: true}
		offers := 0
		for _, deal := range payload.Deals {
			if deal.UberOffer {
				offers++
			}
		}
		if offers > 1 {
			result.HasDuplicateOffer = true
		}
		c.log.Warn("ambiguous deal linking", "ticket", ticket.ID, "matches", len(payload.Deals))
		return result, nil
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal crm payload: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("crm API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode crm response: %w", err)
	}
	return nil
}
