// Package desk is the helpdesk API adapter. It translates the helpdesk's
// wire shapes into the domain's ticket and thread types.
package desk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
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

// NewClient builds the helpdesk adapter. Returns nil when the helpdesk is
// not configured, which callers treat as "desk disabled".
func NewClient(cfg config.DeskConfig, log *logger.Logger) *Client {
	if !cfg.IsDeskEnabled() {
		return nil
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.GetDeskBaseURL(), "/"),
		token:   cfg.GetDeskAPIToken(),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

var _ ports.DeskClient = (*Client)(nil)

// ticketPayload mirrors the helpdesk ticket resource.
type ticketPayload struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Message string `json:"description"`
	DealRef string `json:"dealRef"`
	Contact struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"contact"`
}

type threadPayload struct {
	Messages []struct {
		Direction string `json:"direction"`
		Content   string `json:"content"`
	} `json:"messages"`
}

func (c *Client) GetTicket(ctx context.Context, ticketID string) (*ports.Ticket, error) {
	var payload ticketPayload
	if err := c.do(ctx, http.MethodGet, "/tickets/"+ticketID, nil, &payload); err != nil {
		return nil, err
	}
	return &ports.Ticket{
		ID:             payload.ID,
		Subject:        payload.Subject,
		Message:        payload.Message,
		DealID:         payload.DealRef,
		CandidateName:  payload.Contact.Name,
		CandidateEmail: payload.Contact.Email,
		CandidatePhone: payload.Contact.Phone,
	}, nil
}

func (c *Client) GetThread(ctx context.Context, ticketID string) ([]domain.ThreadMessage, error) {
	var payload threadPayload
	if err := c.do(ctx, http.MethodGet, "/tickets/"+ticketID+"/threads", nil, &payload); err != nil {
		return nil, err
	}
	thread := make([]domain.ThreadMessage, 0, len(payload.Messages))
	for _, m := range payload.Messages {
		thread = append(thread, domain.ThreadMessage{Direction: m.Direction, Text: m.Content})
	}
	return thread, nil
}

// CreateDraft attaches a draft reply; the helpdesk keeps it unsent until an
// agent approves it.
func (c *Client) CreateDraft(ctx context.Context, ticketID, body string) error {
	payload := map[string]string{"content": body, "status": "draft"}
	if err := c.do(ctx, http.MethodPost, "/tickets/"+ticketID+"/drafts", payload, nil); err != nil {
		return err
	}
	c.log.Info("draft attached", "ticket", ticketID)
	return nil
}

func (c *Client) AddInternalNote(ctx context.Context, ticketID, note string) error {
	payload := map[string]any{"content": note, "isPublic": false}
	return c.do(ctx, http.MethodPost, "/tickets/"+ticketID+"/comments", payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal desk payload: %w", err)
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
		return fmt.Errorf("desk request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("desk API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode desk response: %w", err)
	}
	return nil
}
