// Package portal is the exam-platform extraction adapter. The extraction
// service scrapes the platform out of band and serves the latest snapshot
// per deal; this client only reads those snapshots.
package portal

import (
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

// NewClient builds the portal adapter, or nil when the extraction service
// is not configured.
func NewClient(cfg config.PortalConfig, log *logger.Logger) *Client {
	if !cfg.IsPortalEnabled() {
		return nil
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.GetPortalBaseURL(), "/"),
		token:   cfg.GetPortalAPIToken(),
		http:    &http.Client{Timeout: 20 * time.Second},
		log:     log,
	}
}

var _ ports.PortalReader = (*Client)(nil)

func (c *Client) GetPortalRecord(ctx context.Context, dealID string) (*domain.PortalRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/extractions/"+dealID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portal request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("portal API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var record domain.PortalRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode portal response: %w", err)
	}
	return &record, nil
}
