// Package webhook provides the inbound-webhook bounded context module.
// This file defines the module that encapsulates its setup and route
// registration.
package webhook

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk_backend/internal/events"
	apphttp "examdesk_backend/internal/http"
	"examdesk_backend/platform/logger"
	"examdesk_backend/platform/validator"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
	log     *logger.Logger
}

// NewModule creates and initializes the webhook module.
func NewModule(pool *pgxpool.Pool, enqueuer TicketEnqueuer, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	service := NewService(enqueuer, bus, log)
	handler := NewHandler(service, repo, val)

	return &Module{handler: handler, repo: repo, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Inbound notifications (API key auth, rate limited per source IP)
	notify := ctx.V1.Group("/webhook")
	if ctx.WebhookRateLimiter != nil {
		notify.Use(ctx.WebhookRateLimiter.RateLimit())
	}
	notify.Use(APIKeyAuthMiddleware(m.repo, m.log))
	notify.POST("/tickets", m.handler.HandleTicketNotification)

	// Key management (deployed behind the internal gateway)
	keys := ctx.V1.Group("/webhook/keys")
	keys.POST("", m.handler.HandleCreateAPIKey)
	keys.GET("", m.handler.HandleListAPIKeys)
	keys.DELETE("/:keyId", m.handler.HandleRevokeAPIKey)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
