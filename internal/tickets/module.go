// Package tickets provides the ticket-processing bounded context module.
// This file defines the module that encapsulates its setup and route
// registration.
package tickets

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"examdesk_backend/internal/events"
	apphttp "examdesk_backend/internal/http"
	"examdesk_backend/internal/stateengine/catalog"
	"examdesk_backend/internal/stateengine/crmupdate"
	"examdesk_backend/internal/stateengine/detector"
	"examdesk_backend/internal/stateengine/respcheck"
	"examdesk_backend/internal/tickets/handler"
	"examdesk_backend/internal/tickets/ports"
	"examdesk_backend/internal/tickets/repository"
	"examdesk_backend/internal/tickets/service"
	"examdesk_backend/platform/config"
	"examdesk_backend/platform/logger"
	"examdesk_backend/platform/validator"
)

// Clients groups the external-system adapters the module depends on.
// Triager, Linker and Renderer may vary per deployment; the rest are
// required.
type Clients struct {
	Desk     ports.DeskClient
	CRM      ports.CRMClient
	Portal   ports.PortalReader
	Triager  ports.Triager
	Linker   ports.Linker
	Renderer ports.Renderer
}

// Module is the ticket-processing bounded context module implementing
// http.Module.
type Module struct {
	handler *Handler
	service *service.Service
}

// Handler aliases the HTTP handler so the composition root only deals with
// the module.
type Handler = handler.Handler

// NewModule wires the state engine, the orchestrator and the HTTP handler.
func NewModule(
	pool *pgxpool.Pool,
	cat *catalog.Catalog,
	clients Clients,
	bus events.Bus,
	cfg config.EngineConfig,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)

	svc := service.New(service.Deps{
		Detector:  detector.New(cat, log),
		Updater:   crmupdate.New(log),
		Validator: respcheck.New(log),
		Store:     repo,
		Desk:      clients.Desk,
		CRM:       clients.CRM,
		Portal:    clients.Portal,
		Triager:   clients.Triager,
		Linker:    clients.Linker,
		Renderer:  clients.Renderer,
		Bus:       bus,
		Config:    cfg,
		Logger:    log,
		Clock:     time.Now,
	})

	return &Module{
		handler: handler.NewHandler(svc, repo, cat, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tickets"
}

// Service exposes the orchestrator for the background worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the ticket-processing routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	tickets := ctx.V1.Group("/tickets")
	tickets.POST("/:ticketId/process", m.handler.HandleProcessTicket)
	tickets.GET("/:ticketId/evaluations", m.handler.HandleListEvaluations)
	tickets.GET("/:ticketId/evaluations/latest", m.handler.HandleLatestEvaluation)

	ctx.V1.GET("/evaluations/escalated", m.handler.HandleListEscalated)
	ctx.V1.POST("/simulate", m.handler.HandleSimulate)
	ctx.V1.GET("/catalog/states", m.handler.HandleCatalogStates)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
