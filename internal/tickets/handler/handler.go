// Package handler exposes the ticket-processing HTTP API: trigger an
// evaluation, inspect the audit trail, replay scenarios against the catalog.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"examdesk_backend/internal/stateengine/catalog"
	"examdesk_backend/internal/tickets/repository"
	"examdesk_backend/internal/tickets/service"
	"examdesk_backend/platform/httpkit"
	"examdesk_backend/platform/validator"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
)

// Handler handles ticket-processing HTTP requests.
type Handler struct {
	service *service.Service
	repo    *repository.Repository
	catalog *catalog.Catalog
	val     *validator.Validator
}

// NewHandler creates the tickets handler.
func NewHandler(svc *service.Service, repo *repository.Repository, cat *catalog.Catalog, val *validator.Validator) *Handler {
	return &Handler{service: svc, repo: repo, catalog: cat, val: val}
}

// HandleProcessTicket evaluates one ticket end to end.
// POST /api/v1/tickets/:ticketId/process
func (h *Handler) HandleProcessTicket(c *gin.Context) {
	ticketID := c.Param("ticketId")
	if ticketID == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing ticket ID", nil)
		return
	}

	outcome, err := h.service.Process(c.Request.Context(), ticketID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, outcome)
}

// HandleListEvaluations returns the audit trail of a ticket, newest first.
// GET /api/v1/tickets/:ticketId/evaluations
func (h *Handler) HandleListEvaluations(c *gin.Context) {
	evals, err := h.repo.ListByTicket(c.Request.Context(), c.Param("ticketId"))
	if httpkit.HandleError(c, err) {
		return
	}
	if evals == nil {
		evals = []*repository.Evaluation{}
	}
	httpkit.OK(c, evals)
}

// HandleLatestEvaluation returns the most recent evaluation of a ticket.
// GET /api/v1/tickets/:ticketId/evaluations/latest
func (h *Handler) HandleLatestEvaluation(c *gin.Context) {
	eval, err := h.repo.GetLatestByTicket(c.Request.Context(), c.Param("ticketId"))
	if errors.Is(err, repository.ErrEvaluationNotFound) {
		httpkit.Error(c, http.StatusNotFound, "no evaluation for this ticket", nil)
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, eval)
}

// HandleListEscalated returns the review queue of escalated evaluations.
// GET /api/v1/evaluations/escalated?limit=50
func (h *Handler) HandleListEscalated(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	evals, err := h.repo.ListEscalated(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	if evals == nil {
		evals = []*repository.Evaluation{}
	}
	httpkit.OK(c, evals)
}

// HandleSimulate replays a candidate situation through the engine without
// side effects.
// POST /api/v1/simulate
func (h *Handler) HandleSimulate(c *gin.Context) {
	var req service.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	httpkit.OK(c, h.service.Simulate(req))
}

// CatalogStateResponse is the public view of one catalog entry.
type CatalogStateResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Priority       int    `json:"priority"`
	Category       string `json:"category"`
	Severity       string `json:"severity"`
	WorkflowAction string `json:"workflowAction"`
	Template       string `json:"template,omitempty"`
}

// CatalogResponse describes the loaded catalog.
type CatalogResponse struct {
	Version  int                    `json:"version"`
	States   []CatalogStateResponse `json:"states"`
	Warnings []string               `json:"warnings,omitempty"`
}

// HandleCatalogStates lists the compiled catalog in evaluation order.
// GET /api/v1/catalog/states
func (h *Handler) HandleCatalogStates(c *gin.Context) {
	states := make([]CatalogStateResponse, len(h.catalog.States))
	for i, s := range h.catalog.States {
		states[i] = CatalogStateResponse{
			ID:             s.ID,
			Name:           s.Name,
			Priority:       s.Priority,
			Category:       s.Category,
			Severity:       string(s.Severity),
			WorkflowAction: s.WorkflowAction,
			Template:       s.Response.Template,
		}
	}
	httpkit.OK(c, CatalogResponse{
		Version:  h.catalog.Version,
		States:   states,
		Warnings: h.catalog.Warnings,
	})
}
