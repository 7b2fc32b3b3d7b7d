// The worker consumes queued ticket notifications and runs the evaluation
// pipeline for each one. It shares the composition of the API server minus
// the HTTP layer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"examdesk_backend/internal/crm"
	"examdesk_backend/internal/desk"
	"examdesk_backend/internal/events"
	"examdesk_backend/internal/notify"
	"examdesk_backend/internal/portal"
	"examdesk_backend/internal/scheduler"
	"examdesk_backend/internal/stateengine/catalog"
	"examdesk_backend/internal/tickets"
	"examdesk_backend/internal/tickets/agent"
	"examdesk_backend/internal/tickets/ports"
	"examdesk_backend/platform/ai/gemini"
	"examdesk_backend/platform/config"
	"examdesk_backend/platform/db"
	"examdesk_backend/platform/logger"
	"examdesk_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)

	val := validator.New()
	cat, err := loadCatalog(cfg, val)
	if err != nil {
		log.Error("failed to load state catalog", "error", err)
		panic("failed to load state catalog: " + err.Error())
	}
	for _, warn := range cat.Warnings {
		log.Warn("catalog warning", "warning", warn)
	}

	deskClient := desk.NewClient(cfg, log)
	if deskClient == nil {
		panic("helpdesk API not configured: DESK_BASE_URL is required")
	}
	crmClient := crm.NewClient(cfg, log)
	if crmClient == nil {
		panic("CRM API not configured: CRM_BASE_URL is required")
	}

	clients := tickets.Clients{
		Desk:   deskClient,
		CRM:    crmClient,
		Linker: crmClient,
	}
	if portalClient := portal.NewClient(cfg, log); portalClient != nil {
		clients.Portal = portalClient
	} else {
		log.Warn("portal extraction disabled; evaluations run without platform data")
	}
	clients.Triager, clients.Renderer = initAgents(ctx, cfg, log)

	ticketsModule := tickets.NewModule(pool, cat, clients, eventBus, cfg, val, log)

	notify.NewSubscriber(notify.NewSMTPSender(cfg), cfg, log).Register(eventBus)

	processor := scheduler.TicketProcessorFunc(func(ctx context.Context, ticketID string) error {
		_, err := ticketsModule.Service().Process(ctx, ticketID)
		return err
	})

	worker, err := scheduler.NewWorker(cfg, processor, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	log.Info("worker listening", "queue", cfg.AsynqQueueName, "concurrency", cfg.AsynqConcurrency)
	worker.Run(ctx)
	log.Info("worker stopped")
}

func loadCatalog(cfg config.CatalogConfig, val *validator.Validator) (*catalog.Catalog, error) {
	if path := cfg.GetCatalogPath(); path != "" {
		return catalog.LoadFile(path, val)
	}
	return catalog.LoadDefault(val)
}

func initAgents(ctx context.Context, cfg config.AgentConfig, log *logger.Logger) (ports.Triager, ports.Renderer) {
	if !cfg.IsAgentEnabled() {
		log.Warn("GEMINI_API_KEY not configured; using deterministic template rendering")
		return nil, agent.StaticRenderer{}
	}

	model, err := gemini.NewModel(ctx, gemini.Config{
		APIKey: cfg.GetGeminiAPIKey(),
		Model:  cfg.GetAgentModel(),
	})
	if err != nil {
		log.Error("failed to initialize gemini model", "error", err)
		panic("failed to initialize gemini model: " + err.Error())
	}

	triager, err := agent.NewTriager(model, log)
	if err != nil {
		log.Error("failed to initialize triage agent", "error", err)
		panic("failed to initialize triage agent: " + err.Error())
	}
	renderer, err := agent.NewDraftRenderer(model, log)
	if err != nil {
		log.Error("failed to initialize drafting agent", "error", err)
		panic("failed to initialize drafting agent: " + err.Error())
	}

	log.Info("LLM agents initialized", "model", cfg.GetAgentModel())
	return triager, renderer
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
