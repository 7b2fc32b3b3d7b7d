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
	apphttp "examdesk_backend/internal/http"
	"examdesk_backend/internal/http/router"
	"examdesk_backend/internal/notify"
	"examdesk_backend/internal/portal"
	"examdesk_backend/internal/scheduler"
	"examdesk_backend/internal/stateengine/catalog"
	"examdesk_backend/internal/tickets"
	"examdesk_backend/internal/tickets/agent"
	"examdesk_backend/internal/tickets/ports"
	"examdesk_backend/internal/webhook"
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

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Candidate-state catalog; a broken catalog means every evaluation would
	// be wrong, so loading failures are fatal.
	val := validator.New()
	cat, err := loadCatalog(cfg, val)
	if err != nil {
		log.Error("failed to load state catalog", "error", err)
		panic("failed to load state catalog: " + err.Error())
	}
	for _, warn := range cat.Warnings {
		log.Warn("catalog warning", "warning", warn)
	}
	log.Info("state catalog loaded", "version", cat.Version, "states", len(cat.States))

	enqueuer, closeEnqueuer := initTicketEnqueuer(cfg, log)
	if closeEnqueuer != nil {
		defer closeEnqueuer()
	}

	// ========================================================================
	// External Systems
	// ========================================================================

	deskClient := desk.NewClient(cfg, log)
	if deskClient == nil {
		log.Error("helpdesk API not configured")
		panic("helpdesk API not configured: DESK_BASE_URL is required")
	}
	crmClient := crm.NewClient(cfg, log)
	if crmClient == nil {
		log.Error("CRM API not configured")
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

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	ticketsModule := tickets.NewModule(pool, cat, clients, eventBus, cfg, val, log)
	webhookModule := webhook.NewModule(pool, enqueuer, eventBus, val, log)

	// Escalation alerts subscribe to domain events (not HTTP-facing)
	notify.NewSubscriber(notify.NewSMTPSender(cfg), cfg, log).Register(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			ticketsModule,
			webhookModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// loadCatalog reads the configured catalog file, or the embedded default
// when none is configured.
func loadCatalog(cfg config.CatalogConfig, val *validator.Validator) (*catalog.Catalog, error) {
	if path := cfg.GetCatalogPath(); path != "" {
		return catalog.LoadFile(path, val)
	}
	return catalog.LoadDefault(val)
}

// initTicketEnqueuer connects the webhook intake to the asynq queue. Without
// Redis the API still serves reads and manual processing, but inbound
// webhooks are rejected.
func initTicketEnqueuer(cfg config.SchedulerConfig, log *logger.Logger) (webhook.TicketEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; webhook intake disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initAgents builds the LLM-backed triager and renderer when a Gemini key is
// configured. Without one, triage is skipped and drafts come from the
// deterministic renderer; unresolved placeholders then fail validation and
// route the ticket to a human.
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
