package http

import (
	"context"

	"examdesk_backend/internal/events"
	"examdesk_backend/platform/config"
	"examdesk_backend/platform/logger"
)

// HealthChecker is what the readiness endpoint probes, usually the
// database pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is the assembled application the composition root hands to the
// router: configuration, shared infrastructure and the modules to mount.
type App struct {
	Config   config.HTTPConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	Modules  []Module
}
