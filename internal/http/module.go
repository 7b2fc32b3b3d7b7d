// Package http defines the contract between the router and the domain
// modules that mount routes on it.
package http

import (
	"examdesk_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context with HTTP-facing endpoints. The router calls
// RegisterRoutes once at startup; modules own everything under the paths
// they mount.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the shared routing surface handed to each module.
type RouterContext struct {
	// Engine is the root gin engine, for the rare module that needs to
	// mount outside /api/v1.
	Engine *gin.Engine
	// V1 is the /api/v1 group where normal routes go.
	V1 *gin.RouterGroup
	// WebhookRateLimiter throttles unauthenticated intake endpoints harder
	// than the global limiter.
	WebhookRateLimiter *httpkit.WebhookRateLimiter
}
