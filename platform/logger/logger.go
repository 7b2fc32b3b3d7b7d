// Package logger is a thin wrapper over slog with the typed log events the
// application emits: HTTP access, webhook auth, background task outcomes
// and rate limiting.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger embeds slog.Logger; Info/Warn/Error/Debug come straight from it.
type Logger struct {
	*slog.Logger
}

// New builds the process logger. Development gets human-readable text at
// debug level; everything else gets JSON for the log pipeline.
func New(env string) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// HTTPRequest is the access-log line written by the request middleware.
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// WebhookAuth records an API-key authentication outcome. Failed attempts
// never log the presented key.
func (l *Logger) WebhookAuth(keyID string, success bool, reason string) {
	if success {
		l.Info("webhook_auth",
			slog.String("key_id", keyID),
			slog.Bool("success", true),
		)
		return
	}
	l.Warn("webhook_auth",
		slog.Bool("success", false),
		slog.String("reason", reason),
	)
}

// TaskEvent records one background task run, keyed by the ticket it
// processed.
func (l *Logger) TaskEvent(task, ticketID string, err error) {
	if err != nil {
		l.Error("task_event",
			slog.String("task", task),
			slog.String("ticket_id", ticketID),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Info("task_event",
		slog.String("task", task),
		slog.String("ticket_id", ticketID),
	)
}

// RateLimitExceeded records a request dropped by the limiter.
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
