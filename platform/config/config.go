// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides settings for SMTP escalation mail.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetEscalationRecipients() []string
}

// DeskConfig provides settings for the helpdesk API.
type DeskConfig interface {
	GetDeskBaseURL() string
	GetDeskAPIToken() string
	IsDeskEnabled() bool
}

// CRMConfig provides settings for the CRM API.
type CRMConfig interface {
	GetCRMBaseURL() string
	GetCRMAPIToken() string
	IsCRMEnabled() bool
}

// PortalConfig provides settings for the exam-platform extraction service.
type PortalConfig interface {
	GetPortalBaseURL() string
	GetPortalAPIToken() string
	IsPortalEnabled() bool
}

// AgentConfig provides settings for the drafting LLM agent.
type AgentConfig interface {
	GetGeminiAPIKey() string
	GetAgentModel() string
	IsAgentEnabled() bool
}

// CatalogConfig provides settings for the candidate-state catalog.
type CatalogConfig interface {
	GetCatalogPath() string
}

// EngineConfig provides settings for ticket evaluation behavior.
type EngineConfig interface {
	GetDraftTimeout() time.Duration
	GetCRMWriteEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	EmailEnabled         bool
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFromName        string
	EmailFromAddress     string
	EscalationRecipients []string
	DeskBaseURL          string
	DeskAPIToken         string
	CRMBaseURL           string
	CRMAPIToken          string
	PortalBaseURL        string
	PortalAPIToken       string
	GeminiAPIKey         string
	AgentModel           string
	CatalogPath          string
	DraftTimeout         time.Duration
	CRMWriteEnabled      bool
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool             { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string               { return c.SMTPHost }
func (c *Config) GetSMTPPort() int                  { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string           { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string           { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string          { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string       { return c.EmailFromAddress }
func (c *Config) GetEscalationRecipients() []string { return c.EscalationRecipients }

// DeskConfig implementation
func (c *Config) GetDeskBaseURL() string  { return c.DeskBaseURL }
func (c *Config) GetDeskAPIToken() string { return c.DeskAPIToken }
func (c *Config) IsDeskEnabled() bool     { return c.DeskBaseURL != "" }

// CRMConfig implementation
func (c *Config) GetCRMBaseURL() string  { return c.CRMBaseURL }
func (c *Config) GetCRMAPIToken() string { return c.CRMAPIToken }
func (c *Config) IsCRMEnabled() bool     { return c.CRMBaseURL != "" }

// PortalConfig implementation
func (c *Config) GetPortalBaseURL() string  { return c.PortalBaseURL }
func (c *Config) GetPortalAPIToken() string { return c.PortalAPIToken }
func (c *Config) IsPortalEnabled() bool     { return c.PortalBaseURL != "" }

// AgentConfig implementation
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetAgentModel() string   { return c.AgentModel }
func (c *Config) IsAgentEnabled() bool    { return c.GeminiAPIKey != "" }

// CatalogConfig implementation
func (c *Config) GetCatalogPath() string { return c.CatalogPath }

// EngineConfig implementation
func (c *Config) GetDraftTimeout() time.Duration { return c.DraftTimeout }
func (c *Config) GetCRMWriteEnabled() bool       { return c.CRMWriteEnabled }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true")

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "tickets"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		EmailEnabled:         emailEnabled,
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Support Examen"),
		EmailFromAddress:     getEnv("EMAIL_FROM_ADDRESS", ""),
		EscalationRecipients: splitCSV(getEnv("ESCALATION_RECIPIENTS", "")),
		DeskBaseURL:          getEnv("DESK_BASE_URL", ""),
		DeskAPIToken:         getEnv("DESK_API_TOKEN", ""),
		CRMBaseURL:           getEnv("CRM_BASE_URL", ""),
		CRMAPIToken:          getEnv("CRM_API_TOKEN", ""),
		PortalBaseURL:        getEnv("PORTAL_BASE_URL", ""),
		PortalAPIToken:       getEnv("PORTAL_API_TOKEN", ""),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		AgentModel:           getEnv("AGENT_MODEL", "gemini-2.0-flash"),
		CatalogPath:          getEnv("CATALOG_PATH", ""),
		DraftTimeout:         mustDuration(getEnv("DRAFT_TIMEOUT", "45s")),
		CRMWriteEnabled:      strings.EqualFold(getEnv("CRM_WRITE_ENABLED", "true"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.IsDeskEnabled() && cfg.DeskAPIToken == "" {
		return nil, fmt.Errorf("DESK_API_TOKEN is required when DESK_BASE_URL is set")
	}
	if cfg.IsCRMEnabled() && cfg.CRMAPIToken == "" {
		return nil, fmt.Errorf("CRM_API_TOKEN is required when CRM_BASE_URL is set")
	}
	if cfg.EmailEnabled && (cfg.SMTPHost == "" || cfg.EmailFromAddress == "") {
		return nil, fmt.Errorf("SMTP_HOST and EMAIL_FROM_ADDRESS are required when EMAIL_ENABLED is true")
	}
	if cfg.EmailEnabled && len(cfg.EscalationRecipients) == 0 {
		return nil, fmt.Errorf("ESCALATION_RECIPIENTS is required when EMAIL_ENABLED is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
