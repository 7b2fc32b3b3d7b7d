package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"examdesk_backend/platform/logger"
)

// APIKeyAuthMiddleware validates the X-Webhook-API-Key header and records
// the key's identity on the gin context.
func APIKeyAuthMiddleware(repo *Repository, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-Webhook-API-Key")
		if apiKey == "" {
			log.WebhookAuth("", false, "missing API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			return
		}

		keyHash := HashKey(apiKey)
		key, err := repo.GetByHash(c.Request.Context(), keyHash)
		if err != nil {
			log.WebhookAuth("", false, "invalid API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}

		log.WebhookAuth(key.KeyPrefix, true, "")
		c.Set("webhookKeyID", key.ID)
		c.Next()
	}
}
