package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leadflow-backend/internal/platform/logger"
)

// WebhookAuth gates the inbound webhook with a bearer-token equality check.
type WebhookAuth struct {
	log   *logger.Logger
	token string
}

func NewWebhookAuth(log *logger.Logger, token string) *WebhookAuth {
	return &WebhookAuth{log: log.With("Middleware", "WebhookAuth"), token: token}
}

func (wa *WebhookAuth) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := extractBearerToken(c)
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(wa.token)) != 1 {
			wa.log.Warn("Webhook token rejected", "remote", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
