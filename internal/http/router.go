package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/leadflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/leadflow-backend/internal/http/middleware"
	"github.com/yungbote/leadflow-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	HealthHandler  *httpH.HealthHandler
	WebhookHandler *httpH.WebhookHandler
	WebhookAuth    *httpMW.WebhookAuth
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.WebhookAuth != nil {
			api.Use(cfg.WebhookAuth.RequireToken())
		}
		if cfg.WebhookHandler != nil {
			api.POST("/webhook", cfg.WebhookHandler.Receive)
		}
	}

	return r
}
