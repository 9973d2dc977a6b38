package main

import (
	"fmt"
	"os"
	"time"

	"github.com/yungbote/leadflow-backend/internal/clients/openai"
	"github.com/yungbote/leadflow-backend/internal/clients/redis"
	"github.com/yungbote/leadflow-backend/internal/clients/waba"
	httpS "github.com/yungbote/leadflow-backend/internal/http"
	httpH "github.com/yungbote/leadflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/leadflow-backend/internal/http/middleware"
	"github.com/yungbote/leadflow-backend/internal/platform/logger"
	"github.com/yungbote/leadflow-backend/internal/services"
	"github.com/yungbote/leadflow-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	webhookToken := utils.GetEnv("WEBHOOK_TOKEN", "", log)
	if webhookToken == "" {
		log.Error("WEBHOOK_TOKEN is required")
		os.Exit(1)
	}
	adminTarget := utils.GetEnv("ADMIN_TARGET_ID", "", log)
	schemaPath := utils.GetEnv("SLOT_SCHEMA_PATH", "", log)
	langHint := utils.GetEnv("TRANSCRIBE_LANG", "", log)
	convTTLSeconds := utils.GetEnvAsInt("CONVERSATION_TTL_SECONDS", 7*24*3600, log)

	schema, err := services.LoadSlotSchema(schemaPath)
	if err != nil {
		log.Error("Could not load slot schema", "path", schemaPath, "error", err)
		os.Exit(1)
	}
	log.Info("Slot schema loaded", "slots", schema.Order())

	// Clients
	log.Info("Setting up clients from main...")
	store, err := redis.NewConversationStore(log)
	if err != nil {
		log.Error("Could not init ConversationStore", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	oracle, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAIClient", "error", err)
		os.Exit(1)
	}

	sender, err := waba.NewSender(log)
	if err != nil {
		log.Warn("Could not init WabaSender, lead notifications disabled", "error", err)
		sender = nil
	}

	// Services
	log.Info("Setting up services from main...")
	notifier := services.NewLeadNotifier(log, sender, adminTarget, schema)
	intake := services.NewIntakeService(
		log,
		store,
		oracle,
		notifier,
		schema,
		time.Duration(convTTLSeconds)*time.Second,
		langHint,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthHandler := httpH.NewHealthHandler()
	webhookHandler := httpH.NewWebhookHandler(log, intake)

	// Middleware
	webhookAuth := httpMW.NewWebhookAuth(log, webhookToken)

	// Router
	log.Info("Setting up router from main...")
	server := httpS.NewServer(httpS.RouterConfig{
		Log:            log,
		HealthHandler:  healthHandler,
		WebhookHandler: webhookHandler,
		WebhookAuth:    webhookAuth,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := server.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
