package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/leadflow-backend/internal/http/response"
	"github.com/yungbote/leadflow-backend/internal/platform/logger"
	"github.com/yungbote/leadflow-backend/internal/services"
)

type WebhookHandler struct {
	log    *logger.Logger
	intake services.IntakeService
}

func NewWebhookHandler(log *logger.Logger, intake services.IntakeService) *WebhookHandler {
	return &WebhookHandler{log: log.With("handler", "WebhookHandler"), intake: intake}
}

type webhookRequest struct {
	ContactID string `json:"contact_id"`
	Text      string `json:"text"`
	AudioURL  string `json:"audio_url"`
}

type webhookResponse struct {
	Reply string `json:"reply"`
}

// Receive handles one inbound message and always answers with a reply body;
// collaborator failures surface as in-character fallback replies, never as
// HTTP errors.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	if strings.TrimSpace(req.ContactID) == "" {
		response.RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("contact_id required"))
		return
	}

	res, err := h.intake.HandleTurn(c.Request.Context(), services.TurnInput{
		ContactID: req.ContactID,
		Text:      req.Text,
		AudioURL:  req.AudioURL,
	})
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	response.RespondOK(c, webhookResponse{Reply: res.Reply})
}
