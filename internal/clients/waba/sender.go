package waba

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/leadflow-backend/internal/platform/logger"
)

// Sender pushes an outbound message through the messaging provider. The
// intake engine uses it for the one-time admin lead notification; errors are
// the caller's to log and swallow.
type Sender interface {
	Send(ctx context.Context, targetID string, text string) error
}

type sender struct {
	log        *logger.Logger
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewSender(log *logger.Logger) (Sender, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	baseURL := strings.TrimSpace(os.Getenv("WABA_BASE_URL"))
	if baseURL == "" {
		return nil, fmt.Errorf("missing WABA_BASE_URL")
	}
	baseURL = strings.TrimRight(baseURL, "/")

	token := strings.TrimSpace(os.Getenv("WABA_TOKEN"))
	if token == "" {
		return nil, fmt.Errorf("missing WABA_TOKEN")
	}

	return &sender{
		log:        log.With("service", "WabaSender"),
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type outboundMessage struct {
	To   string `json:"to"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

func (s *sender) Send(ctx context.Context, targetID string, text string) error {
	if strings.TrimSpace(targetID) == "" {
		return fmt.Errorf("target id required")
	}

	msg := outboundMessage{To: targetID, Type: "text"}
	msg.Text.Body = text

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(msg); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/messages", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("waba send %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
