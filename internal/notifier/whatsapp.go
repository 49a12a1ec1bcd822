package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/synapse-edu/scholarflow-api/pkg/config"
)

// Sender delivers a short text message to a phone-number-like recipient.
// Delivery guarantees are the provider's problem, not the caller's.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// WhatsAppSender posts messages through a WhatsApp Cloud style API. In mock
// mode it only logs the message, which is how development environments run.
type WhatsAppSender struct {
	http     *resty.Client
	senderID string
	mockMode bool
	logger   *zap.Logger
}

// NewWhatsAppSender constructs a sender from configuration.
func NewWhatsAppSender(cfg config.NotificationsConfig, logger *zap.Logger) *WhatsAppSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIToken).
		SetHeader("Content-Type", "application/json")
	return &WhatsAppSender{
		http:     http,
		senderID: cfg.SenderID,
		mockMode: cfg.MockMode,
		logger:   logger,
	}
}

type messageRequest struct {
	MessagingProduct string      `json:"messaging_product"`
	To               string      `json:"to"`
	Type             string      `json:"type"`
	Text             messageText `json:"text"`
}

type messageText struct {
	Body string `json:"body"`
}

// Send delivers one message. Mock mode short-circuits with a log line.
func (s *WhatsAppSender) Send(ctx context.Context, phone, message string) error {
	if s.mockMode {
		s.logger.Sugar().Infow("mock whatsapp message", "to", phone, "message", message)
		return nil
	}
	if phone == "" {
		return fmt.Errorf("recipient phone missing")
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(messageRequest{
			MessagingProduct: "whatsapp",
			To:               phone,
			Type:             "text",
			Text:             messageText{Body: message},
		}).
		Post(fmt.Sprintf("/v17.0/%s/messages", s.senderID))
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("whatsapp api returned status %d", resp.StatusCode())
	}
	return nil
}
