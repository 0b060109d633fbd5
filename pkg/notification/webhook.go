package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/shopfront/pkg/http"
)

type webhookPayload struct {
	Topic   string `json:"topic"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// WebhookPublisher POSTs each notification as JSON to a fixed URL.
type WebhookPublisher struct {
	url     string
	timeout time.Duration
}

func NewWebhookPublisher(url string) (*WebhookPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("notification/webhook: NOTIFY_WEBHOOK_URL is not configured")
	}
	return &WebhookPublisher{url: url, timeout: 10 * time.Second}, nil
}

func (p *WebhookPublisher) Publish(ctx context.Context, topic, subject, message string) error {
	resp, err := http.Post(p.url).
		WithContext(ctx).
		Timeout(p.timeout).
		Body(webhookPayload{Topic: topic, Subject: subject, Message: message}).
		Send()
	if err != nil {
		return observe("webhook", fmt.Errorf("notification/webhook: %w", err))
	}
	if resp.StatusCode >= 300 {
		return observe("webhook", fmt.Errorf("notification/webhook: returned HTTP %d", resp.StatusCode))
	}
	return observe("webhook", nil)
}
