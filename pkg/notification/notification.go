// Package notification publishes "product created" announcements.
//
//	p, _ := notification.NewSNSPublisher(ctx)
//	p.Publish(ctx, config.TopicARN(), "AWS Project - New Product Created", body)
//
// Drivers: "sns" (AWS SNS topic), "webhook" (JSON POST to NOTIFY_WEBHOOK_URL)
// and "log" (writes the message to the application log).
package notification

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
)

// Publisher delivers one notification.
type Publisher interface {
	Publish(ctx context.Context, topic, subject, message string) error
}

// LogPublisher only logs. Used locally and when no topic is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, topic, subject, message string) error {
	logger.WithCtx(ctx).Info("notification: published",
		"driver", "log", "topic", topic, "subject", subject, "message", message)
	metrics.Notifications.WithLabelValues("log", "ok").Inc()
	return nil
}

func observe(driver string, err error) error {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.Notifications.WithLabelValues(driver, status).Inc()
	return err
}

// New returns the publisher for driver ("sns", "webhook" or "log").
func New(ctx context.Context, driver, webhookURL string) (Publisher, error) {
	switch driver {
	case "sns":
		return NewSNSPublisher(ctx)
	case "webhook":
		return NewWebhookPublisher(webhookURL)
	case "log":
		return LogPublisher{}, nil
	default:
		return nil, fmt.Errorf("notification: unknown driver %q", driver)
	}
}
