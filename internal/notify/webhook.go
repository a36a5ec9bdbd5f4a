package notify

import (
	"context"
	"fmt"
	"time"

	"egov-event-export/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookNotifier POSTs the summary to a site rebuild hook
type WebhookNotifier struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewWebhookNotifier creates a new webhook notifier with retries on 5xx and transport errors
func NewWebhookNotifier(url string, timeout time.Duration, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookNotifier{
		httpClient: client,
		url:        url,
		logger:     logger,
	}
}

func (n *WebhookNotifier) Name() string {
	return "webhook"
}

func (n *WebhookNotifier) Notify(ctx context.Context, summary *models.RunSummary) error {
	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(summary).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("webhook returned %s", resp.Status())
	}

	n.logger.Debug("Webhook accepted run summary",
		zap.String("run_id", summary.RunID),
		zap.Int("status_code", resp.StatusCode()),
	)
	return nil
}
