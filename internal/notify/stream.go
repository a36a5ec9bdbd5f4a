package notify

import (
	"context"
	"fmt"

	rediscommon "egov-event-export/internal/common/redis"
	"egov-event-export/internal/models"

	"github.com/go-redis/redis/v8"
)

// StreamNotifier appends the summary to a Redis stream as a "data" JSON field
type StreamNotifier struct {
	client *redis.Client
	stream string
}

// NewStreamNotifier creates a new stream notifier
func NewStreamNotifier(client *redis.Client, stream string) *StreamNotifier {
	return &StreamNotifier{
		client: client,
		stream: stream,
	}
}

func (n *StreamNotifier) Name() string {
	return "redis-stream"
}

func (n *StreamNotifier) Notify(ctx context.Context, summary *models.RunSummary) error {
	if _, err := rediscommon.PublishJSONToStream(ctx, n.client, n.stream, summary); err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", n.stream, err)
	}
	return nil
}
