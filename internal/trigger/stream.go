package trigger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	rediscommon "egov-event-export/internal/common/redis"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ContentEvent "content changed" message on the trigger stream
type ContentEvent struct {
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// StreamSource requests an export per message of a Redis stream consumer group.
// Messages are acknowledged after the requested run finished.
type StreamSource struct {
	redisClient  *redis.Client
	logger       *zap.Logger
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	entityType   string
	block        time.Duration
}

// NewStreamSource creates a new stream source. Messages naming another
// entity type than entityType are acknowledged without a run.
func NewStreamSource(
	redisClient *redis.Client,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
	entityType string,
) *StreamSource {
	return &StreamSource{
		redisClient:  redisClient,
		logger:       logger,
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		entityType:   entityType,
		block:        5 * time.Second,
	}
}

func (s *StreamSource) Name() string {
	return SourceStream
}

// Start consumes the stream until ctx is done, backing off on read errors
func (s *StreamSource) Start(ctx context.Context, out chan<- Request) error {
	if err := rediscommon.CreateConsumerGroup(ctx, s.redisClient, s.stream, s.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	s.logger.Info("Trigger stream consumer started",
		zap.String("stream", s.stream),
		zap.String("consumer_group", s.groupName),
		zap.String("consumer_name", s.consumerName),
	)

	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := s.consume(ctx, out); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("Failed to consume trigger stream",
				zap.Error(err),
				zap.Duration("backoff", backoffDuration),
			)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration):
				backoffDuration *= 2
				if backoffDuration > maxBackoff {
					backoffDuration = maxBackoff
				}
			}
			continue
		}
		backoffDuration = time.Second
	}
}

func (s *StreamSource) consume(ctx context.Context, out chan<- Request) error {
	messages, err := rediscommon.ReadFromStream(
		ctx,
		s.redisClient,
		s.stream,
		s.groupName,
		s.consumerName,
		s.batchSize,
		s.block,
	)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		event, err := parseContentEvent(msg)
		if err != nil {
			s.logger.Warn("Dropping malformed trigger message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			s.ack(msg.ID)
			continue
		}

		if event.EntityType != "" && s.entityType != "" && event.EntityType != s.entityType {
			s.logger.Debug("Ignoring trigger for other entity type",
				zap.String("message_id", msg.ID),
				zap.String("entity_type", event.EntityType),
			)
			s.ack(msg.ID)
			continue
		}

		id := msg.ID
		req := Request{
			Source: SourceStream,
			Ref:    id,
			Done:   func(error) { s.ack(id) },
		}
		if !send(ctx, out, req) {
			return nil
		}
	}

	return nil
}

// ack uses a fresh context so messages handled during shutdown are still acknowledged
func (s *StreamSource) ack(messageID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rediscommon.Ack(ctx, s.redisClient, s.stream, s.groupName, messageID); err != nil {
		s.logger.Warn("Failed to ack message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}

func parseContentEvent(msg rediscommon.StreamMessage) (*ContentEvent, error) {
	if dataStr, ok := msg.Values["data"].(string); ok {
		var event ContentEvent
		if err := json.Unmarshal([]byte(dataStr), &event); err != nil {
			return nil, fmt.Errorf("invalid data field: %w", err)
		}
		if event.EventType == "" {
			return nil, fmt.Errorf("invalid event: missing event_type")
		}
		return &event, nil
	}

	event := &ContentEvent{}
	if eventType, ok := msg.Values["event_type"].(string); ok {
		event.EventType = eventType
	}
	if entityType, ok := msg.Values["entity_type"].(string); ok {
		event.EntityType = entityType
	}
	if entityID, ok := msg.Values["entity_id"].(string); ok {
		event.EntityID = entityID
	}

	if event.EventType == "" {
		return nil, fmt.Errorf("invalid event: missing event_type")
	}
	return event, nil
}
