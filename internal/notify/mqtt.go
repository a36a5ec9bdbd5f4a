package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"egov-event-export/internal/models"
)

// Publisher publishes MQTT payloads; satisfied by the common MQTT client
type Publisher interface {
	Publish(topic string, retained bool, payload []byte) error
}

// MQTTNotifier publishes the summary as a retained message
type MQTTNotifier struct {
	publisher Publisher
	topic     string
}

// NewMQTTNotifier creates a new MQTT notifier
func NewMQTTNotifier(publisher Publisher, topic string) *MQTTNotifier {
	return &MQTTNotifier{
		publisher: publisher,
		topic:     topic,
	}
}

func (n *MQTTNotifier) Name() string {
	return "mqtt"
}

func (n *MQTTNotifier) Notify(ctx context.Context, summary *models.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	return n.publisher.Publish(n.topic, true, payload)
}
