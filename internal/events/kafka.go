package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// KafkaPublisher writes JSON events keyed by order id.
type KafkaPublisher struct {
	writer *kafkaGo.Writer
}

// writerBatchTimeout caps how long a single event waits for a batch to fill.
// Events are written one at a time, so the writer's one second default would
// delay every publication.
const writerBatchTimeout = 10 * time.Millisecond

// NewKafkaPublisher creates a publisher for the given brokers. The topic is
// chosen per message.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(brokers...),
			Balancer:               &kafkaGo.Hash{},
			BatchTimeout:           writerBatchTimeout,
			MaxAttempts:            3,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	msg, err := newMessage(topic, key, event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func newMessage(topic, key string, event any) (kafkaGo.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}, nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
