package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"kot-system/internal/logger"
	"kot-system/internal/models"
)

// Consumer reads order events from a single topic. The kitchen printer uses
// one on the order-paid topic.
type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, logger: log}
}

// Start blocks consuming messages until ctx is cancelled. Malformed messages
// are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(event models.OrderEvent)) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("KAFKA", "read message: "+err.Error())
			continue
		}

		var event models.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Warn("KAFKA", "unmarshal order event: "+err.Error())
			continue
		}

		handler(event)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
