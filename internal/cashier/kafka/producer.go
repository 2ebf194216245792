package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"kot-system/internal/config"
	"kot-system/internal/logger"
	"kot-system/internal/models"
)

const (
	EventOrderCreated   = "order_created"
	EventOrderPaid      = "order_paid"
	EventOrderCancelled = "order_cancelled"
	EventOrderRefunded  = "order_refunded"
)

// Producer streams order lifecycle events, one writer per topic.
type Producer struct {
	writers map[string]*kafka.Writer
	logger  *logger.Logger
}

func NewProducer(cfg config.KafkaConfig, log *logger.Logger) *Producer {
	writers := make(map[string]*kafka.Writer)
	for event, topic := range map[string]string{
		EventOrderCreated:   cfg.Topics.OrderCreated,
		EventOrderPaid:      cfg.Topics.OrderPaid,
		EventOrderCancelled: cfg.Topics.OrderCancelled,
		EventOrderRefunded:  cfg.Topics.OrderRefunded,
	} {
		writers[event] = kafka.NewWriter(kafka.WriterConfig{
			Brokers: cfg.Brokers,
			Topic:   topic,
		})
	}
	return &Producer{writers: writers, logger: log}
}

func (p *Producer) publish(event string, order *models.Order) error {
	payload := models.OrderEvent{
		Type:      event,
		Order:     order,
		Timestamp: time.Now().UTC(),
	}
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	writer, ok := p.writers[event]
	if !ok {
		return fmt.Errorf("no writer for event %s", event)
	}

	p.logger.LogKafka("PUBLISH", writer.Topic, fmt.Sprintf("order #%d", order.OrderID))

	return writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(strconv.FormatInt(order.OrderID, 10)),
			Value: msgBytes,
		},
	)
}

func (p *Producer) PublishOrderCreated(order *models.Order) error {
	return p.publish(EventOrderCreated, order)
}

func (p *Producer) PublishOrderPaid(order *models.Order) error {
	return p.publish(EventOrderPaid, order)
}

func (p *Producer) PublishOrderCancelled(order *models.Order) error {
	return p.publish(EventOrderCancelled, order)
}

func (p *Producer) PublishOrderRefunded(order *models.Order) error {
	return p.publish(EventOrderRefunded, order)
}

func (p *Producer) Close() error {
	var firstErr error
	for _, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EnsureTopicsExist creates the order topics when the broker allows it.
// Missing topics are a deploy-time concern; errors here are logged, not fatal.
func EnsureTopicsExist(brokers []string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	controllerConn, err := kafka.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	configs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}
	return controllerConn.CreateTopics(configs...)
}
