package events

import (
	"context"

	"venuebook/pkg/kafka"
	kafka_config "venuebook/pkg/kafka/config"
	kafka_middleware "venuebook/pkg/kafka/middleware"
)

type Publisher interface {
	Publish(ctx context.Context, evt BookingEvent) error
}

type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(cfg *kafka_config.Config, topic, dlqTopic string) (*KafkaPublisher, error) {
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic)
	if err != nil {
		return nil, err
	}

	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware())
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}

	return &KafkaPublisher{producer: producer}, nil
}

// Publish keys messages by booking ID so all events for one booking
// land on the same partition, in order.
func (p *KafkaPublisher) Publish(ctx context.Context, evt BookingEvent) error {
	msg := kafka.NewMessage().
		WithKey(evt.BookingID).
		WithValue(evt).
		WithEventID(evt.ID).
		WithEventType(evt.Type).
		WithSource("venuebook-server").
		Build()

	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
