package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"venuebook/internal/events"
	"venuebook/pkg/config"
	"venuebook/pkg/kafka"
	kafka_config "venuebook/pkg/kafka/config"
	kafka_middleware "venuebook/pkg/kafka/middleware"
	"venuebook/pkg/logger"
)

const (
	ServiceName     = "venuebook-notifier"
	ConsumerGroupID = "venuebook-notifier"
)

// The notifier consumes the booking event stream and hands each event
// to an external delivery channel (email, SMS, push). In-app
// notification records are written by the server itself; this worker
// only covers out-of-band delivery, so it can lag or replay without
// affecting the API.
func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg := kafka_config.Load()
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingEventsTopic,
		ConsumerGroupID,
		cfg.BookingEventsDLQTopic,
		deliverEvent(cfg.Log),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize Kafka consumer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware())
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
	}

	ctx, cancel := context.WithCancel(context.Background())
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		cfg.Log.Info("Shutdown signal received", "signal", sig)
		cancel()
	}()

	cfg.Log.Info("Starting notification delivery worker",
		"topic", cfg.BookingEventsTopic,
		"group_id", ConsumerGroupID,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notification delivery worker stopped")
}

// deliverEvent is the delivery adapter. Wiring to a real provider is a
// deployment concern; the worker logs each delivery so the pipeline is
// observable end to end.
func deliverEvent(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var evt events.BookingEvent
		if err := msg.DecodeValue(&evt); err != nil {
			return err
		}

		log.Info("Delivering booking notification",
			"event_type", evt.Type,
			"booking_id", evt.BookingID,
			"venue_id", evt.VenueID,
			"requester_id", evt.RequesterID,
			"status", evt.Status,
		)
		return nil
	}
}
