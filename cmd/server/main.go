package main

import (
	"venuebook/internal/audit"
	bookingshandler "venuebook/internal/bookings/handler"
	bookingsrepo "venuebook/internal/bookings/repository"
	bookingsservice "venuebook/internal/bookings/service"
	bookingsvalidator "venuebook/internal/bookings/validator"
	"venuebook/internal/events"
	"venuebook/internal/notifications"
	venueshandler "venuebook/internal/venues/handler"
	venuesrepo "venuebook/internal/venues/repository"
	venuesservice "venuebook/internal/venues/service"
	venuesvalidator "venuebook/internal/venues/validator"
	"venuebook/pkg/app"
	"venuebook/pkg/config"
	"venuebook/pkg/contracts"
	kafka_config "venuebook/pkg/kafka/config"
	"venuebook/pkg/outbox"
)

const ServiceName = "venuebook-server"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRefData()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting venue booking server")

	publisher, err := events.NewKafkaPublisher(kafka_config.Load(), cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	sideEffects := outbox.NewAsyncQueue(cfg.SideEffectQueueSize, cfg.SideEffectTimeout, cfg.Log)

	handlers := initHandlers(cfg, publisher, sideEffects)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.OnShutdown(func() {
		sideEffects.Stop()
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	serverApp.Run()
}

func initHandlers(cfg *config.Config, publisher events.Publisher, sideEffects outbox.Queue) []contracts.Handler {
	auditRepo := audit.NewMongoRepository(cfg)
	auditor := audit.NewRecorder(auditRepo, cfg.Log)
	notifier := notifications.NewService(notifications.NewMongoRepository(cfg), cfg.Log)

	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	venueRepo := venuesrepo.NewMongoVenueRepository(cfg)

	venueService := venuesservice.NewVenueService(
		cfg,
		venueRepo,
		bookingRepo,
		venuesvalidator.NewVenueValidator(cfg.Log),
		auditor,
		sideEffects,
	)

	bookingService := bookingsservice.NewBookingService(
		cfg,
		bookingRepo,
		bookingsrepo.NewVenueLockRepository(cfg),
		venueRepo,
		cfg.Client.RefData,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		notifier,
		auditor,
		publisher,
		sideEffects,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		venueshandler.NewVenueHandler(venueService, cfg.Log),
		notifications.NewHandler(notifier, cfg.Log),
		audit.NewHandler(auditRepo, cfg.Log),
	}
}
