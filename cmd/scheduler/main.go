package main

import (
	"context"

	"scrimtime/internal/scheduling/events"
	"scrimtime/internal/scheduling/handler"
	"scrimtime/internal/scheduling/notify"
	"scrimtime/internal/scheduling/repository"
	"scrimtime/internal/scheduling/service"
	"scrimtime/internal/scheduling/validator"
	"scrimtime/pkg/app"
	"scrimtime/pkg/config"
	"scrimtime/pkg/kafka"
	kafka_config "scrimtime/pkg/kafka/config"
	kafkamiddleware "scrimtime/pkg/kafka/middleware"
)

const ServiceName = "scheduler"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Scheduler service")

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Failed to load Kafka configuration", "error", err)
	}

	producer, err := kafka.NewProducer(kafkaCfg, kafkaCfg.NotificationsTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))

	notifier := notify.NewKafkaNotifier(producer, ServiceName)
	sessionService := initServices(cfg, notifier)

	housekeeper := service.NewHousekeeper(sessionService, cfg)
	if err := housekeeper.Start(); err != nil {
		cfg.Log.Fatal("Failed to start session cleanup", "error", err)
	}

	commandHandler := events.NewCommandHandler(sessionService, cfg.Log)
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.CommandsTopic,
		kafkaCfg.CommandsGroupID,
		kafkaCfg.DLQTopic,
		commandHandler.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
			cfg.Log.Error("Kafka consumer stopped", "error", err)
		}
	}()

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewSessionHandler(sessionService, cfg.Log))
	serverApp.OnShutdown("session-cleanup", housekeeper.Stop)
	serverApp.OnShutdown("kafka-consumer", func() {
		stopConsumer()
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	})
	serverApp.OnShutdown("kafka-producer", func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})
	serverApp.OnShutdown("mongo", cfg.GracefulShutdown)
	serverApp.Run()
}

func initServices(cfg *config.Config, notifier notify.Notifier) service.SessionService {
	sessionValidator := validator.NewSessionValidator(cfg.Log)
	sessionRepo := repository.NewMongoSessionRepository(cfg)
	sessionService := service.NewSessionService(
		sessionRepo,
		sessionValidator,
		notifier,
		cfg,
	)

	cfg.Log.Info("Scheduler service initialized", "database", cfg.MongoDatabaseName)
	return sessionService
}
