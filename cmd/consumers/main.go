package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"backstage/cmd/consumers/jobs"
	"backstage/internal/config"
	"backstage/internal/database"
	"backstage/internal/logger"
	"backstage/internal/messaging"
	"backstage/internal/repository"
	"backstage/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Separate NATS client ID so the worker and the API do not collide.
	cfg.NATS.ClientID = "backstage-worker"

	logger.Info("Starting worker service...")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	st := repository.NewStore(db)
	services := service.NewServices(st, natsClient, cfg.Policy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	completion := jobs.NewBookingCompletionJob(st, services.Bookings, cfg.Worker.CompletionInterval)
	completion.Start(ctx)

	logger.Info("Worker service started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker service...")

	completion.Stop()
	cancel()

	if err := natsClient.Close(); err != nil {
		logger.Error("Error closing NATS connection", "error", err)
	}
	if err := db.Close(); err != nil {
		logger.Error("Error closing database connection", "error", err)
	}

	logger.Info("Worker service stopped")
}
