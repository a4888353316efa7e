package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"newsletter-go/internal/app"
	"newsletter-go/internal/config"
	"newsletter-go/internal/database"
	"newsletter-go/internal/logging"
	"newsletter-go/internal/telemetry"
)

func main() {
	cfg := config.MustLoad()
	logger := logging.NewLogger(cfg.Application.LogLevel, os.Stdout)

	tp, err := telemetry.InitTracing(cfg.Telemetry.ServiceName, cfg.Telemetry.ServiceVersion, cfg.Telemetry.Exporter)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := telemetry.ShutdownTracing(context.Background(), tp); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Open(startupCtx, cfg.Database)
	cancelStartup()
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer db.Close()

	if err := database.Migrate(cfg.Database); err != nil {
		logger.WithError(err).Fatal("Failed to migrate the database")
	}

	application := app.Build(&app.Config{
		Settings: cfg,
		Logger:   logger,
		DB:       db,
	})

	logger.WithFields(logrus.Fields{
		"env":     cfg.Env,
		"address": cfg.Application.Addr(),
	}).Info("Starting newsletter-api")

	go func() {
		if err := application.Run(); err != nil {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
