package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"reisekosten/internal/amqp"
	"reisekosten/internal/config"
	"reisekosten/internal/report"
	"reisekosten/internal/services"
	"reisekosten/internal/storage"
	"reisekosten/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting report-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.AMQPURL == "" {
		logger.Error("Report worker requires AMQP_URL")
		os.Exit(1)
	}

	// The worker reads trips and expenses through the same repositories
	// as the server. A memory backend would see an empty dataset, so the
	// worker always runs against SQLite.
	store, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer store.Close()

	// SMTP delivery of rendered reports (optional)
	var mailer worker.Sender
	if cfg.MailEnabled() {
		mailer = report.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		logger.Info("Mail delivery enabled", "smtp_host", cfg.SMTPHost, "from", cfg.MailFrom)
	} else {
		logger.Info("Mail delivery disabled - reports are written to disk only")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reports := services.NewReportService(store, nil)
	exportWorker := worker.NewExportWorker(reports, mailer, cfg.ReportOutputDir)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := amqpClient.ConsumeReportExports(ctx, func(msg *amqp.ReportExportMessage) error {
			return exportWorker.HandleExportMessage(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	logger.Info("Waiting for export requests", "queue", cfg.AMQPQueue, "output_dir", cfg.ReportOutputDir)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	// Give the worker time to finish the export in flight
	logger.Info("Shutting down worker...")
	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
