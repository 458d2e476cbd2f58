package main

import (
	"context"
	"errors"
	"os"
	"time"
	_ "time/tzdata"

	"lunchbudget/internal/amqp"
	"lunchbudget/internal/cli"
	"lunchbudget/internal/log"
	"lunchbudget/internal/services"
	"lunchbudget/internal/worker"
)

const amqpConnectAttempts = 10

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting lunchbudget-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), time.Minute)
	defer startCancel()

	stores, factory, backendCfg := cli.InitBackends(startCtx, logger, cfg)
	exporter, err := factory.CreateExporter(startCtx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize report exporter", log.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.ConnectWithRetry(startCtx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}

	// The worker also publishes, so a scheduled refresh is exported like any other update.
	pipeline, err := cli.BuildPipeline(cfg, stores.Store, amqpClient, logger)
	if err != nil {
		logger.Error("Failed to build report pipeline", log.FieldError, err)
		os.Exit(1)
	}

	scheduler := services.NewRefreshScheduler(pipeline.Reports, services.RefreshSchedulerConfig{
		Interval:   cfg.RefreshInterval,
		RunOnStart: true,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := scheduler.Stop(stopCtx); err != nil {
			logger.Warn("Refresh scheduler did not stop cleanly", log.FieldError, err)
		}
		pipeline.Caches.Stop()
		_ = amqpClient.Close()
		if stores.Cleanup != nil {
			_ = stores.Cleanup()
		}
	})

	pipeline.Caches.StartCleanup(ctx, cfg.CacheTTL)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start refresh scheduler", log.FieldError, err)
		os.Exit(1)
	}

	reportWorker := worker.NewReportWorker(stores.Store, exporter)
	go func() {
		err := amqpClient.ConsumeReportUpdated(ctx, reportWorker.HandleReportUpdated)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
