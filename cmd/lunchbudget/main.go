package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"lunchbudget/internal/amqp"
	"lunchbudget/internal/cli"
	apphttp "lunchbudget/internal/http"
	"lunchbudget/internal/log"
	"lunchbudget/internal/services"
)

const amqpConnectAttempts = 5

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	startCtx, startCancel := context.WithTimeout(context.Background(), time.Minute)
	defer startCancel()

	stores, _, _ := cli.InitBackends(startCtx, logger, cfg)

	// AMQP is optional: without it reports are still stored, just not exported.
	var (
		publisher  services.ReportPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		client, err := amqp.ConnectWithRetry(startCtx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts)
		if err != nil {
			logger.Warn("AMQP unavailable, report updates will not be announced", log.FieldError, err)
		} else {
			amqpClient, publisher = client, client
			logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	pipeline, err := cli.BuildPipeline(cfg, stores.Store, publisher, logger)
	if err != nil {
		logger.Error("Failed to build report pipeline", log.FieldError, err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(apphttp.ServerConfig{Addr: ":" + strings.TrimPrefix(cfg.Port, ":")},
		pipeline.Reports, stores.Store, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		pipeline.Caches.Stop()
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if stores.Cleanup != nil {
			if err := stores.Cleanup(); err != nil {
				logger.Error("Store cleanup error", log.FieldError, err)
			}
		}
	})
	pipeline.Caches.StartCleanup(ctx, cfg.CacheTTL)

	logger.Info("Starting lunchbudget server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
