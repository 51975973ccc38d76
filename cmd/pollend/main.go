// Command pollend serves DWD pollen forecasts over HTTP and keeps them
// fresh on a fixed schedule.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/dwd-pollen/internal/adapter/dwd"
	httpadapter "github.com/couchcryptid/dwd-pollen/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dwd-pollen/internal/adapter/kafka"
	"github.com/couchcryptid/dwd-pollen/internal/client"
	"github.com/couchcryptid/dwd-pollen/internal/config"
	"github.com/couchcryptid/dwd-pollen/internal/observability"
	"github.com/couchcryptid/dwd-pollen/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	transport := dwd.NewClient(cfg.APIURL, cfg.FetchTimeout, metrics, logger)
	api := client.NewAsync(transport, logger, metrics, true)

	// Refresh announcements are feature-flagged via POLLEN_KAFKA_BROKERS.
	var announcer scheduler.Announcer
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		announcer = publisher
		logger.Info("kafka announcements enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka announcements disabled")
	}

	sched := scheduler.New(api, announcer, cfg.RefreshInterval, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, api, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Start(); err != nil {
		logger.Error("failed to start refresh scheduler", "error", err)
		os.Exit(1)
	}

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	sched.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
