package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wperron/h2-poll-traces/internal/collector"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/config"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/logging"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/monitoring"
)

func main() {
	cfg := config.LoadOrDefault()

	// Parse flags (override env vars)
	addr := flag.String("addr", cfg.Collector.Addr, "OTLP/gRPC listen address")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	logger, err := logging.FromSettings(cfg.Logging.Level, *dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log settings: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics()
	sink := collector.NewSink(logger).WithMetrics(metrics)
	srv := collector.NewServer(sink, metrics, logger)

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", *addr), zap.Error(err))
	}

	if cfg.Metrics.Enabled {
		go func() {
			logger.Info("starting metrics server", zap.String("addr", cfg.Collector.MetricsAddr))
			if err := http.ListenAndServe(cfg.Collector.MetricsAddr, metrics.Handler()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(lis)
	}()

	select {
	case <-sigChan:
		srv.Stop()
		stats := sink.Stats()
		logger.Info("collector stopped",
			zap.Int64("requests", stats.Requests),
			zap.Int64("spans", stats.Spans),
		)
	case err := <-errChan:
		if err != nil {
			logger.Fatal("collector failed", zap.Error(err))
		}
	}
}
