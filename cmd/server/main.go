package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wperron/h2-poll-traces/internal/infrastructure/config"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/logging"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/monitoring"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/server"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/tracing"
)

func main() {
	cfg := config.LoadOrDefault()

	// Parse flags (override env vars)
	host := flag.String("host", cfg.Server.Host, "Listen host")
	port := flag.String("port", cfg.Server.Port, "Listen port")
	endpoint := flag.String("endpoint", cfg.Tracing.Endpoint, "OTLP/gRPC collector endpoint")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg.Server.Host = *host
	cfg.Server.Port = *port
	cfg.Tracing.Endpoint = *endpoint
	cfg.Logging.Development = *dev

	// Logs go to stderr; stdout carries only the listening line.
	logger, err := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development, "stderr")
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log settings, logging disabled: %v\n", err)
		logger = logging.NewNop()
	}
	defer logger.Sync()

	metrics := monitoring.NewMetrics()

	pipeline, err := tracing.Setup(context.Background(), cfg.Tracing, logger, tracing.WithRecorder(metrics))
	if err != nil {
		panic(fmt.Sprintf("failed to set up trace pipeline: %v", err))
	}

	srv := server.New(cfg, server.Deps{
		Tracer:     pipeline.Tracer(),
		Propagator: pipeline.Propagator(),
		Metrics:    metrics,
		Logger:     logger,
	})

	ln, err := srv.Listen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return
	}
	fmt.Printf("Listening on http://%s\n", ln.Addr())

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	select {
	case sig := <-sigChan:
		logger.Info("shutting down", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
		// Best effort: spans still queued at the deadline are lost.
		if err := pipeline.Shutdown(ctx); err != nil {
			logger.Warn("trace pipeline shutdown incomplete", zap.Error(err))
		}
	case err := <-errChan:
		if err != nil {
			logger.Error("server stopped", zap.Error(err))
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		}
	}
}
