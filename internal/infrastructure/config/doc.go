// Package config provides 12-factor configuration management for the demo server.
//
// Configuration is loaded from environment variables with defaults that match
// the fixed values of the reproduction case. CLI flags in cmd/ can override the
// listen address and collector endpoint.
//
// Configuration Sections:
//   - Server: HTTP listen host/port, cleartext HTTP/2
//   - Tracing: OTLP collector endpoint, export timeout, service name, batching
//   - Logging: Log level and output format
//   - Metrics: Optional Prometheus listener
//   - Collector: Listen address of the local OTLP sink
//   - Shutdown: Bound on the span drain at exit
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Listening on http://%s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - HOST, PORT, H2C_ENABLED
//   - OTEL_COLLECTOR_ENDPOINT, OTEL_EXPORT_TIMEOUT, OTEL_SERVICE_NAME, OTEL_EXPORTER
//   - OTEL_BATCH_TIMEOUT, OTEL_MAX_QUEUE_SIZE, OTEL_MAX_EXPORT_BATCH_SIZE
//   - LOG_LEVEL, LOG_DEV
//   - METRICS_ENABLED, METRICS_ADDR
//   - COLLECTOR_ADDR, COLLECTOR_METRICS_ADDR, SHUTDOWN_TIMEOUT
package config
