/*
Package monitoring provides Prometheus metrics for the demo server, the span
export pipeline and the local collector sink.

# Features

- HTTP request metrics (count, latency) via Gin middleware
- Span export metrics (batches, spans, batch size, latency, failures)
- gRPC server metrics via a unary interceptor
- Uptime, Go runtime and process metrics

Each Metrics value owns a private registry; nothing is registered globally.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(monitoring.UnaryServerInterceptor(metrics)),
	)

	http.Handle("/metrics", metrics.Handler())
*/
package monitoring
