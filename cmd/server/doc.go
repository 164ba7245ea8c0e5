// Package main runs the traced demo HTTP server.
//
// Every request, whatever its method, path or body, is answered with 200 and
// an empty body, and produces one span named serve_req. Spans are batched and
// exported over OTLP/gRPC to a collector, http://localhost:4317 by default,
// with a 5s export timeout and the resource service.name=h2-poll-traces.
//
// Output:
//   - stdout: "Listening on http://127.0.0.1:9898" once the port is bound
//   - stderr: "server error: <err>" if binding or serving fails, then exit
//   - stderr: structured zap logs
//
// A pipeline that cannot be built (bad endpoint URL, invalid settings) panics
// at startup. An unreachable collector does not: export failures are logged
// at most once per 10s and never affect responses.
//
// Configuration:
//   - Environment variables, see internal/infrastructure/config
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server
//	./server -port 9898 -endpoint http://localhost:4317
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: stop accepting connections, then flush queued spans
//     within SHUTDOWN_TIMEOUT
package main
