/*
Package collector implements a minimal OTLP/gRPC trace receiver.

It accepts ExportTraceServiceRequest calls, logs one line per resource with
the span count, and keeps the most recent batches in memory. It forwards
nothing. Its purpose is to run the traced demo without a full OpenTelemetry
Collector and to observe batching end to end in tests.

	sink := collector.NewSink(logger).WithMetrics(metrics)
	srv := collector.NewServer(sink, metrics, logger)
	go srv.Serve(lis)
	defer srv.Stop()
*/
package collector
