/*
Package tracing sets up the OpenTelemetry span export pipeline.

# Overview

Spans are queued in memory and shipped in batches over OTLP/gRPC to a
collector, off the request path. Export failures never reach callers; they
are reported to a rate-limited zap error handler and, optionally, to an
ExportRecorder.

Spans are not filtered: the sampler is AlwaysSample and there is no level
threshold, so every span opened anywhere in the process is exported.

# Usage

	pipeline, err := tracing.Setup(ctx, cfg.Tracing, logger,
		tracing.WithRecorder(metrics),
	)
	if err != nil {
		panic(err)
	}
	defer pipeline.Shutdown(ctx)

	router.Use(tracing.Propagation(pipeline.Propagator()))

	_, span := pipeline.Tracer().Start(ctx, "operation")
	defer span.End()

# Queue behavior

The batch queue holds MaxQueueSize spans. When it is full, newly ended spans
are dropped rather than blocking the caller. A batch is exported when
MaxExportBatchSize spans are waiting or BatchTimeout elapses, whichever is
first. Each export attempt is bounded by ExportTimeout.

Nothing is flushed implicitly at exit. Call ForceFlush or Shutdown.
*/
package tracing
