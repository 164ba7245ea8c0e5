package tracing

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"

	"github.com/wperron/h2-poll-traces/internal/infrastructure/config"
)

// ExportRecorder observes exporter calls. monitoring.Metrics implements it.
type ExportRecorder interface {
	RecordExport(spans int, duration time.Duration, err error)
}

// newExporter builds the exporter selected by cfg.Exporter.
func newExporter(ctx context.Context, cfg config.TracingConfig, dialOpts []grpc.DialOption) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case config.ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	case config.ExporterOTLP:
		// An http:// endpoint URL implies a plaintext connection.
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(cfg.Endpoint),
			otlptracegrpc.WithTimeout(cfg.ExportTimeout),
			otlptracegrpc.WithDialOption(dialOpts...),
		)
	default:
		return nil, fmt.Errorf("unknown exporter %q", cfg.Exporter)
	}
}

// defaultDialOptions keeps the collector connection alive between batches.
func defaultDialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		// Pings only while an export is in flight, to stay under the
		// collector's too_many_pings enforcement.
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                60 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: false,
		}),
	}
}

// recordingExporter reports each batch to an ExportRecorder.
type recordingExporter struct {
	sdktrace.SpanExporter
	recorder ExportRecorder
}

func (e *recordingExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	start := time.Now()
	err := e.SpanExporter.ExportSpans(ctx, spans)
	e.recorder.RecordExport(len(spans), time.Since(start), err)
	return err
}
