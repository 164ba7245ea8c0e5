package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/wperron/h2-poll-traces/internal/infrastructure/config"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/logging"
)

// InstrumentationName identifies the tracer handed out by a Pipeline.
const InstrumentationName = "github.com/wperron/h2-poll-traces"

// errorLogInterval bounds how often exporter failures reach the log.
const errorLogInterval = 10 * time.Second

// Pipeline owns the tracer provider and its batch exporter.
type Pipeline struct {
	provider   *sdktrace.TracerProvider
	tracer     trace.Tracer
	resource   *resource.Resource
	propagator propagation.TextMapPropagator
	logger     *logging.Logger
}

// Option customizes Setup.
type Option func(*options)

type options struct {
	exporter    sdktrace.SpanExporter
	recorder    ExportRecorder
	dialOptions []grpc.DialOption
	global      bool
}

// WithExporter replaces the exporter built from config.
func WithExporter(exporter sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = exporter
	}
}

// WithRecorder reports every export call to r.
func WithRecorder(r ExportRecorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithDialOptions appends gRPC dial options for the OTLP exporter.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(o *options) {
		o.dialOptions = append(o.dialOptions, opts...)
	}
}

// WithoutGlobal leaves the otel globals untouched.
func WithoutGlobal() Option {
	return func(o *options) {
		o.global = false
	}
}

// Setup builds the export pipeline: exporter, batch processor, resource and
// sampler. Unless WithoutGlobal is given it also installs the provider,
// propagator and error handler process-wide. It must run once, before any
// instrumented code.
func Setup(ctx context.Context, cfg config.TracingConfig, logger *logging.Logger, opts ...Option) (*Pipeline, error) {
	o := options{global: true}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	exporter := o.exporter
	if exporter == nil {
		var err error
		exporter, err = newExporter(ctx, cfg, append(defaultDialOptions(), o.dialOptions...))
		if err != nil {
			return nil, fmt.Errorf("failed to create span exporter: %w", err)
		}
	}
	if o.recorder != nil {
		exporter = &recordingExporter{SpanExporter: exporter, recorder: o.recorder}
	}

	res := NewResource(cfg.ServiceName)

	// No sampler ratio and no severity filter: every span reaches the batcher.
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(cfg.BatchTimeout),
			sdktrace.WithExportTimeout(cfg.ExportTimeout),
			sdktrace.WithMaxQueueSize(cfg.MaxQueueSize),
			sdktrace.WithMaxExportBatchSize(cfg.MaxExportBatchSize),
		),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	propagator := propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)

	if o.global {
		otel.SetTracerProvider(provider)
		otel.SetTextMapPropagator(propagator)
		otel.SetErrorHandler(NewErrorHandler(logger, errorLogInterval))
	}

	logger.Info("trace pipeline initialized",
		zap.String("exporter", cfg.Exporter),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("service", cfg.ServiceName),
		zap.Duration("export_timeout", cfg.ExportTimeout),
	)

	return &Pipeline{
		provider:   provider,
		tracer:     provider.Tracer(InstrumentationName),
		resource:   res,
		propagator: propagator,
		logger:     logger,
	}, nil
}

// NewResource returns the descriptor attached to every span: the service name
// and nothing else.
func NewResource(serviceName string) *resource.Resource {
	return resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName))
}

// Tracer returns the tracer handlers should open spans with.
func (p *Pipeline) Tracer() trace.Tracer {
	return p.tracer
}

// Provider returns the underlying SDK provider.
func (p *Pipeline) Provider() *sdktrace.TracerProvider {
	return p.provider
}

// Resource returns the resource descriptor shared by all spans.
func (p *Pipeline) Resource() *resource.Resource {
	return p.resource
}

// Propagator returns the W3C trace-context and baggage propagator.
func (p *Pipeline) Propagator() propagation.TextMapPropagator {
	return p.propagator
}

// ForceFlush exports every queued span, bounded by ctx.
func (p *Pipeline) ForceFlush(ctx context.Context) error {
	if err := p.provider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("failed to flush spans: %w", err)
	}
	return nil
}

// Shutdown drains the queue best-effort within ctx and stops the exporter.
// Spans still queued when ctx expires are lost.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	p.logger.Info("shutting down trace pipeline")
	if err := p.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down trace pipeline: %w", err)
	}
	return nil
}
