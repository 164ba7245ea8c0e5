package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	collectortrace "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	commonpb "go.opentelemetry.io/proto/otlp/common/v1"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/wperron/h2-poll-traces/internal/infrastructure/logging"
	"github.com/wperron/h2-poll-traces/internal/infrastructure/monitoring"
)

// DefaultMaxBatches is how many received batches a Sink keeps.
const DefaultMaxBatches = 1024

// Batch is the spans of one resource received in a single export call.
type Batch struct {
	Received  time.Time
	Resource  map[string]string
	SpanNames []string
}

// Stats counts what a Sink has received since it was created.
type Stats struct {
	Requests int64
	Spans    int64
}

// Sink is an OTLP TraceService that logs and retains what it receives.
type Sink struct {
	collectortrace.UnimplementedTraceServiceServer

	logger     *logging.Logger
	metrics    *monitoring.Metrics
	maxBatches int

	mu      sync.Mutex
	batches []Batch
	stats   Stats
}

var _ collectortrace.TraceServiceServer = (*Sink)(nil)

// NewSink creates a sink that keeps the last DefaultMaxBatches batches.
func NewSink(logger *logging.Logger) *Sink {
	return &Sink{
		logger:     logger.Named("collector"),
		maxBatches: DefaultMaxBatches,
	}
}

// WithMetrics adds received span counting to the sink
func (s *Sink) WithMetrics(metrics *monitoring.Metrics) *Sink {
	s.metrics = metrics
	return s
}

// WithMaxBatches changes how many batches are retained. Older batches are
// dropped first.
func (s *Sink) WithMaxBatches(n int) *Sink {
	if n > 0 {
		s.maxBatches = n
	}
	return s
}

// Export implements the OTLP TraceService.
func (s *Sink) Export(ctx context.Context, req *collectortrace.ExportTraceServiceRequest) (*collectortrace.ExportTraceServiceResponse, error) {
	now := time.Now()
	received := make([]Batch, 0, len(req.GetResourceSpans()))
	spans := 0

	for _, rs := range req.GetResourceSpans() {
		batch := Batch{
			Received: now,
			Resource: attributeMap(rs.GetResource().GetAttributes()),
		}
		for _, ss := range rs.GetScopeSpans() {
			for _, span := range ss.GetSpans() {
				batch.SpanNames = append(batch.SpanNames, span.GetName())
			}
		}
		spans += len(batch.SpanNames)
		received = append(received, batch)
	}

	s.mu.Lock()
	s.stats.Requests++
	s.stats.Spans += int64(spans)
	s.batches = append(s.batches, received...)
	if over := len(s.batches) - s.maxBatches; over > 0 {
		s.batches = append([]Batch(nil), s.batches[over:]...)
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.AddReceivedSpans(spans)
	}

	for _, batch := range received {
		s.logger.Info("received spans",
			zap.Int("spans", len(batch.SpanNames)),
			zap.Any("resource", batch.Resource),
		)
	}
	if ce := s.logger.Check(zapcore.DebugLevel, "export request"); ce != nil {
		payload, err := protojson.Marshal(req)
		if err != nil {
			ce.Write(zap.Error(err))
		} else {
			ce.Write(zap.ByteString("request", payload))
		}
	}

	return &collectortrace.ExportTraceServiceResponse{}, nil
}

// Stats returns the running totals.
func (s *Sink) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Batches returns a copy of the retained batches, oldest first.
func (s *Sink) Batches() []Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Batch, len(s.batches))
	copy(out, s.batches)
	return out
}

func attributeMap(attrs []*commonpb.KeyValue) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		m[kv.GetKey()] = valueString(kv.GetValue())
	}
	return m
}

func valueString(v *commonpb.AnyValue) string {
	switch val := v.GetValue().(type) {
	case *commonpb.AnyValue_StringValue:
		return val.StringValue
	case *commonpb.AnyValue_BoolValue:
		return fmt.Sprintf("%t", val.BoolValue)
	case *commonpb.AnyValue_IntValue:
		return fmt.Sprintf("%d", val.IntValue)
	case *commonpb.AnyValue_DoubleValue:
		return fmt.Sprintf("%g", val.DoubleValue)
	case nil:
		return ""
	default:
		b, err := protojson.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
