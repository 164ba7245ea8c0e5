package tracing

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wperron/h2-poll-traces/internal/infrastructure/logging"
)

func TestPropagationJoinsRemoteTrace(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	router := gin.New()
	router.Use(Propagation(propagation.TraceContext{}))
	router.GET("/", func(c *gin.Context) {
		_, span := tracer.Start(c.Request.Context(), "serve_req")
		span.End()
		c.Status(http.StatusOK)
	})

	tests := []struct {
		name        string
		traceparent string
		wantTraceID string
		wantParent  string
	}{
		{
			name:        "remote parent",
			traceparent: "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
			wantTraceID: "0af7651916cd43dd8448eb211c80319c",
			wantParent:  "b7ad6b7169203331",
		},
		{
			name: "no header starts a new trace",
		},
		{
			name:        "malformed header is ignored",
			traceparent: "00-zzzz-b7ad6b7169203331-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(recorder.Ended())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.traceparent != "" {
				req.Header.Set("traceparent", tt.traceparent)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)

			ended := recorder.Ended()
			require.Len(t, ended, before+1)
			span := ended[len(ended)-1]

			if tt.wantTraceID == "" {
				assert.False(t, span.Parent().IsValid())
				assert.True(t, span.SpanContext().TraceID().IsValid())
				return
			}
			assert.Equal(t, tt.wantTraceID, span.SpanContext().TraceID().String())
			assert.Equal(t, tt.wantParent, span.Parent().SpanID().String())
			assert.True(t, span.Parent().IsRemote())
		})
	}
}

func TestPropagationOpensNoSpan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Propagation(propagation.TraceContext{}))

	var got trace.SpanContext
	router.GET("/", func(c *gin.Context) {
		got = trace.SpanContextFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, got.IsValid())
}

func TestErrorHandlerRateLimits(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	h := NewErrorHandler(logger, time.Hour)
	for i := 0; i < 10; i++ {
		h.Handle(errors.New("context deadline exceeded"))
	}

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "telemetry export error", entries[0].Message)
	assert.Equal(t, "otel", entries[0].LoggerName)
	assert.Equal(t, int64(9), h.Suppressed())
}

func TestErrorHandlerReportsSuppressedCount(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	h := NewErrorHandler(logger, 20*time.Millisecond)
	h.Handle(errors.New("first"))
	h.Handle(errors.New("dropped"))
	h.Handle(errors.New("dropped"))

	time.Sleep(50 * time.Millisecond)
	h.Handle(errors.New("second"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[1].ContextMap()["suppressed"])
	assert.Equal(t, int64(0), h.Suppressed())
}
