package monitoring

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestMiddlewareRecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := NewMetrics()

	router := gin.New()
	router.Use(Middleware(metrics))
	router.GET("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/anything", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	// Unrouted method falls through to gin's 404
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/anything", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("GET", "/*path", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("POST", "unmatched", "404")))
}

func TestRecordExport(t *testing.T) {
	metrics := NewMetrics()

	metrics.RecordExport(10, 5*time.Millisecond, nil)
	metrics.RecordExport(4, time.Millisecond, nil)
	metrics.RecordExport(7, 5*time.Second, errors.New("deadline exceeded"))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ExportBatches.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExportBatches.WithLabelValues(ResultFailure)))
	assert.Equal(t, 14.0, testutil.ToFloat64(metrics.ExportedSpans.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 7.0, testutil.ToFloat64(metrics.ExportedSpans.WithLabelValues(ResultFailure)))
}

func TestUnaryServerInterceptor(t *testing.T) {
	metrics := NewMetrics()
	interceptor := UnaryServerInterceptor(metrics)
	info := &grpc.UnaryServerInfo{FullMethod: "/svc/Method"}

	_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)

	_, err = interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GRPCCalls.WithLabelValues("/svc/Method", codes.OK.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GRPCCalls.WithLabelValues("/svc/Method", codes.Unavailable.String())))
}

func TestHandlerExposition(t *testing.T) {
	metrics := NewMetrics()
	metrics.AddReceivedSpans(3)

	srv := httptest.NewServer(metrics.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "demo_collector_received_spans_total 3")
	assert.Contains(t, string(body), "demo_uptime_seconds")
}

func TestMetricsInstancesAreIndependent(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.AddReceivedSpans(5)

	assert.Equal(t, 5.0, testutil.ToFloat64(a.ReceivedSpans))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ReceivedSpans))
}
