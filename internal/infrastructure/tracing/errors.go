package tracing

import (
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/wperron/h2-poll-traces/internal/infrastructure/logging"
)

// ErrorHandler logs errors raised inside the otel SDK, such as failed
// exports. At most one entry is written per interval; the rest are counted
// and reported with the next entry.
type ErrorHandler struct {
	logger     *zap.Logger
	limiter    *rate.Limiter
	suppressed atomic.Int64
}

var _ otel.ErrorHandler = (*ErrorHandler)(nil)

// NewErrorHandler creates an ErrorHandler writing to logger.
func NewErrorHandler(logger *logging.Logger, interval time.Duration) *ErrorHandler {
	return &ErrorHandler{
		logger:  logger.Named("otel").Logger,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Handle implements otel.ErrorHandler.
func (h *ErrorHandler) Handle(err error) {
	if !h.limiter.Allow() {
		h.suppressed.Add(1)
		return
	}

	fields := []zap.Field{zap.Error(err)}
	if n := h.suppressed.Swap(0); n > 0 {
		fields = append(fields, zap.Int64("suppressed", n))
	}
	h.logger.Warn("telemetry export error", fields...)
}

// Suppressed returns the number of errors dropped since the last log entry.
func (h *ErrorHandler) Suppressed() int64 {
	return h.suppressed.Load()
}
