package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// SpanName is the name of the span opened for every request.
const SpanName = "serve_req"

// Handlers contains the HTTP handlers
type Handlers struct {
	tracer trace.Tracer
}

// NewHandlers creates a new handler set
func NewHandlers(tracer trace.Tracer) *Handlers {
	return &Handlers{tracer: tracer}
}

// Register routes every method and path to ServeRequest. Methods gin has no
// route table for land in NoRoute, which serves them the same way.
func (h *Handlers) Register(router *gin.Engine) {
	router.Any("/*path", h.ServeRequest)
	router.NoRoute(h.ServeRequest)
}

// ServeRequest answers 200 with an empty body inside a single span. The
// request itself is never recorded on the span.
func (h *Handlers) ServeRequest(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), SpanName)
	defer span.End()

	c.Status(http.StatusOK)
	// Commit the header here so gin's NoRoute fallback never writes a 404 body.
	c.Writer.WriteHeaderNow()
}
