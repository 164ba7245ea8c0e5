package tracing

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/propagation"
)

// Propagation creates Gin middleware that extracts an incoming W3C trace
// context into the request context. It opens no span of its own, so the
// handler's span becomes a child of the remote caller when one is present.
func Propagation(propagator propagation.TextMapPropagator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
