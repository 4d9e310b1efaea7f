package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// Filter skips span creation for requests it returns false for (health checks).
	Filter func(*http.Request) bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "portfolio-backend",
		Enabled:     true,
		Filter: func(r *http.Request) bool {
			return r.URL.Path != "/health"
		},
	}
}

// Tracing wraps otelgin. Span names follow "METHOD route", e.g. "GET /api/v1/posts/:slug".
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	var opts []otelgin.Option
	if cfg.Filter != nil {
		opts = append(opts, otelgin.WithFilter(cfg.Filter))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanEnricher tags the server span with the request ID, the authenticated
// admin and an error status for 4xx/5xx responses. It must run after Tracing:
// otelgin ends the span when its own c.Next returns, so the tagging has to
// happen further down the chain.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpan(c, span)
		markSpanStatus(span, c.Writer.Status())
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if id := GetRequestID(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if id := GetAdminID(c); id != "" {
		span.SetAttributes(attribute.String("admin_id", id))
	}
}

// markSpanStatus sets an error status for client and server errors.
// otelgin only flags 5xx; rejected logins and 429s are worth seeing too.
func markSpanStatus(span trace.Span, status int) {
	if status < http.StatusBadRequest {
		return
	}
	span.SetStatus(codes.Error, http.StatusText(status))
}
