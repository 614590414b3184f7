package middleware

import (
	"time"

	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var (
	attrHTTPMethod     = attribute.Key("http.request.method")
	attrHTTPRoute      = attribute.Key("http.route")
	attrHTTPStatusCode = attribute.Key("http.response.status_code")
)

// httpMetrics holds the HTTP server instruments
type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := telemetry.NewCounter(meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}",
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := telemetry.NewHistogram(meter,
		"http_server_request_duration_seconds",
		"HTTP request latency distribution in seconds",
		"s",
		telemetry.RequestDurationBuckets...,
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics returns a middleware counting requests and recording their
// latency by method and route pattern. It is a pass-through when metrics
// are disabled.
func HTTPMetrics(mp *telemetry.MeterProvider, logger *zap.Logger) gin.HandlerFunc {
	passThrough := func(c *gin.Context) { c.Next() }
	if mp == nil || !mp.IsEnabled() {
		return passThrough
	}

	metrics, err := newHTTPMetrics(mp.Meter("http.server"))
	if err != nil {
		logger.Warn("HTTP metrics disabled", zap.Error(err))
		return passThrough
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		metrics.activeRequests.Add(ctx, 1)
		c.Next()
		metrics.activeRequests.Add(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{
			attrHTTPMethod.String(c.Request.Method),
			attrHTTPRoute.String(route),
		}
		metrics.requestDuration.RecordDuration(ctx, time.Since(start), attrs...)
		metrics.requestTotal.Add(ctx, 1, append(attrs, attrHTTPStatusCode.Int(c.Writer.Status()))...)
	}
}
