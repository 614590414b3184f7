package middleware

import (
	"context"

	"github.com/erp/sfa/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling returns a middleware that tags profiling samples taken while a
// request runs with its method and route pattern. Paths in skip, such as
// health checks, run untagged.
func Profiling(enabled bool, skip ...string) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		labels := map[string]string{
			telemetry.ProfilingLabelMethod: c.Request.Method,
			telemetry.ProfilingLabelRoute:  c.FullPath(),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
