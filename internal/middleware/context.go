package middleware

import (
	"github.com/gin-gonic/gin"
	ctxutil "github.com/skillforge/account-service/pkg/context"
	"github.com/skillforge/account-service/pkg/logger"
)

// ContextMiddleware seeds each request context with tracing metadata
// (request id, client info, start time) and logs the request boundaries.
func ContextMiddleware(module string) gin.HandlerFunc {
	return func(c *gin.Context) {
		function := c.Request.URL.Path
		ctx := ctxutil.WithClientIP(c.Request.Context(), c.ClientIP())
		ctx = ctxutil.NewContextWithRequest(ctx, c.Request, module, function)

		c.Request = c.Request.WithContext(ctx)

		logger.DebugWithContext(ctx, "Request started").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Log()

		c.Next()

		logger.InfoWithContext(ctx, "Request completed").
			String("method", c.Request.Method).
			String("path", c.Request.URL.Path).
			Int("status_code", c.Writer.Status()).
			Int("response_size", c.Writer.Size()).
			Duration(ctxutil.GetDuration(ctx)).
			Log()
	}
}
