package middleware

import (
	"net/http"

	"clearing_proposals/internal/infrastructure/logger"
	"clearing_proposals/internal/infrastructure/metrics"
	"clearing_proposals/internal/infrastructure/ratelimit"
	"clearing_proposals/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errRateLimited = pkg.NewDomainErrorSimple("RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)

// RateLimit throttles requests per client IP. Limiter failures let the
// request through.
func RateLimit(limiter ratelimit.Limiter, l *zap.Logger) gin.HandlerFunc {
	l = logger.OrNop(l)
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			l.Warn("[ratelimit] limiter unavailable", zap.String("ip", c.ClientIP()), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			metrics.RateLimited.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(errRateLimited.HTTPStatus, errRateLimited.ToHTTPError())
			return
		}
		c.Next()
	}
}
