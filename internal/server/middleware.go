package server

import (
	"crypto/subtle"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
)

// accessLog logs every request once it completes. Client errors log at Warn
// and server errors at Error.
func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("http.method", c.Request.Method),
			zap.String("http.path", c.Request.URL.Path),
			zap.Int("http.status_code", status),
			zap.Int64("http.latency_ms", time.Since(start).Milliseconds()),
			zap.String("http.client_ip", c.ClientIP()),
			zap.String("http.user_agent", c.Request.UserAgent()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("http.error", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("HTTP request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("HTTP request warning", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// requireAdmin checks the bearer token on admin routes. An empty token
// leaves the routes open.
func requireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		given, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(given)), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, envelope{Message: "unauthorized"})
			return
		}
		c.Next()
	}
}

// rateLimit rejects a client IP that has used up its bucket with 429 and a
// Retry-After header in whole seconds.
func rateLimit(limiter *medtravel.VisitorLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := limiter.Allow(c.ClientIP())
		if err == nil {
			c.Next()
			return
		}
		var rl *medtravel.RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rl.RetryAfter.Seconds()))))
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, envelope{Message: "too many translation requests, try again shortly"})
	}
}
