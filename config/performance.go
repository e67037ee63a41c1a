package config

import (
	"time"

	"djagency-backend/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const slowRequestThreshold = 200 * time.Millisecond

func PerformanceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		logger.L().Info("request", fields...)

		// event streams stay open until the client disconnects
		if latency > slowRequestThreshold && c.Writer.Header().Get("Content-Type") != "text/event-stream" {
			logger.L().Warn("slow request", fields...)
		}
	}
}
