package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger 请求日志中间件（基于 Zap 结构化日志）
// 鉴权通过时附带账号与角色
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
		}
		if rid := RequestIDFrom(c); rid != "" {
			fields = append(fields, zap.String(requestIDKey, rid))
		}
		if accountID := c.GetString(ContextAccountID); accountID != "" {
			fields = append(fields, zap.String(ContextAccountID, accountID), zap.String(ContextRole, c.GetString(ContextRole)))
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case statusCode >= 500:
			logger.Error("请求处理失败", fields...)
		case statusCode == 401 || statusCode == 429:
			logger.Warn("鉴权失败或被限流", fields...)
		case statusCode >= 400:
			logger.Info("客户端错误", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}

