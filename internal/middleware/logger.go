package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggerConfig controls the access log.
type LoggerConfig struct {
	// SkipPaths are not logged when they succeed, e.g. health probes and
	// metric scrapes.
	SkipPaths []string
}

// Logger returns an access log middleware that logs every request.
func Logger(logger *slog.Logger) gin.HandlerFunc {
	return LoggerWithConfig(logger, LoggerConfig{})
}

// LoggerWithConfig returns an access log middleware. Each entry carries the
// method, path, route pattern, status, size, latency and client IP, plus the
// authenticated user and cache outcome when present. The level follows the
// status: Info below 400, Warn for 4xx, Error for 5xx. Context-aware logging
// lets the handler attach request-scoped attributes such as request_id.
func LoggerWithConfig(logger *slog.Logger, cfg LoggerConfig) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[normalizePath(p)] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		if _, ok := skip[normalizePath(c.Request.URL.Path)]; ok && status < 400 {
			return
		}

		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			attrs = append(attrs, slog.String("query", q))
		}
		if claims, ok := GetClaims(c); ok {
			attrs = append(attrs, slog.String("user", claims.UserName))
		}
		if cs := c.Writer.Header().Get(cacheStatusHeader); cs != "" {
			attrs = append(attrs, slog.String("cache", cs))
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}
