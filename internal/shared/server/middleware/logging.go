package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tailor-portal/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	ResumeIDKey = "resumeId"
	JobIDKey    = "jobId"
	FileIDKey   = "fileId"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		for _, key := range []string{ResumeIDKey, JobIDKey, FileIDKey} {
			if v := c.GetString(key); v != "" {
				fields[key] = v
			}
		}
		if authErr := c.GetString("authError"); authErr != "" {
			fields["auth_error"] = authErr
		}

		telemetry.Info("request.complete", fields)
	}
}
