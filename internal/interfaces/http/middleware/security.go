// internal/interfaces/http/middleware/security.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

var securityHeaders = map[string]string{
	"X-Frame-Options":         "DENY",
	"X-Content-Type-Options":  "nosniff",
	"Referrer-Policy":         "strict-origin-when-cross-origin",
	"Content-Security-Policy": "default-src 'self'",
	"Server":                  "Store API",
}

// SecurityHeaders adds security headers to responses and marks them uncacheable
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for name, value := range securityHeaders {
			h.Set(name, value)
		}
		if c.Request.Method != http.MethodOptions {
			h.Set("Cache-Control", "no-store")
		}
		c.Next()
	}
}
