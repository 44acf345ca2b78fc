package middleware

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/codingclub/hackportal/internal/services"
	"github.com/gin-gonic/gin"
)

var sensitiveFieldPattern = regexp.MustCompile(`"(password|token|secret)"\s*:\s*"[^"]*"`)

// AuditLog records write operations (POST/PUT/DELETE) to system_logs.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		// Only audit write operations
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		// Capture request body (up to 2000 chars for Extra)
		var bodySnippet string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > 2000 {
				bodySnippet = bodySnippet[:2000] + "...[truncated]"
			}
			bodySnippet = sensitiveFieldPattern.ReplaceAllString(bodySnippet, `"$1":"***"`)
		}

		c.Next()

		// record the audit log after the handler ran
		userID := GetUserID(c)
		username := GetUsername(c)
		status := c.Writer.Status()

		module := routeModule(c.FullPath())
		action := fmt.Sprintf("%s %s", method, c.FullPath())
		message := fmt.Sprintf("%s %s %s -> %d", username, method, c.Request.URL.Path, status)

		var uid *uint
		if userID > 0 {
			uid = &userID
		}

		services.LogInfo(module, action, message, uid, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
			"method": method,
			"path":   c.Request.URL.Path,
			"status": status,
			"body":   bodySnippet,
			"audit":  true,
		})
	}
}

// routeModule maps a route path to the component it belongs to.
func routeModule(fullPath string) string {
	trimmed := strings.TrimPrefix(fullPath, "/api/")
	trimmed = strings.TrimPrefix(trimmed, "admin/")
	if idx := strings.Index(trimmed, "/"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	switch trimmed {
	case "teams", "invitations":
		return "team"
	case "resources":
		return "resource"
	case "ideas":
		return "idea"
	case "updates":
		return "update"
	case "users", "roll-numbers":
		return "user"
	case "auth":
		return "auth"
	default:
		return "system"
	}
}
