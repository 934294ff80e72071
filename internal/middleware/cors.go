package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsMaxAge  = "86400"
)

// originList is a parsed CORS_ALLOWED_ORIGINS value.
type originList struct {
	any     bool
	origins map[string]struct{}
}

func parseOrigins(s string) originList {
	l := originList{origins: make(map[string]struct{})}
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			l.any = true
		default:
			l.origins[o] = struct{}{}
		}
	}
	if len(l.origins) == 0 {
		l.any = true
	}
	return l
}

// allow returns the Access-Control-Allow-Origin value for origin, or "" to send none.
func (l originList) allow(origin string) string {
	if l.any {
		return "*"
	}
	if _, ok := l.origins[origin]; ok && origin != "" {
		return origin
	}
	return ""
}

// CORS lets the browser views call the API. allowedOrigins is "*" or a comma-separated list
// such as "http://localhost:3000,http://localhost:3001"; an empty list allows any origin.
func CORS(allowedOrigins string) gin.HandlerFunc {
	origins := parseOrigins(allowedOrigins)
	return func(c *gin.Context) {
		if allowed := origins.allow(c.GetHeader("Origin")); allowed != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
			h.Set("Access-Control-Expose-Headers", RequestIDHeader)
			h.Set("Access-Control-Max-Age", corsMaxAge)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
