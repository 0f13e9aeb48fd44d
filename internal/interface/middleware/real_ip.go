package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP sets the real client IP into Gin context (key: "real_ip").
// Priority:
// 1) CF-Connecting-IP (Cloudflare)
// 2) X-Forwarded-For (left-most)
// 3) X-Real-IP (nginx)
// 4) fallback to c.ClientIP()
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := firstValidIP(
			c.GetHeader("CF-Connecting-IP"),
			leftMost(c.GetHeader("X-Forwarded-For")),
			c.GetHeader("X-Real-IP"),
		)
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set("real_ip", ip)
		c.Next()
	}
}

func leftMost(xff string) string {
	first, _, _ := strings.Cut(xff, ",")
	return first
}

func firstValidIP(candidates ...string) string {
	for _, s := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(s)); ip != nil {
			return ip.String()
		}
	}
	return ""
}
