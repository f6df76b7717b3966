package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoStore marks responses as per-user data that shared caches must not keep.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "private, no-store")
		c.Next()
	}
}
