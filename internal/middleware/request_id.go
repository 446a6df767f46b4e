package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ContextRequestID = "request_id"

// RequestID assigns a unique id to each request and echoes it back in the
// X-Request-ID header. An incoming X-Request-ID is preserved so ids survive
// proxies and retries.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ContextRequestID, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// GetRequestID gets the current request id from context
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(ContextRequestID); exists {
		return id.(string)
	}
	return ""
}
