package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDContextKey = "request_id"

// requestIDFromContext returns the request id for audit correlation, minting
// one when neither the context nor the X-Request-ID header carries it.
func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// userIDFromContext reads the authenticated user id set by the auth
// middleware, nil when the request is unauthenticated.
func userIDFromContext(c *gin.Context) *int64 {
	userID := c.GetInt("userID")
	if userID == 0 {
		return nil
	}
	value := int64(userID)
	return &value
}
