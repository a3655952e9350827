package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fastmeet-service/internal/fastmeet"
	"fastmeet-service/internal/observability"
)

// writeDomainError maps the fastmeet failure taxonomy onto HTTP statuses.
// Every handler funnels controller and chat errors through here so the
// presentation layer sees one consistent error shape.
func writeDomainError(c *gin.Context, err error) {
	var blocked *fastmeet.BlockedError
	switch {
	case errors.As(err, &blocked):
		observability.IncJoinBlocked()
		body := gin.H{"error": "user already holds an active meet", "code": "already_blocked"}
		if blocked.ConflictingMeetID != 0 {
			body["conflicting_meet_id"] = blocked.ConflictingMeetID
		}
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, fastmeet.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": "not_found"})
	case errors.Is(err, fastmeet.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "code": "forbidden"})
	case errors.Is(err, fastmeet.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "participation already exists", "code": "conflict"})
	case errors.Is(err, fastmeet.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid state for this transition", "code": "invalid_state"})
	case errors.Is(err, fastmeet.ErrMessageEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is empty", "code": "message_empty"})
	case errors.Is(err, fastmeet.ErrMessageTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message too long", "code": "message_too_long"})
	case errors.Is(err, fastmeet.ErrRateLimited):
		observability.IncChatRateLimited()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many messages, slow down", "code": "rate_limited"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
	}
}
