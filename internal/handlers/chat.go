package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fastmeet-service/internal/fastmeet"
	"fastmeet-service/internal/models"
	"fastmeet-service/internal/repositories"
	"fastmeet-service/internal/ws"
)

// ChatHandler exposes the per-meet chat endpoints. Chat is visible to the
// organizer and accepted participants only.
type ChatHandler struct {
	controller *fastmeet.Controller
	channel    *fastmeet.ChatChannel
	users      repositories.UserDirectory
	hub        *ws.Hub
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(controller *fastmeet.Controller, channel *fastmeet.ChatChannel, users repositories.UserDirectory, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{controller: controller, channel: channel, users: users, hub: hub}
}

// ListMessages handles GET /meets/:meet_id/messages.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	meetID, ok := meetIDParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if !h.authorizeChat(c, meetID, userID) {
		return
	}

	msgs, err := h.channel.List(c.Request.Context(), meetID)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	senderIDs := make([]int, 0, len(msgs))
	seen := map[int]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}

	nameByID := map[int]string{}
	if len(senderIDs) > 0 {
		users, err := h.users.BulkUsers(c.Request.Context(), senderIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load senders"})
			return
		}
		for _, u := range users {
			nameByID[u.ID] = u.Name
		}
	}

	type messageResponse struct {
		models.MeetMessage
		SenderName string `json:"sender_name,omitempty"`
	}

	resp := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		resp = append(resp, messageResponse{MeetMessage: m, SenderName: nameByID[m.SenderID]})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// PostMessage handles POST /meets/:meet_id/messages. The throttle lives in
// the store; a 429 here means the caller's optimistic echo must be rolled
// back without clearing the draft.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	meetID, ok := meetIDParam(c)
	if !ok {
		return
	}
	userID := c.GetInt("userID")

	if !h.authorizeChat(c, meetID, userID) {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.channel.Send(c.Request.Context(), meetID, userID, req.Content)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.hub.BroadcastMessage(meetID, msg)
	c.JSON(http.StatusCreated, msg)
}

// authorizeChat loads the viewer's MeetView and gates chat access on the
// derived flags, the same flags every other surface reads.
func (h *ChatHandler) authorizeChat(c *gin.Context, meetID int, userID int) bool {
	view, err := h.controller.Load(c.Request.Context(), meetID, userID)
	if err != nil {
		writeDomainError(c, err)
		return false
	}
	if !view.IsOrganizer && !view.IsAcceptedParticipant {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a meet participant", "code": "forbidden"})
		return false
	}
	return true
}
