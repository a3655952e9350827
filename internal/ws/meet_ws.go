package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"fastmeet-service/internal/middleware"
	"fastmeet-service/internal/models"
	"fastmeet-service/internal/observability"
	"fastmeet-service/internal/repositories"
)

// MeetWebSocketHandler handles websocket connections scoped to one meet.
type MeetWebSocketHandler struct {
	hub            *Hub
	meets          repositories.MeetRepository
	participations repositories.ParticipationRepository
	jwtSecret      []byte
}

// NewMeetWebSocketHandler constructs a MeetWebSocketHandler.
func NewMeetWebSocketHandler(hub *Hub, meets repositories.MeetRepository, participations repositories.ParticipationRepository, jwtSecret []byte) *MeetWebSocketHandler {
	return &MeetWebSocketHandler{hub: hub, meets: meets, participations: participations, jwtSecret: jwtSecret}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and registers the client in the meet room.
// Anyone related to the meet may listen: the organizer and users holding a
// pending or accepted participation.
func (h *MeetWebSocketHandler) Handle(c *gin.Context) {
	meetID, err := strconv.Atoi(c.Param("meet_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid meet id"})
		return
	}

	ctx, span := otel.Tracer("fastmeet-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	allowed, chatVisible, err := h.relation(c.Request.Context(), meetID, userID)
	if err != nil || !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for meet"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	traceID := span.SpanContext().TraceID().String()
	info := newConnInfo(userID, observability.MetaFromRequest(c.Request), traceID)
	info.ChatVisible = chatVisible
	h.hub.AddClient(meetID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	_ = observability.PublishEvent(ctx, meetRoutingKey, observability.NewEnvelope("ws_events", "ws_connect", map[string]any{
		"ws": map[string]any{
			"meet_id": meetID,
			"conn_id": info.ConnID,
		},
		"identity": map[string]any{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}), observability.BuildHeaders(info.RequestID, traceID))

	go h.readLoop(meetID, conn, info)
}

// readLoop drains client frames until disconnect. Clients do not send events
// over the socket; all mutations go through the HTTP surface.
func (h *MeetWebSocketHandler) readLoop(meetID int, conn *websocket.Conn, info ConnInfo) {
	defer func() {
		h.hub.RemoveClient(meetID, conn)
		conn.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		_ = observability.PublishEvent(context.Background(), meetRoutingKey, observability.NewEnvelope("ws_events", "ws_disconnect", map[string]any{
			"ws": map[string]any{
				"meet_id":     meetID,
				"conn_id":     info.ConnID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			},
			"identity": map[string]any{
				"user_id": info.UserID,
			},
		}), observability.BuildHeaders(info.RequestID, info.TraceID))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *MeetWebSocketHandler) validateToken(header string) (int, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return 0, fmt.Errorf("malformed authorization header")
	}
	return middleware.ParseUserID(h.jwtSecret, parts[1])
}

// relation reports whether the user may subscribe at all (organizer or any
// participation) and whether message events are visible to them (organizer
// or accepted participant, same rule as the HTTP chat surface).
func (h *MeetWebSocketHandler) relation(ctx context.Context, meetID int, userID int) (allowed bool, chatVisible bool, err error) {
	meet, err := h.meets.GetMeet(ctx, meetID)
	if err != nil {
		return false, false, err
	}
	if meet.OrganizerID == userID {
		return true, true, nil
	}

	participation, err := h.participations.GetByMeetAndUser(ctx, meetID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipationNotFound) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, participation.Status == models.ParticipationAccepted, nil
}
