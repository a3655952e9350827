package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fastmeet-service/internal/models"
	"fastmeet-service/internal/observability"
)

// meetRoutingKey is where websocket lifecycle events are published.
const meetRoutingKey = "ws_events.meets"

// Hub maintains the active websocket room per meet.
type Hub struct {
	rooms    map[int]map[*websocket.Conn]bool
	connInfo map[int]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[int]map[*websocket.Conn]bool),
		connInfo: make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection to a meet room.
func (h *Hub) AddClient(meetID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[meetID]; !ok {
		h.rooms[meetID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[meetID][conn] = true
	if _, ok := h.connInfo[meetID]; !ok {
		h.connInfo[meetID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[meetID][conn] = info
}

// RemoveClient removes a websocket connection from a meet room.
func (h *Hub) RemoveClient(meetID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[meetID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, meetID)
		}
	}
	if infos, ok := h.connInfo[meetID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, meetID)
		}
	}
}

// Broadcast sends a meet event to every client in the meet's room.
func (h *Hub) Broadcast(meetID int, event models.MeetEvent) {
	h.send(meetID, event, h.recipients(meetID, false))
}

// BroadcastMessage sends a chat message event to the organizer and accepted
// participants only, matching the HTTP chat visibility rule.
func (h *Hub) BroadcastMessage(meetID int, msg models.MeetMessage) {
	event := models.MeetEvent{Type: models.EventMessage, MeetID: meetID, Message: &msg}
	h.send(meetID, event, h.recipients(meetID, true))
}

// BroadcastParticipation sends a participation transition event to the whole
// room and updates the affected user's chat visibility so an acceptance or
// departure takes effect on connections that are already open.
func (h *Hub) BroadcastParticipation(eventType string, meetID int, participation models.Participation) {
	switch eventType {
	case models.EventJoinAccepted:
		h.setChatVisible(meetID, participation.UserID, true)
	case models.EventJoinDeclined, models.EventParticipantLeft:
		h.setChatVisible(meetID, participation.UserID, false)
	}
	h.Broadcast(meetID, models.MeetEvent{Type: eventType, MeetID: meetID, Participation: &participation})
}

func (h *Hub) recipients(meetID int, chatOnly bool) []*websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[meetID]))
	for conn := range h.rooms[meetID] {
		if chatOnly {
			info, ok := h.connInfo[meetID][conn]
			if !ok || !info.ChatVisible {
				continue
			}
		}
		conns = append(conns, conn)
	}
	return conns
}

func (h *Hub) send(meetID int, event models.MeetEvent, conns []*websocket.Conn) {
	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(meetID, conn)
			h.publishWSError(meetID, conn, err)
		}
	}
}

func (h *Hub) setChatVisible(meetID int, userID int, visible bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, info := range h.connInfo[meetID] {
		if info.UserID == userID {
			info.ChatVisible = visible
			h.connInfo[meetID][conn] = info
		}
	}
}

// BroadcastMeetDeleted tells every viewer the meet is gone.
func (h *Hub) BroadcastMeetDeleted(meetID int) {
	h.Broadcast(meetID, models.MeetEvent{Type: models.EventMeetDeleted, MeetID: meetID})
}

func (h *Hub) publishWSError(meetID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(meetID, conn)
	if !ok {
		return
	}

	payload := map[string]any{
		"ws": map[string]any{
			"meet_id":     meetID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]any{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), meetRoutingKey,
		observability.NewEnvelope("ws_events", "ws_error", payload), headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(meetID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[meetID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}
