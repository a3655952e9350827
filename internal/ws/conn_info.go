package ws

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"fastmeet-service/internal/observability"
)

// ConnInfo identifies one websocket subscriber of a meet room, kept for
// lifecycle events and disconnect accounting. ChatVisible mirrors the HTTP
// chat rule: only the organizer and accepted participants receive message
// events; pending requesters get participation events only.
type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ChatVisible bool
	ConnectedAt time.Time
}

func newConnInfo(userID int, meta observability.RequestMeta, traceID string) ConnInfo {
	return ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    meta.DeviceID,
		IP:          meta.IP,
		RequestID:   meta.RequestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
