package ws

import (
	"testing"

	"github.com/gorilla/websocket"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub()

	hub.AddClient(1, nil, ConnInfo{UserID: 7})
	if len(hub.rooms) != 1 {
		t.Fatalf("expected meet room to be created")
	}
	if len(hub.connInfo) != 1 {
		t.Fatalf("expected conn info to be tracked")
	}

	hub.RemoveClient(1, nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected meet room to be removed")
	}
	if len(hub.connInfo) != 0 {
		t.Fatalf("expected conn info to be dropped")
	}
}

func TestHubRemoveUnknownClient(t *testing.T) {
	hub := NewHub()

	// must not panic on a meet that never had clients
	hub.RemoveClient(99, nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected no rooms")
	}
}

func TestHubMessageRecipientsExcludePendingViewer(t *testing.T) {
	hub := NewHub()

	accepted := new(websocket.Conn)
	pending := new(websocket.Conn)
	hub.AddClient(1, accepted, ConnInfo{UserID: 2, ChatVisible: true})
	hub.AddClient(1, pending, ConnInfo{UserID: 3, ChatVisible: false})

	conns := hub.recipients(1, true)
	if len(conns) != 1 || conns[0] != accepted {
		t.Fatalf("expected only the accepted participant to receive messages, got %d conns", len(conns))
	}

	conns = hub.recipients(1, false)
	if len(conns) != 2 {
		t.Fatalf("expected participation events to reach the whole room, got %d conns", len(conns))
	}
}

func TestHubAcceptancePromotesOpenConnection(t *testing.T) {
	hub := NewHub()

	conn := new(websocket.Conn)
	hub.AddClient(1, conn, ConnInfo{UserID: 3, ChatVisible: false})

	hub.setChatVisible(1, 3, true)
	if conns := hub.recipients(1, true); len(conns) != 1 {
		t.Fatalf("expected accepted user's open connection to become chat visible")
	}

	hub.setChatVisible(1, 3, false)
	if conns := hub.recipients(1, true); len(conns) != 0 {
		t.Fatalf("expected departed user's connection to lose chat visibility")
	}
}

func TestHubGetConnInfo(t *testing.T) {
	hub := NewHub()

	hub.AddClient(1, nil, ConnInfo{UserID: 7, ConnID: "abc"})

	info, ok := hub.getConnInfo(1, nil)
	if !ok {
		t.Fatalf("expected conn info to exist")
	}
	if info.UserID != 7 || info.ConnID != "abc" {
		t.Fatalf("unexpected conn info: %+v", info)
	}
}
