package fastmeet

import "context"

// Notification kinds emitted by the controller.
const (
	KindJoinRequested = "fastmeet.join_requested"
	KindJoinAccepted  = "fastmeet.join_accepted"
	KindJoinDeclined  = "fastmeet.join_declined"
)

// Notifier delivers fire-and-forget user notifications. Delivery failure is
// never fatal to the operation that triggered it.
type Notifier interface {
	Notify(ctx context.Context, toUserID int, kind string, payload map[string]any)
}
