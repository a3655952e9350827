package fastmeet

import (
	"context"
	"errors"
	"strings"

	"fastmeet-service/internal/models"
	"fastmeet-service/internal/repositories"
)

// maxMessageLength bounds chat content before it reaches the store.
const maxMessageLength = 1000

// ChatChannel is the append-only, rate-limited chat attached to one meet.
// The sliding-window throttle is enforced inside the message store
// transaction; any client-side counter is a UX optimization only.
type ChatChannel struct {
	meets    repositories.MeetRepository
	messages repositories.MeetMessageRepository
}

// NewChatChannel constructs a ChatChannel.
func NewChatChannel(meets repositories.MeetRepository, messages repositories.MeetMessageRepository) *ChatChannel {
	return &ChatChannel{meets: meets, messages: messages}
}

// Send persists a message for the meet, rejecting empty, oversized or
// throttled sends.
func (ch *ChatChannel) Send(ctx context.Context, meetID int, senderID int, content string) (models.MeetMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.MeetMessage{}, ErrMessageEmpty
	}
	if len(content) > maxMessageLength {
		return models.MeetMessage{}, ErrMessageTooLong
	}

	if _, err := ch.meets.GetMeet(ctx, meetID); err != nil {
		if errors.Is(err, repositories.ErrMeetNotFound) {
			return models.MeetMessage{}, ErrNotFound
		}
		return models.MeetMessage{}, err
	}

	msg, err := ch.messages.CreateMessage(ctx, meetID, senderID, content)
	if err != nil {
		if errors.Is(err, repositories.ErrMessageRateLimited) {
			return models.MeetMessage{}, ErrRateLimited
		}
		return models.MeetMessage{}, err
	}
	return msg, nil
}

// List returns the meet's messages ascending by creation time.
func (ch *ChatChannel) List(ctx context.Context, meetID int) ([]models.MeetMessage, error) {
	if _, err := ch.meets.GetMeet(ctx, meetID); err != nil {
		if errors.Is(err, repositories.ErrMeetNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ch.messages.ListMessages(ctx, meetID)
}
