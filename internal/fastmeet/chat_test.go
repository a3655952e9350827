package fastmeet

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fastmeet-service/internal/mocks"
	"fastmeet-service/internal/models"
	"fastmeet-service/internal/repositories"
)

func newTestChat() (*ChatChannel, *mocks.MeetRepositoryMock, *mocks.MeetMessageRepositoryMock) {
	meets := new(mocks.MeetRepositoryMock)
	messages := new(mocks.MeetMessageRepositoryMock)
	return NewChatChannel(meets, messages), meets, messages
}

func TestSendSuccess(t *testing.T) {
	chat, meets, messages := newTestChat()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5}, nil).Once()
	messages.On("CreateMessage", mock.Anything, 5, 1, "hello").
		Return(models.MeetMessage{ID: 3, MeetID: 5, SenderID: 1, Content: "hello"}, nil).Once()

	msg, err := chat.Send(context.Background(), 5, 1, "  hello  ")

	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	messages.AssertExpectations(t)
}

func TestSendEmptyContent(t *testing.T) {
	chat, _, messages := newTestChat()

	_, err := chat.Send(context.Background(), 5, 1, "   ")

	assert.ErrorIs(t, err, ErrMessageEmpty)
	messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendTooLong(t *testing.T) {
	chat, _, messages := newTestChat()

	_, err := chat.Send(context.Background(), 5, 1, strings.Repeat("x", maxMessageLength+1))

	assert.ErrorIs(t, err, ErrMessageTooLong)
	messages.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendMeetMissing(t *testing.T) {
	chat, meets, _ := newTestChat()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{}, repositories.ErrMeetNotFound).Once()

	_, err := chat.Send(context.Background(), 5, 1, "hello")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendRateLimited(t *testing.T) {
	chat, meets, messages := newTestChat()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5}, nil).Once()
	messages.On("CreateMessage", mock.Anything, 5, 1, "third in a minute").
		Return(models.MeetMessage{}, repositories.ErrMessageRateLimited).Once()

	_, err := chat.Send(context.Background(), 5, 1, "third in a minute")

	assert.ErrorIs(t, err, ErrRateLimited)
	messages.AssertExpectations(t)
}

func TestListMessages(t *testing.T) {
	chat, meets, messages := newTestChat()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5}, nil).Once()
	messages.On("ListMessages", mock.Anything, 5).Return([]models.MeetMessage{
		{ID: 1, Content: "first"},
		{ID: 2, Content: "second"},
	}, nil).Once()

	got, err := chat.List(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
}

func TestListMessagesMeetMissing(t *testing.T) {
	chat, meets, _ := newTestChat()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{}, repositories.ErrMeetNotFound).Once()

	_, err := chat.List(context.Background(), 5)

	assert.ErrorIs(t, err, ErrNotFound)
}
