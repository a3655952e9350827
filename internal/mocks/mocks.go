package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fastmeet-service/internal/models"
)

type MeetRepositoryMock struct {
	mock.Mock
}

func (m *MeetRepositoryMock) CreateMeet(ctx context.Context, meet models.FastMeet, stops []models.MeetStop) (models.FastMeet, error) {
	args := m.Called(ctx, meet, stops)
	var created models.FastMeet
	if val := args.Get(0); val != nil {
		created = val.(models.FastMeet)
	}
	return created, args.Error(1)
}

func (m *MeetRepositoryMock) GetMeet(ctx context.Context, meetID int) (models.FastMeet, error) {
	args := m.Called(ctx, meetID)
	var meet models.FastMeet
	if val := args.Get(0); val != nil {
		meet = val.(models.FastMeet)
	}
	return meet, args.Error(1)
}

func (m *MeetRepositoryMock) ListMeets(ctx context.Context) ([]models.FastMeet, error) {
	args := m.Called(ctx)
	var meets []models.FastMeet
	if val := args.Get(0); val != nil {
		meets = val.([]models.FastMeet)
	}
	return meets, args.Error(1)
}

func (m *MeetRepositoryMock) ListStops(ctx context.Context, meetID int) ([]models.MeetStop, error) {
	args := m.Called(ctx, meetID)
	var stops []models.MeetStop
	if val := args.Get(0); val != nil {
		stops = val.([]models.MeetStop)
	}
	return stops, args.Error(1)
}

func (m *MeetRepositoryMock) DeleteMeet(ctx context.Context, meetID int) error {
	args := m.Called(ctx, meetID)
	return args.Error(0)
}

func (m *MeetRepositoryMock) ActiveMeetIDForUser(ctx context.Context, userID int, excludeMeetID int) (int, bool, error) {
	args := m.Called(ctx, userID, excludeMeetID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type ParticipationRepositoryMock struct {
	mock.Mock
}

func (m *ParticipationRepositoryMock) CreatePending(ctx context.Context, meetID int, userID int) (models.Participation, error) {
	args := m.Called(ctx, meetID, userID)
	var participation models.Participation
	if val := args.Get(0); val != nil {
		participation = val.(models.Participation)
	}
	return participation, args.Error(1)
}

func (m *ParticipationRepositoryMock) Get(ctx context.Context, participationID int) (models.Participation, error) {
	args := m.Called(ctx, participationID)
	var participation models.Participation
	if val := args.Get(0); val != nil {
		participation = val.(models.Participation)
	}
	return participation, args.Error(1)
}

func (m *ParticipationRepositoryMock) GetByMeetAndUser(ctx context.Context, meetID int, userID int) (models.Participation, error) {
	args := m.Called(ctx, meetID, userID)
	var participation models.Participation
	if val := args.Get(0); val != nil {
		participation = val.(models.Participation)
	}
	return participation, args.Error(1)
}

func (m *ParticipationRepositoryMock) GetByUser(ctx context.Context, userID int) (models.Participation, error) {
	args := m.Called(ctx, userID)
	var participation models.Participation
	if val := args.Get(0); val != nil {
		participation = val.(models.Participation)
	}
	return participation, args.Error(1)
}

func (m *ParticipationRepositoryMock) ListByMeet(ctx context.Context, meetID int) ([]models.Participation, error) {
	args := m.Called(ctx, meetID)
	var participations []models.Participation
	if val := args.Get(0); val != nil {
		participations = val.([]models.Participation)
	}
	return participations, args.Error(1)
}

func (m *ParticipationRepositoryMock) Accept(ctx context.Context, participationID int) (models.Participation, error) {
	args := m.Called(ctx, participationID)
	var participation models.Participation
	if val := args.Get(0); val != nil {
		participation = val.(models.Participation)
	}
	return participation, args.Error(1)
}

func (m *ParticipationRepositoryMock) Delete(ctx context.Context, participationID int) error {
	args := m.Called(ctx, participationID)
	return args.Error(0)
}

func (m *ParticipationRepositoryMock) DeleteByMeetUserStatus(ctx context.Context, meetID int, userID int, status string) error {
	args := m.Called(ctx, meetID, userID, status)
	return args.Error(0)
}

type MeetMessageRepositoryMock struct {
	mock.Mock
}

func (m *MeetMessageRepositoryMock) CreateMessage(ctx context.Context, meetID int, senderID int, content string) (models.MeetMessage, error) {
	args := m.Called(ctx, meetID, senderID, content)
	var msg models.MeetMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.MeetMessage)
	}
	return msg, args.Error(1)
}

func (m *MeetMessageRepositoryMock) ListMessages(ctx context.Context, meetID int) ([]models.MeetMessage, error) {
	args := m.Called(ctx, meetID)
	var msgs []models.MeetMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.MeetMessage)
	}
	return msgs, args.Error(1)
}

type UserDirectoryMock struct {
	mock.Mock
}

func (m *UserDirectoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserDirectoryMock) BulkUsers(ctx context.Context, ids []int) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Notify(ctx context.Context, toUserID int, kind string, payload map[string]any) {
	m.Called(ctx, toUserID, kind, payload)
}
