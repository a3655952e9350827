package fastmeet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fastmeet-service/internal/mocks"
	"fastmeet-service/internal/models"
	"fastmeet-service/internal/repositories"
)

func newTestController() (*Controller, *mocks.MeetRepositoryMock, *mocks.ParticipationRepositoryMock, *mocks.UserDirectoryMock, *mocks.NotifierMock) {
	meets := new(mocks.MeetRepositoryMock)
	participations := new(mocks.ParticipationRepositoryMock)
	users := new(mocks.UserDirectoryMock)
	notifier := new(mocks.NotifierMock)
	return NewController(meets, participations, users, notifier), meets, participations, users, notifier
}

func TestCreateSuccess(t *testing.T) {
	controller, meets, _, _, _ := newTestController()

	meets.On("CreateMeet", mock.Anything, mock.MatchedBy(func(m models.FastMeet) bool {
		return m.OrganizerID == 1 && m.Name == "coffee run"
	}), []models.MeetStop(nil)).Return(models.FastMeet{ID: 10, OrganizerID: 1, Name: "coffee run"}, nil).Once()

	meet, err := controller.Create(context.Background(), 1, CreateMeetInput{Name: "coffee run", Latitude: 55.75, Longitude: 37.61})

	require.NoError(t, err)
	assert.Equal(t, 10, meet.ID)
	meets.AssertExpectations(t)
}

func TestCreateBlockedWhileBusy(t *testing.T) {
	controller, meets, _, _, _ := newTestController()

	meets.On("CreateMeet", mock.Anything, mock.Anything, mock.Anything).
		Return(models.FastMeet{}, &repositories.ActiveMeetError{MeetID: 42}).Once()

	_, err := controller.Create(context.Background(), 1, CreateMeetInput{Name: "second meet"})

	require.Error(t, err)
	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 42, blocked.ConflictingMeetID)
	assert.ErrorIs(t, err, ErrAlreadyBlocked)
	meets.AssertExpectations(t)
}

func TestRequestJoinSuccessNotifiesOrganizer(t *testing.T) {
	controller, meets, participations, _, notifier := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 2}, nil).Once()
	participations.On("CreatePending", mock.Anything, 5, 1).
		Return(models.Participation{ID: 9, MeetID: 5, UserID: 1, Status: models.ParticipationPending}, nil).Once()
	notifier.On("Notify", mock.Anything, 2, KindJoinRequested, map[string]any{
		"meet_id":          5,
		"requester_id":     1,
		"participation_id": 9,
	}).Once()

	participation, err := controller.RequestJoin(context.Background(), 5, 1)

	require.NoError(t, err)
	assert.Equal(t, models.ParticipationPending, participation.Status)
	meets.AssertExpectations(t)
	participations.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestRequestJoinOrganizerSelfJoin(t *testing.T) {
	controller, meets, _, _, notifier := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 1}, nil).Once()

	_, err := controller.RequestJoin(context.Background(), 5, 1)

	assert.ErrorIs(t, err, ErrConflict)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	meets.AssertExpectations(t)
}

func TestRequestJoinDuplicate(t *testing.T) {
	controller, meets, participations, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 2}, nil).Once()
	participations.On("CreatePending", mock.Anything, 5, 1).
		Return(models.Participation{}, repositories.ErrParticipationExists).Once()

	_, err := controller.RequestJoin(context.Background(), 5, 1)

	assert.ErrorIs(t, err, ErrConflict)
	participations.AssertExpectations(t)
}

func TestRequestJoinBlockedElsewhere(t *testing.T) {
	controller, meets, participations, _, notifier := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 2}, nil).Once()
	participations.On("CreatePending", mock.Anything, 5, 1).
		Return(models.Participation{}, &repositories.ActiveMeetError{MeetID: 77}).Once()

	_, err := controller.RequestJoin(context.Background(), 5, 1)

	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, 77, blocked.ConflictingMeetID)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestJoinMeetMissing(t *testing.T) {
	controller, meets, _, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{}, repositories.ErrMeetNotFound).Once()

	_, err := controller.RequestJoin(context.Background(), 5, 1)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelJoinRemovesPending(t *testing.T) {
	controller, _, participations, _, _ := newTestController()

	participations.On("DeleteByMeetUserStatus", mock.Anything, 5, 1, models.ParticipationPending).Return(nil).Once()

	require.NoError(t, controller.CancelJoin(context.Background(), 5, 1))
	participations.AssertExpectations(t)
}

func TestCancelJoinNothingPending(t *testing.T) {
	controller, _, participations, _, _ := newTestController()

	participations.On("DeleteByMeetUserStatus", mock.Anything, 5, 1, models.ParticipationPending).
		Return(repositories.ErrParticipationNotFound).Once()

	assert.ErrorIs(t, controller.CancelJoin(context.Background(), 5, 1), ErrNotFound)
}

func TestLeaveOrganizerForbidden(t *testing.T) {
	controller, meets, participations, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 1}, nil).Once()

	assert.ErrorIs(t, controller.Leave(context.Background(), 5, 1), ErrForbidden)
	participations.AssertNotCalled(t, "DeleteByMeetUserStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveRemovesAccepted(t *testing.T) {
	controller, meets, participations, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 2}, nil).Once()
	participations.On("DeleteByMeetUserStatus", mock.Anything, 5, 1, models.ParticipationAccepted).Return(nil).Once()

	require.NoError(t, controller.Leave(context.Background(), 5, 1))
	participations.AssertExpectations(t)
}

func TestAcceptRequestSuccess(t *testing.T) {
	controller, meets, participations, _, notifier := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 1}, nil).Once()
	participations.On("Get", mock.Anything, 9).
		Return(models.Participation{ID: 9, MeetID: 5, UserID: 3, Status: models.ParticipationPending}, nil).Once()
	participations.On("Accept", mock.Anything, 9).
		Return(models.Participation{ID: 9, MeetID: 5, UserID: 3, Status: models.ParticipationAccepted}, nil).Once()
	notifier.On("Notify", mock.Anything, 3, KindJoinAccepted, map[string]any{
		"meet_id":          5,
		"participation_id": 9,
	}).Once()

	accepted, err := controller.AcceptRequest(context.Background(), 5, 1, 9)

	require.NoError(t, err)
	assert.Equal(t, models.ParticipationAccepted, accepted.Status)
	notifier.AssertExpectations(t)
}

func TestAcceptRequestNotOrganizer(t *testing.T) {
	controller, meets, participations, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 2}, nil).Once()

	_, err := controller.AcceptRequest(context.Background(), 5, 1, 9)

	assert.ErrorIs(t, err, ErrForbidden)
	participations.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
}

func TestAcceptRequestWrongMeet(t *testing.T) {
	controller, meets, participations, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 1}, nil).Once()
	participations.On("Get", mock.Anything, 9).
		Return(models.Participation{ID: 9, MeetID: 6, UserID: 3, Status: models.ParticipationPending}, nil).Once()

	_, err := controller.AcceptRequest(context.Background(), 5, 1, 9)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptRequestNotPending(t *testing.T) {
	controller, meets, participations, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 1}, nil).Once()
	participations.On("Get", mock.Anything, 9).
		Return(models.Participation{ID: 9, MeetID: 5, UserID: 3, Status: models.ParticipationAccepted}, nil).Once()

	_, err := controller.AcceptRequest(context.Background(), 5, 1, 9)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeclineRequestDeletesAndNotifies(t *testing.T) {
	controller, meets, participations, _, notifier := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 1}, nil).Once()
	participations.On("Get", mock.Anything, 9).
		Return(models.Participation{ID: 9, MeetID: 5, UserID: 3, Status: models.ParticipationPending}, nil).Once()
	participations.On("Delete", mock.Anything, 9).Return(nil).Once()
	notifier.On("Notify", mock.Anything, 3, KindJoinDeclined, map[string]any{
		"meet_id":          5,
		"participation_id": 9,
	}).Once()

	_, err := controller.DeclineRequest(context.Background(), 5, 1, 9)

	require.NoError(t, err)
	participations.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestDeleteNotOrganizer(t *testing.T) {
	controller, meets, _, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 2}, nil).Once()

	assert.ErrorIs(t, controller.Delete(context.Background(), 5, 1), ErrForbidden)
	meets.AssertNotCalled(t, "DeleteMeet", mock.Anything, mock.Anything)
}

func TestDeleteOrganizer(t *testing.T) {
	controller, meets, _, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 1}, nil).Once()
	meets.On("DeleteMeet", mock.Anything, 5).Return(nil).Once()

	require.NoError(t, controller.Delete(context.Background(), 5, 1))
	meets.AssertExpectations(t)
}

func TestLoadDerivesOrganizerFlags(t *testing.T) {
	controller, meets, participations, users, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 1, Name: "walk"}, nil).Once()
	meets.On("ListStops", mock.Anything, 5).Return([]models.MeetStop(nil), nil).Once()
	participations.On("ListByMeet", mock.Anything, 5).Return([]models.Participation{
		{ID: 9, MeetID: 5, UserID: 3, Status: models.ParticipationAccepted},
		{ID: 10, MeetID: 5, UserID: 4, Status: models.ParticipationPending},
	}, nil).Once()
	meets.On("ActiveMeetIDForUser", mock.Anything, 1, 5).Return(0, false, nil).Once()
	users.On("BulkUsers", mock.Anything, []int{1, 3, 4}).Return([]models.User{
		{ID: 1, Name: "org"}, {ID: 3, Name: "ann"}, {ID: 4, Name: "bob"},
	}, nil).Once()

	view, err := controller.Load(context.Background(), 5, 1)

	require.NoError(t, err)
	assert.True(t, view.IsOrganizer)
	assert.False(t, view.IsBlocked)
	assert.False(t, view.IsParticipant)
	assert.False(t, view.IsAcceptedParticipant)
	// one accepted participant plus the organizer
	assert.Equal(t, 2, view.ParticipantsCount)
	require.Len(t, view.AcceptedParticipants, 1)
	require.Len(t, view.PendingRequests, 1)
	require.NotNil(t, view.Organizer)
	assert.Equal(t, "org", view.Organizer.Name)
	assert.Equal(t, "ann", view.AcceptedParticipants[0].User.Name)
}

func TestLoadDerivesBlockedViewer(t *testing.T) {
	controller, meets, participations, users, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 2}, nil).Once()
	meets.On("ListStops", mock.Anything, 5).Return([]models.MeetStop(nil), nil).Once()
	participations.On("ListByMeet", mock.Anything, 5).Return([]models.Participation(nil), nil).Once()
	meets.On("ActiveMeetIDForUser", mock.Anything, 1, 5).Return(42, true, nil).Once()
	users.On("BulkUsers", mock.Anything, []int{2}).Return([]models.User{{ID: 2, Name: "org"}}, nil).Once()

	view, err := controller.Load(context.Background(), 5, 1)

	require.NoError(t, err)
	assert.True(t, view.IsBlocked)
	assert.True(t, view.IsAlreadyOwner)
	assert.Equal(t, 42, view.ConflictingMeetID)
	assert.Equal(t, 1, view.ParticipantsCount)
}

func TestLoadViewerIsPendingNotBlocked(t *testing.T) {
	controller, meets, participations, users, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{ID: 5, OrganizerID: 2}, nil).Once()
	meets.On("ListStops", mock.Anything, 5).Return([]models.MeetStop(nil), nil).Once()
	participations.On("ListByMeet", mock.Anything, 5).Return([]models.Participation{
		{ID: 9, MeetID: 5, UserID: 1, Status: models.ParticipationPending},
	}, nil).Once()
	// the viewer's own pending row makes them busy, but on this meet
	meets.On("ActiveMeetIDForUser", mock.Anything, 1, 5).Return(0, false, nil).Once()
	users.On("BulkUsers", mock.Anything, []int{2, 1}).Return([]models.User{
		{ID: 2, Name: "org"}, {ID: 1, Name: "me"},
	}, nil).Once()

	view, err := controller.Load(context.Background(), 5, 1)

	require.NoError(t, err)
	assert.True(t, view.IsParticipant)
	assert.False(t, view.IsAcceptedParticipant)
	assert.False(t, view.IsBlocked)
}

func TestLoadMeetMissing(t *testing.T) {
	controller, meets, _, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{}, repositories.ErrMeetNotFound).Once()

	_, err := controller.Load(context.Background(), 5, 1)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadRepoErrorPassesThrough(t *testing.T) {
	controller, meets, _, _, _ := newTestController()

	meets.On("GetMeet", mock.Anything, 5).Return(models.FastMeet{}, errors.New("boom")).Once()

	_, err := controller.Load(context.Background(), 5, 1)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
