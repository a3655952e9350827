package fastmeet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fastmeet-service/internal/geo"
	"fastmeet-service/internal/mocks"
	"fastmeet-service/internal/models"
	"fastmeet-service/internal/repositories"
)

func newTestMapService() (*MapService, *mocks.MeetRepositoryMock, *mocks.ParticipationRepositoryMock, *mocks.UserDirectoryMock) {
	meets := new(mocks.MeetRepositoryMock)
	participations := new(mocks.ParticipationRepositoryMock)
	users := new(mocks.UserDirectoryMock)
	return NewMapService(meets, participations, users), meets, participations, users
}

func TestMarkersClusterAndColor(t *testing.T) {
	service, meets, participations, _ := newTestMapService()

	meets.On("ListMeets", mock.Anything).Return([]models.FastMeet{
		{ID: 1, OrganizerID: 1, Latitude: 55.75580, Longitude: 37.61730},
		{ID: 2, OrganizerID: 2, Latitude: 55.75580, Longitude: 37.61730},
		{ID: 3, OrganizerID: 3, Latitude: 59.93110, Longitude: 30.36090},
	}, nil).Once()
	participations.On("GetByUser", mock.Anything, 1).
		Return(models.Participation{}, repositories.ErrParticipationNotFound).Once()

	markers, err := service.Markers(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, markers, 2)
	// co-located meets collapse into one counted marker
	assert.Equal(t, 2, markers[0].Count)
	assert.Equal(t, MarkerGreen, markers[0].Color)
	assert.Equal(t, 1, markers[1].Count)
	assert.Equal(t, MarkerPurple, markers[1].Color)
}

func TestMarkersPendingViewerIsOrange(t *testing.T) {
	service, meets, participations, _ := newTestMapService()

	meets.On("ListMeets", mock.Anything).Return([]models.FastMeet{
		{ID: 3, OrganizerID: 2, Latitude: 59.9311, Longitude: 30.3609},
	}, nil).Once()
	participations.On("GetByUser", mock.Anything, 1).
		Return(models.Participation{ID: 9, MeetID: 3, UserID: 1, Status: models.ParticipationPending}, nil).Once()

	markers, err := service.Markers(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, MarkerOrange, markers[0].Color)
}

func TestMarkersAcceptedViewerIsGreen(t *testing.T) {
	service, meets, participations, _ := newTestMapService()

	meets.On("ListMeets", mock.Anything).Return([]models.FastMeet{
		{ID: 3, OrganizerID: 2, Latitude: 59.9311, Longitude: 30.3609},
	}, nil).Once()
	participations.On("GetByUser", mock.Anything, 1).
		Return(models.Participation{ID: 9, MeetID: 3, UserID: 1, Status: models.ParticipationAccepted}, nil).Once()

	markers, err := service.Markers(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, markers, 1)
	assert.Equal(t, MarkerGreen, markers[0].Color)
}

func TestNearbyRanksAscending(t *testing.T) {
	service, meets, _, _ := newTestMapService()

	ref := geo.Point{Lat: 0, Lon: 0}
	meets.On("ListMeets", mock.Anything).Return([]models.FastMeet{
		{ID: 1, Latitude: 0, Longitude: 0.2},
		{ID: 2, Latitude: 0, Longitude: 0.01},
		{ID: 3, Latitude: 0, Longitude: 0.1},
	}, nil).Once()

	ranked, err := service.Nearby(context.Background(), ref)

	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, 2, ranked[0].Entity.ID)
	assert.Equal(t, 3, ranked[1].Entity.ID)
	assert.Equal(t, 1, ranked[2].Entity.ID)
}

func TestViewerPointFromDirectory(t *testing.T) {
	service, _, _, users := newTestMapService()

	lat, lon := 55.7558, 37.6173
	users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1, Latitude: &lat, Longitude: &lon}, nil).Once()

	point, ok, err := service.ViewerPoint(context.Background(), 1)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lat, point.Lat)
	assert.Equal(t, lon, point.Lon)
}

func TestViewerPointUnknownUser(t *testing.T) {
	service, _, _, users := newTestMapService()

	users.On("GetUser", mock.Anything, 1).Return(models.User{}, repositories.ErrUserNotFound).Once()

	_, ok, err := service.ViewerPoint(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestViewerPointNoCoordinates(t *testing.T) {
	service, _, _, users := newTestMapService()

	users.On("GetUser", mock.Anything, 1).Return(models.User{ID: 1}, nil).Once()

	_, ok, err := service.ViewerPoint(context.Background(), 1)

	require.NoError(t, err)
	assert.False(t, ok)
}
