package fastmeet

import (
	"context"
	"errors"

	"fastmeet-service/internal/geo"
	"fastmeet-service/internal/models"
	"fastmeet-service/internal/repositories"
)

// Marker colors encode the viewer's relation to a cluster's first meet.
const (
	MarkerGreen  = "green"  // organizer or accepted
	MarkerOrange = "orange" // pending request
	MarkerPurple = "purple" // no relation
)

// Marker is one rendered map marker: a single meet or a co-located cluster.
type Marker struct {
	Key       string            `json:"key"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Count     int               `json:"count"`
	Color     string            `json:"color"`
	Meets     []models.FastMeet `json:"meets"`
}

// MapService builds the clustered marker set and the distance-ranked list
// consumed by the map and list surfaces.
type MapService struct {
	meets          repositories.MeetRepository
	participations repositories.ParticipationRepository
	users          repositories.UserDirectory
}

// NewMapService constructs a MapService.
func NewMapService(meets repositories.MeetRepository, participations repositories.ParticipationRepository, users repositories.UserDirectory) *MapService {
	return &MapService{meets: meets, participations: participations, users: users}
}

// Markers clusters all meets by quantized coordinate cell. Cells with more
// than one meet render as a count marker; color derives from the viewer's
// relation to the cell's first meet.
func (s *MapService) Markers(ctx context.Context, viewerID int) ([]Marker, error) {
	meets, err := s.meets.ListMeets(ctx)
	if err != nil {
		return nil, err
	}

	// at most one participation exists per user, so one lookup covers all meets
	viewerParticipation, err := s.participations.GetByUser(ctx, viewerID)
	hasParticipation := err == nil
	if err != nil && !errors.Is(err, repositories.ErrParticipationNotFound) {
		return nil, err
	}

	cells, keys := geo.ClusterByCell(meets, func(m models.FastMeet) geo.Point {
		return geo.Point{Lat: m.Latitude, Lon: m.Longitude}
	})

	markers := make([]Marker, 0, len(keys))
	for _, key := range keys {
		group := cells[key]
		first := group[0]

		color := MarkerPurple
		if first.OrganizerID == viewerID {
			color = MarkerGreen
		} else if hasParticipation && viewerParticipation.MeetID == first.ID {
			switch viewerParticipation.Status {
			case models.ParticipationAccepted:
				color = MarkerGreen
			case models.ParticipationPending:
				color = MarkerOrange
			}
		}

		markers = append(markers, Marker{
			Key:       key,
			Latitude:  first.Latitude,
			Longitude: first.Longitude,
			Count:     len(group),
			Color:     color,
			Meets:     group,
		})
	}
	return markers, nil
}

// Nearby ranks all meets by haversine distance from ref, ascending, ties kept
// in catalog order.
func (s *MapService) Nearby(ctx context.Context, ref geo.Point) ([]geo.Ranked[models.FastMeet], error) {
	meets, err := s.meets.ListMeets(ctx)
	if err != nil {
		return nil, err
	}
	ranked, _ := geo.RankByDistance(ref, meets, func(m models.FastMeet) (geo.Point, bool) {
		return geo.Point{Lat: m.Latitude, Lon: m.Longitude}, true
	})
	return ranked, nil
}

// ViewerPoint resolves the viewer's last-known coordinates from the user
// directory, for callers that did not supply an explicit reference point.
func (s *MapService) ViewerPoint(ctx context.Context, viewerID int) (geo.Point, bool, error) {
	user, err := s.users.GetUser(ctx, viewerID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return geo.Point{}, false, nil
		}
		return geo.Point{}, false, err
	}
	if user.Latitude == nil || user.Longitude == nil {
		return geo.Point{}, false, nil
	}
	return geo.Point{Lat: *user.Latitude, Lon: *user.Longitude}, true, nil
}
