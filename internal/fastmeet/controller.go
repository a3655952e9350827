package fastmeet

import (
	"context"
	"errors"

	"fastmeet-service/internal/models"
	"fastmeet-service/internal/repositories"
)

// Controller is the single source of truth for meet role derivations and the
// only component that mutates meets and participations in response to user
// action. Organizer identity is re-checked here on every organizer-only call;
// client-side flags are advisory only.
type Controller struct {
	meets          repositories.MeetRepository
	participations repositories.ParticipationRepository
	users          repositories.UserDirectory
	notifier       Notifier
}

// NewController constructs a Controller.
func NewController(meets repositories.MeetRepository, participations repositories.ParticipationRepository, users repositories.UserDirectory, notifier Notifier) *Controller {
	return &Controller{
		meets:          meets,
		participations: participations,
		users:          users,
		notifier:       notifier,
	}
}

// CreateMeetInput carries the creation payload.
type CreateMeetInput struct {
	Name        string
	Description string
	MeetType    string
	SubType     string
	Tags        []string
	Latitude    float64
	Longitude   float64
	Stops       []models.MeetStop
}

// Create makes a new meet organized by organizerID. The single-active-meet
// rule applies to organizing too: a user who already organizes or
// participates in a meet cannot open another one. The check runs inside the
// store's insert transaction, so concurrent creates cannot both pass.
func (c *Controller) Create(ctx context.Context, organizerID int, input CreateMeetInput) (models.FastMeet, error) {
	meet := models.FastMeet{
		OrganizerID: organizerID,
		Name:        input.Name,
		Description: input.Description,
		MeetType:    input.MeetType,
		SubType:     input.SubType,
		Tags:        input.Tags,
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
	}

	created, err := c.meets.CreateMeet(ctx, meet, input.Stops)
	if err != nil {
		var active *repositories.ActiveMeetError
		if errors.As(err, &active) {
			return models.FastMeet{}, &BlockedError{ConflictingMeetID: active.MeetID}
		}
		return models.FastMeet{}, err
	}
	return created, nil
}

// List returns the meet catalog, newest first.
func (c *Controller) List(ctx context.Context) ([]models.FastMeet, error) {
	return c.meets.ListMeets(ctx)
}

// Load assembles the complete MeetView for one viewer: the meet, its stops,
// decorated participation lists and every derived role flag.
func (c *Controller) Load(ctx context.Context, meetID int, viewerID int) (models.MeetView, error) {
	meet, err := c.meets.GetMeet(ctx, meetID)
	if err != nil {
		if errors.Is(err, repositories.ErrMeetNotFound) {
			return models.MeetView{}, ErrNotFound
		}
		return models.MeetView{}, err
	}

	stops, err := c.meets.ListStops(ctx, meetID)
	if err != nil {
		return models.MeetView{}, err
	}

	participations, err := c.participations.ListByMeet(ctx, meetID)
	if err != nil {
		return models.MeetView{}, err
	}

	conflictID, busy, err := c.meets.ActiveMeetIDForUser(ctx, viewerID, meetID)
	if err != nil {
		return models.MeetView{}, err
	}

	userIDs := make([]int, 0, len(participations)+1)
	userIDs = append(userIDs, meet.OrganizerID)
	for _, p := range participations {
		userIDs = append(userIDs, p.UserID)
	}
	users, err := c.users.BulkUsers(ctx, userIDs)
	if err != nil {
		return models.MeetView{}, err
	}
	userByID := make(map[int]models.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	view := models.MeetView{
		Meet:                 meet,
		Stops:                stops,
		PendingRequests:      []models.ParticipationView{},
		AcceptedParticipants: []models.ParticipationView{},
		IsOrganizer:          meet.OrganizerID == viewerID,
		IsAlreadyOwner:       busy,
		ConflictingMeetID:    conflictID,
	}
	if organizer, ok := userByID[meet.OrganizerID]; ok {
		view.Organizer = &organizer
	}

	for _, p := range participations {
		pv := models.ParticipationView{Participation: p}
		if u, ok := userByID[p.UserID]; ok {
			user := u
			pv.User = &user
		}
		switch p.Status {
		case models.ParticipationPending:
			view.PendingRequests = append(view.PendingRequests, pv)
			if p.UserID == viewerID {
				view.IsParticipant = true
			}
		case models.ParticipationAccepted:
			view.AcceptedParticipants = append(view.AcceptedParticipants, pv)
			if p.UserID == viewerID {
				view.IsAcceptedParticipant = true
			}
		}
	}

	// organizer counts toward the displayed total but is never a participation row
	view.ParticipantsCount = len(view.AcceptedParticipants) + 1
	view.IsBlocked = busy && !view.IsOrganizer && !view.IsParticipant && !view.IsAcceptedParticipant
	return view, nil
}

// RequestJoin creates a pending participation for userID on the meet and
// notifies the organizer. The single-active-meet check runs transactionally
// inside the participation store, so two concurrent requests from different
// sessions cannot both pass.
func (c *Controller) RequestJoin(ctx context.Context, meetID int, userID int) (models.Participation, error) {
	meet, err := c.meets.GetMeet(ctx, meetID)
	if err != nil {
		if errors.Is(err, repositories.ErrMeetNotFound) {
			return models.Participation{}, ErrNotFound
		}
		return models.Participation{}, err
	}
	if meet.OrganizerID == userID {
		// the organizer is an implicit participant
		return models.Participation{}, ErrConflict
	}

	participation, err := c.participations.CreatePending(ctx, meetID, userID)
	if err != nil {
		var active *repositories.ActiveMeetError
		if errors.As(err, &active) {
			return models.Participation{}, &BlockedError{ConflictingMeetID: active.MeetID}
		}
		if errors.Is(err, repositories.ErrParticipationExists) {
			return models.Participation{}, ErrConflict
		}
		return models.Participation{}, err
	}

	c.notifier.Notify(ctx, meet.OrganizerID, KindJoinRequested, map[string]any{
		"meet_id":          meetID,
		"requester_id":     userID,
		"participation_id": participation.ID,
	})
	return participation, nil
}

// CancelJoin withdraws the caller's own pending request. It never touches an
// accepted participation; leaving after acceptance is Leave.
func (c *Controller) CancelJoin(ctx context.Context, meetID int, userID int) error {
	err := c.participations.DeleteByMeetUserStatus(ctx, meetID, userID, models.ParticipationPending)
	if errors.Is(err, repositories.ErrParticipationNotFound) {
		return ErrNotFound
	}
	return err
}

// Leave removes the caller's accepted participation. The organizer cannot
// leave their own meet; they delete it instead.
func (c *Controller) Leave(ctx context.Context, meetID int, userID int) error {
	meet, err := c.meets.GetMeet(ctx, meetID)
	if err != nil {
		if errors.Is(err, repositories.ErrMeetNotFound) {
			return ErrNotFound
		}
		return err
	}
	if meet.OrganizerID == userID {
		return ErrForbidden
	}

	err = c.participations.DeleteByMeetUserStatus(ctx, meetID, userID, models.ParticipationAccepted)
	if errors.Is(err, repositories.ErrParticipationNotFound) {
		return ErrNotFound
	}
	return err
}

// AcceptRequest transitions a pending request to accepted. Organizer only.
func (c *Controller) AcceptRequest(ctx context.Context, meetID int, callerID int, participationID int) (models.Participation, error) {
	participation, err := c.authorizeRequestAction(ctx, meetID, callerID, participationID)
	if err != nil {
		return models.Participation{}, err
	}

	accepted, err := c.participations.Accept(ctx, participation.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipationNotPending) {
			return models.Participation{}, ErrInvalidState
		}
		return models.Participation{}, err
	}

	c.notifier.Notify(ctx, accepted.UserID, KindJoinAccepted, map[string]any{
		"meet_id":          meetID,
		"participation_id": accepted.ID,
	})
	return accepted, nil
}

// DeclineRequest deletes a pending request. Organizer only.
func (c *Controller) DeclineRequest(ctx context.Context, meetID int, callerID int, participationID int) (models.Participation, error) {
	participation, err := c.authorizeRequestAction(ctx, meetID, callerID, participationID)
	if err != nil {
		return models.Participation{}, err
	}

	if err := c.participations.Delete(ctx, participation.ID); err != nil {
		if errors.Is(err, repositories.ErrParticipationNotFound) {
			return models.Participation{}, ErrNotFound
		}
		return models.Participation{}, err
	}

	c.notifier.Notify(ctx, participation.UserID, KindJoinDeclined, map[string]any{
		"meet_id":          meetID,
		"participation_id": participation.ID,
	})
	return participation, nil
}

// Delete destroys the meet. Organizer only; participations, stops and chat
// messages cascade with it and every viewer resets to no relation.
func (c *Controller) Delete(ctx context.Context, meetID int, callerID int) error {
	meet, err := c.meets.GetMeet(ctx, meetID)
	if err != nil {
		if errors.Is(err, repositories.ErrMeetNotFound) {
			return ErrNotFound
		}
		return err
	}
	if meet.OrganizerID != callerID {
		return ErrForbidden
	}

	err = c.meets.DeleteMeet(ctx, meetID)
	if errors.Is(err, repositories.ErrMeetNotFound) {
		return ErrNotFound
	}
	return err
}

// authorizeRequestAction runs the shared organizer-only preconditions for
// accept and decline: the meet exists, the caller organizes it, the
// participation belongs to it and is still pending.
func (c *Controller) authorizeRequestAction(ctx context.Context, meetID int, callerID int, participationID int) (models.Participation, error) {
	meet, err := c.meets.GetMeet(ctx, meetID)
	if err != nil {
		if errors.Is(err, repositories.ErrMeetNotFound) {
			return models.Participation{}, ErrNotFound
		}
		return models.Participation{}, err
	}
	if meet.OrganizerID != callerID {
		return models.Participation{}, ErrForbidden
	}

	participation, err := c.participations.Get(ctx, participationID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipationNotFound) {
			return models.Participation{}, ErrNotFound
		}
		return models.Participation{}, err
	}
	if participation.MeetID != meetID {
		return models.Participation{}, ErrNotFound
	}
	if participation.Status != models.ParticipationPending {
		return models.Participation{}, ErrInvalidState
	}
	return participation, nil
}
