package models

import (
	"time"

	"github.com/lib/pq"
)

// FastMeet is a location-anchored ephemeral meetup owned by one organizer.
type FastMeet struct {
	ID          int            `db:"id" json:"id"`
	OrganizerID int            `db:"organizer_id" json:"organizer_id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	MeetType    string         `db:"meet_type" json:"meet_type"`
	SubType     string         `db:"sub_type" json:"sub_type"`
	Tags        pq.StringArray `db:"tags" json:"tags"`
	Latitude    float64        `db:"latitude" json:"latitude"`
	Longitude   float64        `db:"longitude" json:"longitude"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// MeetStop is one ordered sub-stop of a meet, independent of the primary coordinate.
type MeetStop struct {
	ID        int        `db:"id" json:"id"`
	MeetID    int        `db:"meet_id" json:"meet_id"`
	Position  int        `db:"position" json:"position"`
	Location  string     `db:"location" json:"location"`
	Address   string     `db:"address" json:"address"`
	Latitude  *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64   `db:"longitude" json:"longitude,omitempty"`
	StartTime *time.Time `db:"start_time" json:"start_time,omitempty"`
	EndTime   *time.Time `db:"end_time" json:"end_time,omitempty"`
}

// MeetView is the complete derived state of one meet for one viewer. Every
// presentation surface reads these flags instead of re-deriving them.
type MeetView struct {
	Meet                  FastMeet            `json:"meet"`
	Stops                 []MeetStop          `json:"stops"`
	Organizer             *User               `json:"organizer,omitempty"`
	PendingRequests       []ParticipationView `json:"pending_requests"`
	AcceptedParticipants  []ParticipationView `json:"accepted_participants"`
	IsOrganizer           bool                `json:"is_organizer"`
	IsParticipant         bool                `json:"is_participant"`
	IsAcceptedParticipant bool                `json:"is_accepted_participant"`
	IsAlreadyOwner        bool                `json:"is_already_owner"`
	IsBlocked             bool                `json:"is_blocked"`
	ConflictingMeetID     int                 `json:"conflicting_meet_id,omitempty"`
	// ParticipantsCount is the accepted count plus one for the organizer.
	ParticipantsCount int `json:"participants_count"`
}

// MeetEvent is emitted over WebSocket connections scoped to a meet.
type MeetEvent struct {
	Type          string         `json:"type"`
	MeetID        int            `json:"meet_id"`
	Message       *MeetMessage   `json:"message,omitempty"`
	Participation *Participation `json:"participation,omitempty"`
}

// MeetEvent types.
const (
	EventMessage         = "message"
	EventJoinRequested   = "join_requested"
	EventJoinAccepted    = "join_accepted"
	EventJoinDeclined    = "join_declined"
	EventParticipantLeft = "participant_left"
	EventMeetDeleted     = "meet_deleted"
)
