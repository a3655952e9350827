package models

import "time"

// Participation statuses. The organizer is never stored as a participation;
// organizer role is derived by comparing FastMeet.OrganizerID.
const (
	ParticipationPending  = "pending"
	ParticipationAccepted = "accepted"
)

// Participation is one non-organizer user's relationship to a meet.
type Participation struct {
	ID        int       `db:"id" json:"id"`
	MeetID    int       `db:"meet_id" json:"meet_id"`
	UserID    int       `db:"user_id" json:"user_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ParticipationView decorates a participation with the user's directory profile.
type ParticipationView struct {
	Participation
	User *User `json:"user,omitempty"`
}
