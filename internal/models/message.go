package models

import "time"

// MeetMessage is an append-only chat message scoped to one meet.
type MeetMessage struct {
	ID        int       `db:"id" json:"id"`
	MeetID    int       `db:"meet_id" json:"meet_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
