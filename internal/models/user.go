package models

import "time"

// User is the directory profile owned by the profile subsystem. This service
// reads it for identity decoration and last-known coordinates only.
type User struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Surname   string    `db:"surname" json:"surname"`
	PhotoURL  string    `db:"photo_url" json:"photo_url"`
	Latitude  *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude *float64  `db:"longitude" json:"longitude,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
