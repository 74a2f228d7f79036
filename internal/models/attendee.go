package models

import (
	"time"

	"github.com/google/uuid"
)

type Attendee struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	EventID   uuid.UUID `bson:"event_id" json:"event_id"`
	Name      string    `bson:"name" json:"name" validate:"required,min=2"`
	Email     string    `bson:"email" json:"email" validate:"required,email"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// RegisterAttendeeInput is the request body for POST /events/:id/attendees.
type RegisterAttendeeInput struct {
	Name  string `json:"name" validate:"required,min=2"`
	Email string `json:"email" validate:"required,email"`
}
