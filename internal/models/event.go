package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title" validate:"required,min=3"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Date        time.Time `bson:"date" json:"date"`
	Capacity    int       `bson:"capacity" json:"capacity" validate:"required,min=1"`

	// AttendeeCount mirrors the number of attendee documents that reference
	// this event. It is only ever changed inside the same transaction that
	// inserts or deletes an attendee, so the two never drift.
	AttendeeCount int `bson:"attendee_count" json:"attendee_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CreateEventInput is the request body for POST /events. Date arrives as a
// string and is parsed by the service layer before it touches storage.
// Capacity is a pointer so an explicit zero fails the minimum bound rather
// than reading as an absent field.
type CreateEventInput struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date" validate:"required"`
	Capacity    *int   `json:"capacity" validate:"required,min=1"`
}
