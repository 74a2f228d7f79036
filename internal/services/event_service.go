package services

import (
	"context"
	"time"

	"github.com/eventdeck/server/internal/helpers"
	"github.com/eventdeck/server/internal/models"
	"github.com/google/uuid"
)

type EventService struct {
	eventRepo models.EventRepo
}

func NewEventService(eventRepo models.EventRepo) *EventService {
	return &EventService{
		eventRepo: eventRepo,
	}
}

// CreateEvent validates the input and parses the date string before anything
// touches storage; a validation failure persists nothing.
func (es *EventService) CreateEvent(ctx context.Context, input *models.CreateEventInput) (*models.Event, error) {
	if err := models.Validate.Struct(input); err != nil {
		return nil, models.NewValidationError(helpers.ValidationFields(err))
	}

	date, err := helpers.ParseEventDate(input.Date)
	if err != nil {
		return nil, models.NewValidationError(map[string]string{"date": err.Error()})
	}

	now := time.Now().UTC()
	event := &models.Event{
		ID:            uuid.New(),
		Title:         input.Title,
		Description:   input.Description,
		Date:          date,
		Capacity:      *input.Capacity,
		AttendeeCount: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return es.eventRepo.CreateEvent(ctx, event)
}

func (es *EventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return es.eventRepo.ListEvents(ctx)
}

// GetEventByID and DeleteEvent pass any well-formed id straight through; an
// id that matches nothing, the all-zeros UUID included, comes back from the
// repo as ErrEventNotFound.
func (es *EventService) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return es.eventRepo.GetEventByID(ctx, id)
}

func (es *EventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return es.eventRepo.DeleteEvent(ctx, id)
}
