package services

import (
	"context"
	"strings"
	"time"

	"github.com/eventdeck/server/internal/helpers"
	"github.com/eventdeck/server/internal/models"
	"github.com/google/uuid"
)

// RegistrationService owns the capacity-enforcing write path and the
// attendee reads around it.
type RegistrationService struct {
	attendeeRepo models.AttendeeRepo
	txnTimeout   time.Duration
}

func NewRegistrationService(attendeeRepo models.AttendeeRepo, txnTimeout time.Duration) *RegistrationService {
	return &RegistrationService{
		attendeeRepo: attendeeRepo,
		txnTimeout:   txnTimeout,
	}
}

// Register admits a new attendee while the event has a free seat. Input is
// validated before storage is touched; the capacity check itself happens
// atomically in the repo. The transaction runs under the configured timeout
// so a stuck store surfaces as ErrServiceUnavailable rather than hanging
// the request.
func (rs *RegistrationService) Register(ctx context.Context, eventID uuid.UUID, input *models.RegisterAttendeeInput) (*models.Attendee, error) {
	// Validate the normalized values, not the raw ones, so a padded name
	// cannot sneak under the length floor.
	normalized := &models.RegisterAttendeeInput{
		Name:  strings.TrimSpace(input.Name),
		Email: strings.ToLower(strings.TrimSpace(input.Email)),
	}
	if err := models.Validate.Struct(normalized); err != nil {
		return nil, models.NewValidationError(helpers.ValidationFields(err))
	}

	attendee := &models.Attendee{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      normalized.Name,
		Email:     normalized.Email,
		CreatedAt: time.Now().UTC(),
	}

	txnCtx, cancel := context.WithTimeout(ctx, rs.txnTimeout)
	defer cancel()

	return rs.attendeeRepo.RegisterAttendee(txnCtx, attendee)
}

// ListAttendees answers an empty list, not an error, for an event that does
// not exist. That includes the all-zeros UUID, which parses fine but can
// never match a stored event.
func (rs *RegistrationService) ListAttendees(ctx context.Context, eventID uuid.UUID) ([]*models.Attendee, error) {
	return rs.attendeeRepo.ListAttendees(ctx, eventID)
}

func (rs *RegistrationService) DeleteAttendee(ctx context.Context, id uuid.UUID) error {
	txnCtx, cancel := context.WithTimeout(ctx, rs.txnTimeout)
	defer cancel()

	return rs.attendeeRepo.DeleteAttendee(txnCtx, id)
}
