package handlers

import (
	"errors"
	"net/http"

	"github.com/eventdeck/server/internal/helpers"
	"github.com/eventdeck/server/internal/models"
	"github.com/eventdeck/server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// statusForError maps domain errors to the client-visible contract: field
// failures are 400, missing entities 404, capacity and duplicate email both
// 409 (distinguished by message), storage trouble 503, everything else 500.
func statusForError(err error) (int, string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrAttendeeNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, models.ErrEventFull):
		return http.StatusConflict, models.ErrEventFull.Error()
	case errors.Is(err, models.ErrDuplicateRegistration):
		return http.StatusConflict, models.ErrDuplicateRegistration.Error()
	case errors.Is(err, models.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, models.ErrServiceUnavailable.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeError(c *gin.Context, err error) {
	status, msg := statusForError(err)
	if status == http.StatusInternalServerError {
		// Keep internals out of the response body; middleware logs them.
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func ListEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, err := es.ListEvents(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, events)
	}
}

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.CreateEventInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		event, err := es.CreateEvent(c.Request.Context(), &input)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, event)
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		if err := es.DeleteEvent(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// parseIDParam pulls the :id path param as a UUID, answering 400 itself on
// a malformed value.
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	raw := helpers.StringTrim(c.Param("id"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id format"})
		return uuid.Nil, false
	}
	return id, true
}
