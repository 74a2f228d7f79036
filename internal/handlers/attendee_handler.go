package handlers

import (
	"net/http"

	"github.com/eventdeck/server/internal/models"
	"github.com/eventdeck/server/internal/services"
	"github.com/gin-gonic/gin"
)

func ListAttendees(rs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseIDParam(c)
		if !ok {
			return
		}

		attendees, err := rs.ListAttendees(c.Request.Context(), eventID)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, attendees)
	}
}

func RegisterAttendee(rs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseIDParam(c)
		if !ok {
			return
		}

		var input models.RegisterAttendeeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		attendee, err := rs.Register(c.Request.Context(), eventID, &input)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusCreated, attendee)
	}
}

func DeleteAttendee(rs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIDParam(c)
		if !ok {
			return
		}

		if err := rs.DeleteAttendee(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
