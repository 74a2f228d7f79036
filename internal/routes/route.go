package routes

import (
	"github.com/eventdeck/server/internal/container"
	"github.com/eventdeck/server/internal/handlers"
	"github.com/eventdeck/server/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "eventdeck-api",
			})
		})

		eventRoutes := v1.Group("/events")
		{
			eventRoutes.GET("", handlers.ListEvents(container.EventService))
			eventRoutes.POST("", handlers.CreateEvent(container.EventService))
			eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))
			eventRoutes.GET("/:id/attendees", handlers.ListAttendees(container.RegistrationService))
			eventRoutes.POST("/:id/attendees", handlers.RegisterAttendee(container.RegistrationService))
		}

		v1.DELETE("/attendees/:id", handlers.DeleteAttendee(container.RegistrationService))
	}

	return r
}
