package container

import (
	"log/slog"

	"github.com/eventdeck/server/internal/config"
	"github.com/eventdeck/server/internal/models"
	"github.com/eventdeck/server/internal/services"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Logger        *slog.Logger
	MongoDBClient *mongo.Client

	Repo                *models.MongodbRepo
	EventService        *services.EventService
	RegistrationService *services.RegistrationService
}

// NewContainer creates a new dependency injection container
func NewContainer(logger *slog.Logger, mongoDBClient *mongo.Client, cfg *config.Config) *Container {
	repo := models.MongodbNewRepo(mongoDBClient, cfg.MongoDBName)
	eventService := services.NewEventService(repo)
	registrationService := services.NewRegistrationService(repo, cfg.TxnTimeout)

	return &Container{
		Logger:              logger,
		MongoDBClient:       mongoDBClient,
		Repo:                repo,
		EventService:        eventService,
		RegistrationService: registrationService,
	}
}
