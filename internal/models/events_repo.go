package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventRepo interface {
	CreateEvent(ctx context.Context, event *Event) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col := mdb.collection(EventsCollection)

	if _, err := col.InsertOne(ctx, event); err != nil {
		return nil, wrapUnavailable(fmt.Errorf("failed to insert event: %w", err))
	}
	return event, nil
}

// ListEvents returns every event ascending by date. The stored seat counter
// doubles as the derived attendee count, so no aggregation is needed here.
func (mdb *MongodbRepo) ListEvents(ctx context.Context) ([]*Event, error) {
	col := mdb.collection(EventsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, wrapUnavailable(fmt.Errorf("failed to list events: %w", err))
	}
	defer cursor.Close(ctx)

	events := []*Event{}
	for cursor.Next(ctx) {
		var ev Event
		if err := cursor.Decode(&ev); err != nil {
			return nil, fmt.Errorf("failed to decode event: %w", err)
		}
		events = append(events, &ev)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapUnavailable(fmt.Errorf("cursor error: %w", err))
	}

	return events, nil
}

func (mdb *MongodbRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	col := mdb.collection(EventsCollection)

	var ev Event
	err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, wrapUnavailable(fmt.Errorf("failed to get event: %w", err))
	}
	return &ev, nil
}

// DeleteEvent removes the event and all of its attendees in one transaction.
// Cascade delete keeps the attendees collection free of orphans; an event's
// attendee rows have no meaning once the event is gone.
func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	_, err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := mdb.collection(EventsCollection).DeleteOne(sc, bson.M{"_id": id})
		if err != nil {
			return nil, fmt.Errorf("failed to delete event: %w", err)
		}
		if res.DeletedCount == 0 {
			return nil, ErrEventNotFound
		}

		if _, err := mdb.collection(AttendeesCollection).DeleteMany(sc, bson.M{"event_id": id}); err != nil {
			return nil, fmt.Errorf("failed to delete event attendees: %w", err)
		}
		return nil, nil
	})
	return err
}
