package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttendeeRepo interface {
	// RegisterAttendee admits the attendee only while the event has a free
	// seat, atomically with respect to concurrent registrations.
	RegisterAttendee(ctx context.Context, attendee *Attendee) (*Attendee, error)
	ListAttendees(ctx context.Context, eventID uuid.UUID) ([]*Attendee, error)
	DeleteAttendee(ctx context.Context, id uuid.UUID) error
}

// RegisterAttendee reserves a seat and inserts the attendee inside a single
// transaction. The reservation is a conditional update on the event document
// guarded by attendee_count < capacity; two transactions racing for the last
// seat both write the event document, so the storage layer aborts one with a
// write conflict and the driver retries it, at which point the guard fails.
// Losing the guard means sold out. A duplicate (event_id, email) pair fails
// the attendee insert on the unique index, and aborting the transaction
// rolls the seat counter back.
func (mdb *MongodbRepo) RegisterAttendee(ctx context.Context, attendee *Attendee) (*Attendee, error) {
	result, err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		events := mdb.collection(EventsCollection)

		filter := bson.M{
			"_id":   attendee.EventID,
			"$expr": bson.M{"$lt": bson.A{"$attendee_count", "$capacity"}},
		}
		update := bson.M{
			"$inc": bson.M{"attendee_count": 1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		}

		res, err := events.UpdateOne(sc, filter, update)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve seat: %w", err)
		}
		if res.MatchedCount == 0 {
			// Either the event is gone or it is full; look again to tell
			// the caller which.
			count, err := events.CountDocuments(sc, bson.M{"_id": attendee.EventID})
			if err != nil {
				return nil, fmt.Errorf("failed to check event existence: %w", err)
			}
			if count == 0 {
				return nil, ErrEventNotFound
			}
			return nil, ErrEventFull
		}

		if _, err := mdb.collection(AttendeesCollection).InsertOne(sc, attendee); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrDuplicateRegistration
			}
			return nil, fmt.Errorf("failed to insert attendee: %w", err)
		}

		return attendee, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Attendee), nil
}

// ListAttendees returns the event's attendees newest first. An unknown event
// simply yields an empty slice; callers that need existence check the event.
func (mdb *MongodbRepo) ListAttendees(ctx context.Context, eventID uuid.UUID) ([]*Attendee, error) {
	col := mdb.collection(AttendeesCollection)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"event_id": eventID}, opts)
	if err != nil {
		return nil, wrapUnavailable(fmt.Errorf("failed to list attendees: %w", err))
	}
	defer cursor.Close(ctx)

	attendees := []*Attendee{}
	for cursor.Next(ctx) {
		var att Attendee
		if err := cursor.Decode(&att); err != nil {
			return nil, fmt.Errorf("failed to decode attendee: %w", err)
		}
		attendees = append(attendees, &att)
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapUnavailable(fmt.Errorf("cursor error: %w", err))
	}

	return attendees, nil
}

// DeleteAttendee removes the attendee and frees their seat in one
// transaction, so a full event accepts a new registration the moment the
// delete commits.
func (mdb *MongodbRepo) DeleteAttendee(ctx context.Context, id uuid.UUID) error {
	_, err := mdb.withTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var att Attendee
		err := mdb.collection(AttendeesCollection).FindOneAndDelete(sc, bson.M{"_id": id}).Decode(&att)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAttendeeNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to delete attendee: %w", err)
		}

		update := bson.M{
			"$inc": bson.M{"attendee_count": -1},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		}
		if _, err := mdb.collection(EventsCollection).UpdateOne(sc, bson.M{"_id": att.EventID}, update); err != nil {
			return nil, fmt.Errorf("failed to release seat: %w", err)
		}
		return nil, nil
	})
	return err
}
