package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var Validate = validator.New()

const (
	EventsCollection    = "events"
	AttendeesCollection = "attendees"
)

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) collection(name string) *mongo.Collection {
	return mdb.mongodbClient.Database(mdb.dbName).Collection(name)
}

// withTransaction runs fn inside a multi-document transaction with snapshot
// read concern and majority write concern. The driver retries fn on transient
// write conflicts, which is how two registrations racing for the last seat
// resolve to exactly one winner.
func (mdb *MongodbRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := mdb.mongodbClient.StartSession()
	if err != nil {
		return nil, wrapUnavailable(fmt.Errorf("failed to start session: %w", err))
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	result, err := session.WithTransaction(ctx, fn, txnOpts)
	if err != nil {
		return nil, wrapUnavailable(err)
	}
	return result, nil
}

// wrapUnavailable folds timeouts and connectivity failures into
// ErrServiceUnavailable so callers see a retryable error, never a
// capacity error. Domain errors pass through untouched.
func wrapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrAttendeeNotFound) ||
		errors.Is(err, ErrEventFull) || errors.Is(err, ErrDuplicateRegistration) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return err
}

// EnsureIndexes creates the indexes the repos rely on. The unique compound
// index on (event_id, email) is load-bearing: it is what turns a concurrent
// duplicate registration into a duplicate-key error inside the transaction.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	attendees := mdb.collection(AttendeesCollection)
	_, err := attendees.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_event_email"),
		},
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("event_created_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create attendee indexes: %w", err)
	}

	events := mdb.collection(EventsCollection)
	_, err = events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: 1}},
		Options: options.Index().SetName("date_asc"),
	})
	if err != nil {
		return fmt.Errorf("failed to create event indexes: %w", err)
	}

	return nil
}
