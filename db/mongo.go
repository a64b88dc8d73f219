package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names of the document store.
const (
	ScheduleCollection = "schedule"
	HomeworkCollection = "homework"
	GroupCollection    = "groups"
)

// ConnectMongo connects to the document store and checks the primary is reachable
func ConnectMongo(ctx context.Context, uri, database string, logger *zap.Logger) (*mongo.Database, error) {
	logger.Info("Connecting to mongo", zap.String("database", database))

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}

	return client.Database(database), nil
}

// EnsureIndexes creates the lookup indexes used by the list queries
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		ScheduleCollection: {
			{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}}},
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}}},
		},
		HomeworkCollection: {
			{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "dueDate", Value: 1}}},
			{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "dueDate", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("error creating %s indexes: %w", name, err)
		}
	}
	return nil
}
