// FILE: database/repository/appointment/indexes.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the appointments collection.
func (r *MongoCalendarRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on appointment ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Overlap queries: professionalId + interval bounds + status
		{
			Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}},
			Options: options.Index().SetName("professional_interval_idx"),
		},
		{
			Keys:    bson.D{{Key: "professionalId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("professional_status_idx"),
		},
		// Client-scoped listings
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "startTime", Value: 1}},
			Options: options.Index().SetName("client_start_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
