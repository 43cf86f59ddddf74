// File: database/repository/appointment/queries.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"lexbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOverlapping returns the professional's non-cancelled appointments whose
// interval overlaps [start, end): startTime < end AND endTime > start.
func (r *MongoCalendarRepo) FindOverlapping(ctx context.Context, professionalID string, start, end time.Time, excludeID string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"professionalId": professionalID,
		"status":         bson.M{"$ne": models.StatusCancelled},
		"startTime":      bson.M{"$lt": end},
		"endTime":        bson.M{"$gt": start},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("overlap query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding overlap results: %w", err)
	}
	return appts, nil
}

// List returns appointments matching the filter, ordered by start time.
func (r *MongoCalendarRepo) List(ctx context.Context, f ListFilter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.ClientID != "" {
		filter["clientId"] = f.ClientID
	}
	if f.ProfessionalID != "" {
		filter["professionalId"] = f.ProfessionalID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Search != "" {
		regex := primitive.Regex{Pattern: f.Search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": regex},
			bson.M{"description": regex},
		}
	}
	timeRange := bson.M{}
	if !f.StartDate.IsZero() {
		timeRange["$gte"] = f.StartDate
	}
	if !f.EndDate.IsZero() {
		timeRange["$lt"] = f.EndDate
	}
	if len(timeRange) > 0 {
		filter["startTime"] = timeRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding list results: %w", err)
	}
	return appts, nil
}
